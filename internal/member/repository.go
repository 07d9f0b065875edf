package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository handles member data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new member repository with database dependency injected
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new member into the database
func (r *Repository) Create(ctx context.Context, name, email string) (*Member, error) {
	query := `
		INSERT INTO members (name, email, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	m := &Member{
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := r.db.QueryRowContext(ctx, query, m.Name, m.Email, m.CreatedAt).Scan(&m.ID); err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	return m, nil
}

// GetByEmail retrieves a member by their e-mail
func (r *Repository) GetByEmail(ctx context.Context, email string) (*Member, error) {
	query := `
		SELECT id, name, email, created_at
		FROM members
		WHERE email = $1
	`

	m := &Member{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&m.ID,
		&m.Name,
		&m.Email,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member by email: %w", err)
	}

	return m, nil
}

// List retrieves members with pagination, oldest first
func (r *Repository) List(ctx context.Context, limit, offset int) ([]*Member, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM members`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count members: %w", err)
	}

	query := `
		SELECT id, name, email, created_at
		FROM members
		ORDER BY id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members := []*Member{}
	for rows.Next() {
		m := &Member{}
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, total, nil
}
