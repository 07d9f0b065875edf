package group

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository handles group data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new group repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// CreateWithAdmin inserts a group and its first member in one transaction
func (r *Repository) CreateWithAdmin(ctx context.Context, req *CreateGroupRequest, adminEmail string) (*Group, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	group := &Group{
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now(),
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO expense_groups (name, description, created_at) VALUES ($1, $2, $3) RETURNING id`,
		group.Name, group.Description, group.CreatedAt,
	).Scan(&group.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO group_members (group_id, member_email, role, joined_at) VALUES ($1, $2, $3, $4)`,
		group.ID, adminEmail, MemberRoleAdmin, group.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add group admin: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit group: %w", err)
	}
	return group, nil
}

// GetByID retrieves a group by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Group, error) {
	query := `
		SELECT id, name, description, created_at
		FROM expense_groups
		WHERE id = $1
	`

	group := &Group{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&group.ID,
		&group.Name,
		&group.Description,
		&group.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return group, nil
}

// ListByMember retrieves the groups a member belongs to, newest first
func (r *Repository) ListByMember(ctx context.Context, email string, limit, offset int) ([]*Group, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM group_members WHERE member_email = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, email).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count groups: %w", err)
	}

	query := `
		SELECT g.id, g.name, g.description, g.created_at
		FROM expense_groups g
		JOIN group_members gm ON g.id = gm.group_id
		WHERE gm.member_email = $1
		ORDER BY g.id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, email, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	groups := []*Group{}
	for rows.Next() {
		group := &Group{}
		if err := rows.Scan(
			&group.ID,
			&group.Name,
			&group.Description,
			&group.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate groups: %w", err)
	}

	return groups, total, nil
}

// GroupIDsByMember returns the ids of every group the member belongs to
func (r *Repository) GroupIDsByMember(ctx context.Context, email string) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT group_id FROM group_members WHERE member_email = $1 ORDER BY group_id`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list member groups: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan group id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AddMember puts a member on a group's roster
func (r *Repository) AddMember(ctx context.Context, groupID int64, email string, role MemberRole) (*GroupMember, error) {
	if role == "" {
		role = MemberRoleMember
	}

	m := &GroupMember{
		GroupID:     groupID,
		MemberEmail: email,
		Role:        role,
		JoinedAt:    now(),
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO group_members (group_id, member_email, role, joined_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		groupID, email, role, m.JoinedAt,
	).Scan(&m.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return m, nil
}

// GetMembers retrieves a group's roster in join order
func (r *Repository) GetMembers(ctx context.Context, groupID int64) ([]*GroupMember, error) {
	query := `
		SELECT gm.id, gm.group_id, gm.member_email, gm.role, gm.joined_at, m.name
		FROM group_members gm
		JOIN members m ON gm.member_email = m.email
		WHERE gm.group_id = $1
		ORDER BY gm.id
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	members := []*GroupMember{}
	for rows.Next() {
		m := &GroupMember{}
		if err := rows.Scan(
			&m.ID,
			&m.GroupID,
			&m.MemberEmail,
			&m.Role,
			&m.JoinedAt,
			&m.Name,
		); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}

// GetMember retrieves one roster entry, nil if the member is not in the group
func (r *Repository) GetMember(ctx context.Context, groupID int64, email string) (*GroupMember, error) {
	query := `
		SELECT gm.id, gm.group_id, gm.member_email, gm.role, gm.joined_at, m.name
		FROM group_members gm
		JOIN members m ON gm.member_email = m.email
		WHERE gm.group_id = $1 AND gm.member_email = $2
	`

	m := &GroupMember{}
	err := r.db.QueryRowContext(ctx, query, groupID, email).Scan(
		&m.ID,
		&m.GroupID,
		&m.MemberEmail,
		&m.Role,
		&m.JoinedAt,
		&m.Name,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return m, nil
}
