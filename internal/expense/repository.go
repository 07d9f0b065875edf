package expense

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fkhayef/splitsmart/internal/expense/split"
)

// Repository persists ledger entries and their shares
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new expense repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectExpense = `
	SELECT id, group_id, sequence, kind, payer_email, description, amount_cents, split_type, created_at
	FROM expenses
`

// Save writes an expense and its shares in one transaction and returns the
// stored entry carrying its new ID. A concurrent writer that already took the
// same sequence number makes the insert fail.
func (r *Repository) Save(ctx context.Context, e *Expense) (*Expense, error) {
	rec := e.Record()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO expenses (group_id, sequence, kind, payer_email, description, amount_cents, split_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, query,
		rec.GroupID,
		rec.Sequence,
		rec.Kind,
		rec.Payer,
		rec.Description,
		rec.Amount,
		rec.SplitType,
		rec.CreatedAt,
	).Scan(&rec.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	for i, s := range rec.Shares {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expense_shares (expense_id, position, member_email, amount_cents) VALUES ($1, $2, $3, $4)`,
			rec.ID, i, s.Member, s.Amount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create share for %s: %w", s.Member, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit expense: %w", err)
	}
	return Restore(rec), nil
}

// GetByID retrieves an expense with its shares
func (r *Repository) GetByID(ctx context.Context, id int64) (*Expense, error) {
	rec := Record{}
	err := scanRecord(r.db.QueryRowContext(ctx, selectExpense+` WHERE id = $1`, id), &rec)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	records := []Record{rec}
	if err := r.attachShares(ctx, records); err != nil {
		return nil, err
	}
	return Restore(records[0]), nil
}

// LedgerEntries loads every entry of a group ordered by sequence
func (r *Repository) LedgerEntries(ctx context.Context, groupID int64) ([]*Expense, error) {
	records, err := r.queryRecords(ctx, selectExpense+` WHERE group_id = $1 ORDER BY sequence`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	if err := r.attachShares(ctx, records); err != nil {
		return nil, err
	}

	entries := make([]*Expense, len(records))
	for i, rec := range records {
		entries[i] = Restore(rec)
	}
	return entries, nil
}

// ListByGroup retrieves a page of a group's entries, newest first
func (r *Repository) ListByGroup(ctx context.Context, groupID int64, limit, offset int) ([]*Expense, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses WHERE group_id = $1`, groupID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	records, err := r.queryRecords(ctx,
		selectExpense+` WHERE group_id = $1 ORDER BY sequence DESC LIMIT $2 OFFSET $3`,
		groupID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	if err := r.attachShares(ctx, records); err != nil {
		return nil, 0, err
	}

	expenses := make([]*Expense, len(records))
	for i, rec := range records {
		expenses[i] = Restore(rec)
	}
	return expenses, total, nil
}

func (r *Repository) queryRecords(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := scanRecord(rows, &rec); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// attachShares fills in the shares of each record in stored position order.
// It runs after the expense rows are closed so it never holds two result sets.
func (r *Repository) attachShares(ctx context.Context, records []Record) error {
	for i := range records {
		rows, err := r.db.QueryContext(ctx,
			`SELECT member_email, amount_cents FROM expense_shares WHERE expense_id = $1 ORDER BY position`,
			records[i].ID,
		)
		if err != nil {
			return fmt.Errorf("failed to get shares: %w", err)
		}

		var shares []split.Share
		for rows.Next() {
			var s split.Share
			if err := rows.Scan(&s.Member, &s.Amount); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan share: %w", err)
			}
			shares = append(shares, s)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return fmt.Errorf("failed to iterate shares: %w", err)
		}
		records[i].Shares = shares
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner, rec *Record) error {
	return row.Scan(
		&rec.ID,
		&rec.GroupID,
		&rec.Sequence,
		&rec.Kind,
		&rec.Payer,
		&rec.Description,
		&rec.Amount,
		&rec.SplitType,
		&rec.CreatedAt,
	)
}
