package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/fkhayef/splitsmart/internal/expense"
	"github.com/fkhayef/splitsmart/pkg/money"
)

// Common errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRecipient         = errors.New("not the recipient of this notification")
)

// Service handles notification business logic
type Service struct {
	repo *Repository
}

// NewService creates a new notification service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// ListByRecipient retrieves a member's notifications
func (s *Service) ListByRecipient(ctx context.Context, recipient string, page, perPage int, unreadOnly bool) ([]*Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByRecipient(ctx, recipient, perPage, offset, unreadOnly)
}

// MarkAsRead marks a notification as read on behalf of its recipient
func (s *Service) MarkAsRead(ctx context.Context, id int64, recipient string) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n == nil {
		return ErrNotificationNotFound
	}
	if n.RecipientEmail != recipient {
		return ErrNotRecipient
	}

	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all notifications as read for a member
func (s *Service) MarkAllAsRead(ctx context.Context, recipient string) error {
	return s.repo.MarkAllAsRead(ctx, recipient)
}

// GetUnreadCount returns the count of unread notifications
func (s *Service) GetUnreadCount(ctx context.Context, recipient string) (int, error) {
	return s.repo.GetUnreadCount(ctx, recipient)
}

// ExpenseRecorded tells every share holder other than the payer about a new
// ledger entry. Members with a zero share are skipped.
func (s *Service) ExpenseRecorded(ctx context.Context, e *expense.Expense) error {
	id := e.ID()
	entity := EntityExpense
	if e.Kind() == expense.KindPayment {
		entity = EntityPayment
	}

	var errs []error
	for _, share := range e.Shares() {
		if share.Member == e.Payer() || share.Amount == 0 {
			continue
		}
		if _, err := s.repo.Create(ctx, share.Member, message(e, share.Amount), &entity, &id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func message(e *expense.Expense, owed int64) string {
	if e.Kind() == expense.KindPayment {
		return fmt.Sprintf("%s paid you %s", e.Payer(), money.Format(owed))
	}
	return fmt.Sprintf("%s added '%s': you owe %s", e.Payer(), e.Description(), money.Format(owed))
}
