package expense

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fkhayef/splitsmart/internal/events"
	"github.com/fkhayef/splitsmart/internal/log"
)

// Common errors
var (
	ErrExpenseNotFound       = errors.New("expense not found")
	ErrParticipantNotInGroup = errors.New("participant is not a member of this group")
)

// Roster answers who belongs to a group
type Roster interface {
	RequireMember(ctx context.Context, groupID int64, email string) error
	MemberEmails(ctx context.Context, groupID int64) ([]string, error)
}

// Notifier is told about every entry after it has been stored
type Notifier interface {
	ExpenseRecorded(ctx context.Context, e *Expense) error
}

// Service records ledger entries and serves them back. Appends to one group
// are serialized so sequence numbers are handed out in order.
type Service struct {
	repo      *Repository
	roster    Roster
	notifier  Notifier
	publisher events.Publisher
	currency  string
	logger    *log.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewService creates a new expense service with dependencies injected
func NewService(repo *Repository, roster Roster, notifier Notifier, publisher events.Publisher, currency string, logger *log.Logger) *Service {
	return &Service{
		repo:      repo,
		roster:    roster,
		notifier:  notifier,
		publisher: publisher,
		currency:  currency,
		logger:    logger.WithComponent("expense"),
		locks:     make(map[int64]*sync.Mutex),
	}
}

func (s *Service) groupLock(groupID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[groupID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[groupID] = l
	}
	return l
}

// Ledger loads a group's full ledger from storage
func (s *Service) Ledger(ctx context.Context, groupID int64) (*Ledger, error) {
	entries, err := s.repo.LedgerEntries(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return LoadLedger(groupID, entries)
}

// Record appends an entry to the group's ledger. The payer and every
// participant must be on the group roster. Split failures come back as
// *split.InvalidSplitError and nothing is stored.
func (s *Service) Record(ctx context.Context, groupID int64, req RecordRequest) (*Expense, error) {
	roster, err := s.roster.MemberEmails(ctx, groupID)
	if err != nil {
		return nil, err
	}
	onRoster := make(map[string]bool, len(roster))
	for _, m := range roster {
		onRoster[m] = true
	}
	if req.Payer != "" && !onRoster[req.Payer] {
		return nil, fmt.Errorf("%w: %s", ErrParticipantNotInGroup, req.Payer)
	}
	for _, p := range req.Participants {
		if p.Member != "" && !onRoster[p.Member] {
			return nil, fmt.Errorf("%w: %s", ErrParticipantNotInGroup, p.Member)
		}
	}

	lock := s.groupLock(groupID)
	lock.Lock()
	defer lock.Unlock()

	ledger, err := s.Ledger(ctx, groupID)
	if err != nil {
		return nil, err
	}
	pending, err := ledger.Record(req)
	if err != nil {
		return nil, err
	}
	stored, err := s.repo.Save(ctx, pending)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "ledger entry recorded",
		"group_id", groupID,
		"expense_id", stored.ID(),
		"sequence", stored.Sequence(),
		"kind", stored.Kind(),
		"amount_cents", stored.Amount())

	s.announce(ctx, stored)
	return stored, nil
}

// announce fans out notifications and the domain event. Failures are logged
// and never undo the stored entry.
func (s *Service) announce(ctx context.Context, e *Expense) {
	if s.notifier != nil {
		if err := s.notifier.ExpenseRecorded(ctx, e); err != nil {
			s.logger.WarnContext(ctx, "failed to notify participants", "expense_id", e.ID(), "error", err)
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, s.event(e)); err != nil {
			s.logger.WarnContext(ctx, "failed to publish event", "expense_id", e.ID(), "error", err)
		}
	}
}

func (s *Service) event(e *Expense) *events.Event {
	t := events.TypeExpenseRecorded
	if e.Kind() == KindPayment {
		t = events.TypePaymentRecorded
	}

	ev := events.New(t)
	ev.GroupID = e.GroupID()
	ev.ExpenseID = e.ID()
	ev.Sequence = e.Sequence()
	ev.Payer = e.Payer()
	ev.AmountCents = e.Amount()
	ev.Currency = s.currency
	ev.Description = e.Description()
	ev.SplitType = string(e.SplitType())
	for _, sh := range e.Shares() {
		ev.Shares = append(ev.Shares, events.ShareLine{Member: sh.Member, AmountCents: sh.Amount})
	}
	return ev
}

// GetByID retrieves an entry with its shares
func (s *Service) GetByID(ctx context.Context, id int64) (*Expense, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrExpenseNotFound
	}
	return e, nil
}

// ListByGroup retrieves a page of a group's entries, newest first
func (s *Service) ListByGroup(ctx context.Context, groupID int64, page, perPage int) ([]*Expense, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByGroup(ctx, groupID, perPage, offset)
}

// RequireMember checks that email may act on the group
func (s *Service) RequireMember(ctx context.Context, groupID int64, email string) error {
	return s.roster.RequireMember(ctx, groupID, email)
}
