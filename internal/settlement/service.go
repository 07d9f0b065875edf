package settlement

import (
	"context"
	"errors"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/fkhayef/splitsmart/internal/balance"
	"github.com/fkhayef/splitsmart/internal/expense"
	"github.com/fkhayef/splitsmart/internal/expense/split"
	"github.com/fkhayef/splitsmart/internal/group"
)

// Common errors
var (
	ErrCannotSettleSelf = errors.New("cannot settle up with yourself")
	ErrNothingToSettle  = errors.New("no outstanding debt to settle")
)

// overviewConcurrency bounds how many group ledgers an overview loads at once
const overviewConcurrency = 4

// Ledgers loads group ledgers and appends payments to them
type Ledgers interface {
	Ledger(ctx context.Context, groupID int64) (*expense.Ledger, error)
	Record(ctx context.Context, groupID int64, req expense.RecordRequest) (*expense.Expense, error)
}

// Groups answers roster questions
type Groups interface {
	GetByID(ctx context.Context, id int64) (*group.Group, error)
	MemberEmails(ctx context.Context, groupID int64) ([]string, error)
	GroupIDsByMember(ctx context.Context, email string) ([]int64, error)
}

// Service derives balances and settlement plans from group ledgers
type Service struct {
	ledgers Ledgers
	groups  Groups
}

// NewService creates a new settlement service
func NewService(ledgers Ledgers, groups Groups) *Service {
	return &Service{ledgers: ledgers, groups: groups}
}

// Balances returns the net balance of every roster member, zero balances included
func (s *Service) Balances(ctx context.Context, groupID int64) (balance.Balances, []string, error) {
	roster, err := s.groups.MemberEmails(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	ledger, err := s.ledgers.Ledger(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}

	b, err := balance.ComputeForRoster(ledger, roster)
	if err != nil {
		return nil, nil, err
	}
	return b, roster, nil
}

// Debts returns the simplified list of payments that would settle the group
func (s *Service) Debts(ctx context.Context, groupID int64) ([]Instruction, error) {
	b, _, err := s.Balances(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return Simplify(b)
}

// Summary gathers totals, balances, and debts for a group
func (s *Service) Summary(ctx context.Context, groupID int64) (*Summary, error) {
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	roster, err := s.groups.MemberEmails(ctx, groupID)
	if err != nil {
		return nil, err
	}
	ledger, err := s.ledgers.Ledger(ctx, groupID)
	if err != nil {
		return nil, err
	}

	b, err := balance.ComputeForRoster(ledger, roster)
	if err != nil {
		return nil, err
	}
	debts, err := Simplify(b)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		Group:       g,
		MemberCount: len(roster),
		EntryCount:  ledger.Len(),
		Balances:    b,
		Roster:      roster,
		Debts:       debts,
	}
	for _, e := range ledger.Expenses() {
		if e.Kind() == expense.KindExpense {
			sum.TotalExpenses += e.Amount()
		}
	}
	return sum, nil
}

// SettleUp records a cash payment from one member to another as a PAYMENT
// entry on the ledger. When amount is zero the payer's outstanding debt to the
// recipient in the simplified plan is used.
func (s *Service) SettleUp(ctx context.Context, groupID int64, from, to string, amount int64) (*expense.Expense, error) {
	if from == to {
		return nil, ErrCannotSettleSelf
	}

	if amount == 0 {
		debts, err := s.Debts(ctx, groupID)
		if err != nil {
			return nil, err
		}
		for _, d := range debts {
			if d.From == from && d.To == to {
				amount = d.Amount
				break
			}
		}
		if amount == 0 {
			return nil, ErrNothingToSettle
		}
	}

	return s.ledgers.Record(ctx, groupID, expense.RecordRequest{
		Kind:        expense.KindPayment,
		Payer:       from,
		Amount:      amount,
		Description: "settle up",
		SplitType:   split.SplitTypeExact,
		Participants: []split.Participant{
			{Member: to, Amount: &amount},
		},
	})
}

// Overview reports the member's position in every group they belong to.
// Groups are loaded concurrently; the result is ordered by group ID.
func (s *Service) Overview(ctx context.Context, email string) ([]*GroupPosition, error) {
	ids, err := s.groups.GroupIDsByMember(ctx, email)
	if err != nil {
		return nil, err
	}

	positions := make([]*GroupPosition, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(overviewConcurrency)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			sum, err := s.Summary(gctx, id)
			if err != nil {
				return err
			}

			pos := &GroupPosition{
				GroupID:   id,
				GroupName: sum.Group.Name,
				Balance:   sum.Balances[email],
				Debts:     []Instruction{},
			}
			for _, d := range sum.Debts {
				if d.From == email || d.To == email {
					pos.Debts = append(pos.Debts, d)
				}
			}
			positions[i] = pos
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(positions, func(i, j int) bool { return positions[i].GroupID < positions[j].GroupID })
	return positions, nil
}
