package expense

import (
	"time"

	"github.com/fkhayef/splitsmart/internal/expense/split"
)

// Kind distinguishes shared spending from cash payments between members
type Kind string

const (
	KindExpense Kind = "EXPENSE"
	KindPayment Kind = "PAYMENT" // settle-up: payer hands cash to the single share holder
)

// Expense is an immutable ledger entry. Fields are only reachable through
// accessors, and Shares hands out a copy, so a returned Expense can never be
// changed by a later operation.
type Expense struct {
	id          int64
	groupID     int64
	sequence    int64
	kind        Kind
	payer       string
	amount      int64
	description string
	splitType   split.SplitType
	shares      []split.Share
	createdAt   time.Time
}

// Record is the flat form of an Expense used by the persistence layer
type Record struct {
	ID          int64
	GroupID     int64
	Sequence    int64
	Kind        Kind
	Payer       string
	Amount      int64
	Description string
	SplitType   split.SplitType
	Shares      []split.Share
	CreatedAt   time.Time
}

// Restore rebuilds an Expense from stored fields verbatim. Nothing is
// recomputed or corrected; a corrupted row surfaces later as a balance error.
func Restore(r Record) *Expense {
	shares := make([]split.Share, len(r.Shares))
	copy(shares, r.Shares)
	return &Expense{
		id:          r.ID,
		groupID:     r.GroupID,
		sequence:    r.Sequence,
		kind:        r.Kind,
		payer:       r.Payer,
		amount:      r.Amount,
		description: r.Description,
		splitType:   r.SplitType,
		shares:      shares,
		createdAt:   r.CreatedAt,
	}
}

// Record returns a copy of the expense's fields
func (e *Expense) Record() Record {
	return Record{
		ID:          e.id,
		GroupID:     e.groupID,
		Sequence:    e.sequence,
		Kind:        e.kind,
		Payer:       e.payer,
		Amount:      e.amount,
		Description: e.description,
		SplitType:   e.splitType,
		Shares:      e.Shares(),
		CreatedAt:   e.createdAt,
	}
}

// ID is the storage identifier; zero until the expense has been saved.
func (e *Expense) ID() int64                  { return e.id }
func (e *Expense) GroupID() int64             { return e.groupID }
func (e *Expense) Sequence() int64            { return e.sequence }
func (e *Expense) Kind() Kind                 { return e.kind }
func (e *Expense) Payer() string              { return e.payer }
func (e *Expense) Amount() int64              { return e.amount }
func (e *Expense) Description() string        { return e.description }
func (e *Expense) SplitType() split.SplitType { return e.splitType }
func (e *Expense) CreatedAt() time.Time       { return e.createdAt }

// Shares returns the owed amounts in participant order
func (e *Expense) Shares() []split.Share {
	out := make([]split.Share, len(e.shares))
	copy(out, e.shares)
	return out
}

// ShareOf returns what member owes for this expense, zero if not a participant
func (e *Expense) ShareOf(member string) int64 {
	for _, s := range e.shares {
		if s.Member == member {
			return s.Amount
		}
	}
	return 0
}

// Participants returns the member keys of the shares in order
func (e *Expense) Participants() []string {
	out := make([]string, len(e.shares))
	for i, s := range e.shares {
		out[i] = s.Member
	}
	return out
}
