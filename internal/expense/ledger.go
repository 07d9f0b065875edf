package expense

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fkhayef/splitsmart/internal/expense/split"
)

var (
	ErrPayerRequired = errors.New("payer is required")
	ErrUnknownKind   = errors.New("unknown ledger entry kind")
	ErrSequenceGap   = errors.New("ledger sequence is not contiguous")
	ErrForeignEntry  = errors.New("ledger entry belongs to another group")
)

// RecordRequest carries everything needed to append one entry to a ledger
type RecordRequest struct {
	Kind         Kind
	Payer        string
	Amount       int64
	Description  string
	SplitType    split.SplitType
	Participants []split.Participant
}

// Ledger is the ordered, append-only sequence of expenses of one group.
// Record is the only mutator; it is safe for concurrent use.
type Ledger struct {
	mu      sync.RWMutex
	groupID int64
	entries []*Expense
	factory *split.Factory
	now     func() time.Time
}

// NewLedger creates an empty ledger for a group
func NewLedger(groupID int64) *Ledger {
	return &Ledger{
		groupID: groupID,
		factory: split.NewSplitStrategyFactory(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// LoadLedger rebuilds a ledger from stored entries, which must be ordered by
// sequence starting at 1 with no gaps.
func LoadLedger(groupID int64, entries []*Expense) (*Ledger, error) {
	l := NewLedger(groupID)
	for i, e := range entries {
		if e.groupID != groupID {
			return nil, fmt.Errorf("%w: entry %d has group %d", ErrForeignEntry, e.sequence, e.groupID)
		}
		if e.sequence != int64(i+1) {
			return nil, fmt.Errorf("%w: position %d holds sequence %d", ErrSequenceGap, i+1, e.sequence)
		}
	}
	l.entries = append(l.entries, entries...)
	return l, nil
}

// Record computes the shares for req, then appends a new immutable expense
// with the next sequence number. A split failure is returned unchanged and
// leaves the ledger untouched.
func (l *Ledger) Record(req RecordRequest) (*Expense, error) {
	kind := req.Kind
	if kind == "" {
		kind = KindExpense
	}
	if kind != KindExpense && kind != KindPayment {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	if req.Payer == "" {
		return nil, ErrPayerRequired
	}

	strategy, err := l.factory.Create(req.SplitType)
	if err != nil {
		return nil, err
	}
	shares, err := strategy.Calculate(req.Amount, req.Participants)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e := &Expense{
		groupID:     l.groupID,
		sequence:    int64(len(l.entries)) + 1,
		kind:        kind,
		payer:       req.Payer,
		amount:      req.Amount,
		description: req.Description,
		splitType:   strategy.Type(),
		shares:      shares,
		createdAt:   l.now(),
	}
	l.entries = append(l.entries, e)

	return e, nil
}

// Expenses returns a snapshot of the entries in insertion order
func (l *Ledger) Expenses() []*Expense {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*Expense, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// GroupID returns the group that owns the ledger
func (l *Ledger) GroupID() int64 {
	return l.groupID
}
