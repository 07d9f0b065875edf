// Package balance folds a group's ledger into one signed net amount per member.
package balance

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/fkhayef/splitsmart/internal/expense"
)

// Balances maps a member key to its net amount in minor units.
// Positive means the member is owed money, negative means the member owes.
type Balances map[string]int64

// Source is anything that can list ledger entries in order
type Source interface {
	Expenses() []*expense.Expense
}

// ErrOverflow reports a balance or total outside the int64 range
var ErrOverflow = errors.New("balance outside int64 range")

// InternalConsistencyError means the folded balances do not sum to zero.
// Correct split strategies make this impossible, so it points at a defective
// strategy or a corrupted ledger entry.
type InternalConsistencyError struct {
	Sum int64
}

func (e *InternalConsistencyError) Error() string {
	return fmt.Sprintf("balances sum to %d instead of zero: ledger is inconsistent", e.Sum)
}

// Compute returns each member's net balance. The payer of an entry is
// credited the full amount and every share holder is debited their share; a
// payer who is also a participant nets both.
func Compute(src Source) (Balances, error) {
	return ComputeForRoster(src, nil)
}

// ComputeForRoster is Compute with every roster member present in the result,
// including members with no activity or a zero balance.
func ComputeForRoster(src Source, roster []string) (Balances, error) {
	b := make(Balances, len(roster))
	for _, m := range roster {
		b[m] = 0
	}

	for _, e := range src.Expenses() {
		if err := b.add(e.Payer(), e.Amount()); err != nil {
			return nil, err
		}
		for _, s := range e.Shares() {
			if s.Amount == math.MinInt64 {
				return nil, fmt.Errorf("share of %s: %w", s.Member, ErrOverflow)
			}
			if err := b.add(s.Member, -s.Amount); err != nil {
				return nil, err
			}
		}
	}

	sum, err := b.Sum()
	if err != nil {
		return nil, err
	}
	if sum != 0 {
		return nil, &InternalConsistencyError{Sum: sum}
	}
	return b, nil
}

func (b Balances) add(member string, delta int64) error {
	cur := b[member]
	next := cur + delta
	if (delta > 0 && next < cur) || (delta < 0 && next > cur) {
		return fmt.Errorf("balance of %s: %w", member, ErrOverflow)
	}
	b[member] = next
	return nil
}

// Sum adds every balance; zero for any consistent set. Credits and debits are
// totalled separately and ErrOverflow is returned when either leaves the int64
// range or a balance is math.MinInt64.
func (b Balances) Sum() (int64, error) {
	var credits, debits int64
	for _, v := range b {
		switch {
		case v == math.MinInt64:
			return 0, ErrOverflow
		case v > 0:
			if credits > math.MaxInt64-v {
				return 0, ErrOverflow
			}
			credits += v
		case v < 0:
			if debits > math.MaxInt64+v {
				return 0, ErrOverflow
			}
			debits -= v
		}
	}
	return credits - debits, nil
}

// Members returns the member keys in ascending order
func (b Balances) Members() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NonZero returns a copy without the settled members
func (b Balances) NonZero() Balances {
	out := make(Balances, len(b))
	for k, v := range b {
		if v != 0 {
			out[k] = v
		}
	}
	return out
}
