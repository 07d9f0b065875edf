package settlement

import (
	"container/heap"
	"fmt"

	"github.com/fkhayef/splitsmart/internal/balance"
)

// Instruction is one payment that, together with the rest of its list,
// brings every balance in a group to zero.
type Instruction struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

// UnbalancedLedgerError is returned when the balances handed to Simplify do
// not sum to zero; no instructions are produced in that case. Err is set when
// the total could not be computed at all (balance.ErrOverflow).
type UnbalancedLedgerError struct {
	Sum int64
	Err error
}

func (e *UnbalancedLedgerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot simplify balances: %v", e.Err)
	}
	return fmt.Sprintf("cannot simplify balances that sum to %d", e.Sum)
}

func (e *UnbalancedLedgerError) Unwrap() error {
	return e.Err
}

// Simplify turns net balances into settlement instructions by repeatedly
// matching the largest remaining debtor with the largest remaining creditor.
//
// Every round zeroes at least one party, so at most n-1 instructions are
// emitted for n members with a nonzero balance. Ties on magnitude are broken by
// member key ascending, which makes the output reproducible. The result is not
// guaranteed to be the minimum number of payments.
func Simplify(b balance.Balances) ([]Instruction, error) {
	sum, err := b.Sum()
	if err != nil {
		return nil, &UnbalancedLedgerError{Err: err}
	}
	if sum != 0 {
		return nil, &UnbalancedLedgerError{Sum: sum}
	}

	creditors := &partyHeap{}
	debtors := &partyHeap{}
	for member, amount := range b {
		switch {
		case amount > 0:
			*creditors = append(*creditors, party{member: member, remaining: amount})
		case amount < 0:
			*debtors = append(*debtors, party{member: member, remaining: -amount})
		}
	}
	heap.Init(creditors)
	heap.Init(debtors)

	instructions := make([]Instruction, 0, max(0, creditors.Len()+debtors.Len()-1))
	for creditors.Len() > 0 && debtors.Len() > 0 {
		c := heap.Pop(creditors).(party)
		d := heap.Pop(debtors).(party)

		transfer := min(c.remaining, d.remaining)
		if transfer > 0 {
			instructions = append(instructions, Instruction{From: d.member, To: c.member, Amount: transfer})
		}

		c.remaining -= transfer
		d.remaining -= transfer
		if c.remaining > 0 {
			heap.Push(creditors, c)
		}
		if d.remaining > 0 {
			heap.Push(debtors, d)
		}
	}

	return instructions, nil
}

// Apply executes instructions against a copy of b and returns the result.
// Applying the output of Simplify yields all zeros.
func Apply(b balance.Balances, instructions []Instruction) balance.Balances {
	out := make(balance.Balances, len(b))
	for k, v := range b {
		out[k] = v
	}
	for _, in := range instructions {
		out[in.From] += in.Amount
		out[in.To] -= in.Amount
	}
	return out
}

type party struct {
	member    string
	remaining int64
}

// partyHeap is a max-heap on remaining, then min on member key.
type partyHeap []party

func (h partyHeap) Len() int { return len(h) }

func (h partyHeap) Less(i, j int) bool {
	if h[i].remaining != h[j].remaining {
		return h[i].remaining > h[j].remaining
	}
	return h[i].member < h[j].member
}

func (h partyHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *partyHeap) Push(x any) { *h = append(*h, x.(party)) }

func (h *partyHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
