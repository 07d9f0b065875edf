package expense

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/splitsmart/internal/expense/split"
	"github.com/fkhayef/splitsmart/pkg/money"
)

// CreateExpenseRequest represents the request to record an expense.
// Amounts are decimal strings in major units, e.g. "12.34".
type CreateExpenseRequest struct {
	GroupID      int64                 `json:"group_id"`
	PaidBy       string                `json:"paid_by,omitempty"` // defaults to the acting member
	Description  string                `json:"description"`
	Amount       string                `json:"amount"`
	SplitType    string                `json:"split_type"`
	Participants []*ParticipantRequest `json:"participants"`
}

// ParticipantRequest is one member's part in a split
type ParticipantRequest struct {
	Email      string  `json:"email"`
	Percentage *string `json:"percentage,omitempty"` // For PERCENTAGE split
	Amount     *string `json:"amount,omitempty"`     // For EXACT split
}

// ToRecordRequest converts the wire form into minor units and split participants
func (req *CreateExpenseRequest) ToRecordRequest(payer string) (RecordRequest, error) {
	if req.PaidBy != "" {
		payer = strings.ToLower(strings.TrimSpace(req.PaidBy))
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		return RecordRequest{}, fmt.Errorf("%w: %q", err, req.Amount)
	}

	participants := make([]split.Participant, len(req.Participants))
	for i, p := range req.Participants {
		if p == nil {
			return RecordRequest{}, fmt.Errorf("%w: participant %d is empty", money.ErrInvalidAmount, i)
		}
		sp, err := p.toParticipant()
		if err != nil {
			return RecordRequest{}, err
		}
		participants[i] = sp
	}

	return RecordRequest{
		Kind:         KindExpense,
		Payer:        payer,
		Amount:       amount,
		Description:  strings.TrimSpace(req.Description),
		SplitType:    split.SplitType(strings.ToUpper(strings.TrimSpace(req.SplitType))),
		Participants: participants,
	}, nil
}

func (p *ParticipantRequest) toParticipant() (split.Participant, error) {
	sp := split.Participant{Member: strings.ToLower(strings.TrimSpace(p.Email))}

	if p.Percentage != nil {
		pct, err := decimal.NewFromString(strings.TrimSpace(*p.Percentage))
		if err != nil {
			return sp, fmt.Errorf("%w: percentage %q for %s", money.ErrInvalidAmount, *p.Percentage, sp.Member)
		}
		sp.Percentage = &pct
	}
	if p.Amount != nil {
		cents, err := money.Parse(*p.Amount)
		if err != nil {
			return sp, fmt.Errorf("%w: amount %q for %s", err, *p.Amount, sp.Member)
		}
		sp.Amount = &cents
	}
	return sp, nil
}

// ExpenseResponse represents the response for a ledger entry
type ExpenseResponse struct {
	ID          int64            `json:"id"`
	GroupID     int64            `json:"group_id"`
	Sequence    int64            `json:"sequence"`
	Kind        Kind             `json:"kind"`
	PaidBy      string           `json:"paid_by"`
	Description string           `json:"description"`
	Amount      string           `json:"amount"`
	AmountCents int64            `json:"amount_cents"`
	SplitType   split.SplitType  `json:"split_type"`
	CreatedAt   string           `json:"created_at"`
	Shares      []*ShareResponse `json:"shares"`
}

// ShareResponse is what one participant owes for an entry
type ShareResponse struct {
	Email       string `json:"email"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amount_cents"`
}

// ToResponse converts an Expense to an ExpenseResponse DTO
func (e *Expense) ToResponse() *ExpenseResponse {
	shares := e.Shares()
	resp := &ExpenseResponse{
		ID:          e.ID(),
		GroupID:     e.GroupID(),
		Sequence:    e.Sequence(),
		Kind:        e.Kind(),
		PaidBy:      e.Payer(),
		Description: e.Description(),
		Amount:      money.Format(e.Amount()),
		AmountCents: e.Amount(),
		SplitType:   e.SplitType(),
		CreatedAt:   e.CreatedAt().UTC().Format("2006-01-02T15:04:05Z"),
		Shares:      make([]*ShareResponse, len(shares)),
	}
	for i, s := range shares {
		resp.Shares[i] = &ShareResponse{
			Email:       s.Member,
			Amount:      money.Format(s.Amount),
			AmountCents: s.Amount,
		}
	}
	return resp
}
