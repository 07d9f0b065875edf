package settlement

import (
	"github.com/fkhayef/splitsmart/internal/balance"
	"github.com/fkhayef/splitsmart/pkg/money"
)

// SettleUpRequest records a cash payment from the acting member to another member.
// Amount is a decimal string; when omitted the outstanding simplified debt is paid.
type SettleUpRequest struct {
	ToEmail string `json:"to_email"`
	Amount  string `json:"amount,omitempty"`
}

// BalanceResponse is one member's net position.
// Positive means the member is owed money, negative means they owe.
type BalanceResponse struct {
	Email        string `json:"email"`
	Balance      string `json:"balance"`
	BalanceCents int64  `json:"balance_cents"`
	Message      string `json:"message"`
}

// DebtResponse is one payment instruction
type DebtResponse struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amount_cents"`
}

// SummaryResponse represents the summary of a group's books
type SummaryResponse struct {
	GroupID            int64              `json:"group_id"`
	GroupName          string             `json:"group_name"`
	MemberCount        int                `json:"member_count"`
	EntryCount         int                `json:"entry_count"`
	TotalExpenses      string             `json:"total_expenses"`
	TotalExpensesCents int64              `json:"total_expenses_cents"`
	Balances           []*BalanceResponse `json:"balances"`
	Debts              []*DebtResponse    `json:"debts"`
}

// PositionResponse is the acting member's standing in one group
type PositionResponse struct {
	GroupID      int64           `json:"group_id"`
	GroupName    string          `json:"group_name"`
	Balance      string          `json:"balance"`
	BalanceCents int64           `json:"balance_cents"`
	Debts        []*DebtResponse `json:"debts"`
}

func balanceMessage(email string, cents int64) string {
	switch {
	case cents > 0:
		return email + " is owed " + money.Format(cents)
	case cents < 0:
		return email + " owes " + money.Format(-cents)
	default:
		return email + " is settled up"
	}
}

// toBalanceResponses lists balances in roster order, then any non-roster
// members (former participants) in key order.
func toBalanceResponses(b balance.Balances, roster []string) []*BalanceResponse {
	out := make([]*BalanceResponse, 0, len(b))
	listed := make(map[string]bool, len(roster))
	add := func(email string) {
		cents := b[email]
		out = append(out, &BalanceResponse{
			Email:        email,
			Balance:      money.Format(cents),
			BalanceCents: cents,
			Message:      balanceMessage(email, cents),
		})
		listed[email] = true
	}

	for _, email := range roster {
		add(email)
	}
	for _, email := range b.Members() {
		if !listed[email] {
			add(email)
		}
	}
	return out
}

func toDebtResponses(debts []Instruction) []*DebtResponse {
	out := make([]*DebtResponse, len(debts))
	for i, d := range debts {
		out[i] = &DebtResponse{
			From:        d.From,
			To:          d.To,
			Amount:      money.Format(d.Amount),
			AmountCents: d.Amount,
		}
	}
	return out
}

// ToResponse converts a Summary to a SummaryResponse DTO
func (s *Summary) ToResponse() *SummaryResponse {
	return &SummaryResponse{
		GroupID:            s.Group.ID,
		GroupName:          s.Group.Name,
		MemberCount:        s.MemberCount,
		EntryCount:         s.EntryCount,
		TotalExpenses:      money.Format(s.TotalExpenses),
		TotalExpensesCents: s.TotalExpenses,
		Balances:           toBalanceResponses(s.Balances, s.Roster),
		Debts:              toDebtResponses(s.Debts),
	}
}

// ToResponse converts a GroupPosition to a PositionResponse DTO
func (p *GroupPosition) ToResponse() *PositionResponse {
	return &PositionResponse{
		GroupID:      p.GroupID,
		GroupName:    p.GroupName,
		Balance:      money.Format(p.Balance),
		BalanceCents: p.Balance,
		Debts:        toDebtResponses(p.Debts),
	}
}
