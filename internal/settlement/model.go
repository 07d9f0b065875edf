package settlement

import (
	"github.com/fkhayef/splitsmart/internal/balance"
	"github.com/fkhayef/splitsmart/internal/group"
)

// Summary is the state of one group's books
type Summary struct {
	Group         *group.Group
	MemberCount   int
	TotalExpenses int64 // EXPENSE entries only; payments move money, they do not spend it
	EntryCount    int
	Balances      balance.Balances
	Roster        []string // join order, for presenting balances
	Debts         []Instruction
}

// GroupPosition is where one member stands in one group
type GroupPosition struct {
	GroupID   int64
	GroupName string
	Balance   int64
	Debts     []Instruction // only the instructions involving the member
}
