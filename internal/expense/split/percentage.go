package split

import "github.com/shopspring/decimal"

// =============================================================================
// PERCENTAGE SPLIT STRATEGY
// Divides the expense based on specified percentages for each participant
// =============================================================================

var (
	hundred             = decimal.NewFromInt(100)
	percentageTolerance = decimal.RequireFromString("0.01")
)

// PercentageStrategy implements the Strategy interface for percentage-based splits
type PercentageStrategy struct{}

// Type returns the split type identifier
func (s *PercentageStrategy) Type() SplitType {
	return SplitTypePercentage
}

// Validate checks if the inputs are valid for a percentage split
func (s *PercentageStrategy) Validate(amount int64, participants []Participant) error {
	if err := validateCommon(SplitTypePercentage, amount, participants); err != nil {
		return err
	}

	// Check that all participants have percentages and they sum to 100
	total := decimal.Zero
	for _, p := range participants {
		if p.Percentage == nil {
			return invalid(SplitTypePercentage, ErrMissingPercentage)
		}
		if p.Percentage.IsNegative() || p.Percentage.GreaterThan(hundred) {
			return invalid(SplitTypePercentage, ErrPercentageOutOfRange)
		}
		total = total.Add(*p.Percentage)
	}

	// Allow 99.99 to 100.01
	if total.Sub(hundred).Abs().GreaterThan(percentageTolerance) {
		return invalid(SplitTypePercentage, ErrInvalidPercentages)
	}

	return nil
}

// Calculate gives each participant floor(amount * pct / total). Dividing by the
// actual total rather than 100 keeps the floors from overshooting when the
// percentages land inside the tolerance band. The leftover units go one each to
// the first participants with a positive percentage, in the order given.
func (s *PercentageStrategy) Calculate(amount int64, participants []Participant) ([]Share, error) {
	if err := s.Validate(amount, participants); err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, p := range participants {
		total = total.Add(*p.Percentage)
	}

	whole := decimal.NewFromInt(amount)
	shares := make([]Share, len(participants))
	var allocated int64
	for i, p := range participants {
		q, _ := whole.Mul(*p.Percentage).QuoRem(total, 0)
		owed := q.IntPart()
		shares[i] = Share{Member: p.Member, Amount: owed}
		allocated += owed
	}

	distributeRemainder(shares, amount-allocated, func(i int) bool {
		return participants[i].Percentage.IsPositive()
	})

	return shares, nil
}
