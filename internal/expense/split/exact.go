package split

// =============================================================================
// EXACT SPLIT STRATEGY
// Each participant owes a specific exact amount (must sum to total)
// =============================================================================

// ExactStrategy implements the Strategy interface for exact amount splits
type ExactStrategy struct{}

// Type returns the split type identifier
func (s *ExactStrategy) Type() SplitType {
	return SplitTypeExact
}

// Validate checks if the inputs are valid for an exact split
func (s *ExactStrategy) Validate(amount int64, participants []Participant) error {
	if err := validateCommon(SplitTypeExact, amount, participants); err != nil {
		return err
	}

	for _, p := range participants {
		if p.Amount == nil {
			return invalid(SplitTypeExact, ErrMissingExactAmount)
		}
		if *p.Amount < 0 {
			return invalid(SplitTypeExact, ErrNegativeAmount)
		}
	}

	var totalExact int64
	for _, p := range participants {
		// No share may exceed what is left of amount, so the sum cannot wrap.
		if *p.Amount > amount-totalExact {
			return invalid(SplitTypeExact, ErrInvalidExactAmounts)
		}
		totalExact += *p.Amount
	}

	// Amounts are in minor units, so the sum has to match to the unit.
	if totalExact != amount {
		return invalid(SplitTypeExact, ErrInvalidExactAmounts)
	}

	return nil
}

// Calculate returns the exact amounts specified for each participant
func (s *ExactStrategy) Calculate(amount int64, participants []Participant) ([]Share, error) {
	if err := s.Validate(amount, participants); err != nil {
		return nil, err
	}

	shares := make([]Share, len(participants))
	for i, p := range participants {
		shares[i] = Share{Member: p.Member, Amount: *p.Amount}
	}

	return shares, nil
}
