package split

// =============================================================================
// EQUAL SPLIT STRATEGY
// Divides the expense equally among all participants, payer included
// =============================================================================

// EqualStrategy implements the Strategy interface for equal splits
type EqualStrategy struct{}

// Type returns the split type identifier
func (s *EqualStrategy) Type() SplitType {
	return SplitTypeEqual
}

// Validate checks if the inputs are valid for an equal split
func (s *EqualStrategy) Validate(amount int64, participants []Participant) error {
	return validateCommon(SplitTypeEqual, amount, participants)
}

// Calculate divides the amount evenly. The indivisible remainder goes one unit
// each to the first participants in the order given, so 100 over three
// participants yields 34, 33, 33.
func (s *EqualStrategy) Calculate(amount int64, participants []Participant) ([]Share, error) {
	if err := s.Validate(amount, participants); err != nil {
		return nil, err
	}

	n := int64(len(participants))
	base := amount / n

	shares := make([]Share, len(participants))
	for i, p := range participants {
		shares[i] = Share{Member: p.Member, Amount: base}
	}
	distributeRemainder(shares, amount%n, nil)

	return shares, nil
}
