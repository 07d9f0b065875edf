package split

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// SplitType defines the type of split strategy
type SplitType string

const (
	SplitTypeEqual      SplitType = "EQUAL"
	SplitTypePercentage SplitType = "PERCENTAGE"
	SplitTypeExact      SplitType = "EXACT"
)

// Participant is one member taking part in a split, with the parameter its strategy needs.
type Participant struct {
	Member     string           `json:"member"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"` // For PERCENTAGE split
	Amount     *int64           `json:"amount,omitempty"`     // For EXACT split, in minor units
}

// Share is the amount a single participant owes for an expense, in minor units.
type Share struct {
	Member string `json:"member"`
	Amount int64  `json:"amount"`
}

// Strategy is the interface that all split strategies must implement.
//
// Calculate returns one share per participant, in participant order, and the
// shares always sum to amount exactly.
type Strategy interface {
	Calculate(amount int64, participants []Participant) ([]Share, error)

	// Type returns the type identifier for this strategy
	Type() SplitType

	// Validate checks if the inputs are valid for this strategy
	Validate(amount int64, participants []Participant) error
}

// Factory creates split strategies based on the requested type
type Factory struct{}

// NewSplitStrategyFactory creates a new factory instance
func NewSplitStrategyFactory() *Factory {
	return &Factory{}
}

// Create returns the appropriate strategy implementation based on the type
func (f *Factory) Create(splitType SplitType) (Strategy, error) {
	switch splitType {
	case SplitTypeEqual:
		return &EqualStrategy{}, nil
	case SplitTypePercentage:
		return &PercentageStrategy{}, nil
	case SplitTypeExact:
		return &ExactStrategy{}, nil
	default:
		return nil, &InvalidSplitError{Type: splitType, Err: ErrUnknownSplitType}
	}
}

// CreateFromString creates a strategy from a string type (useful for API requests)
func (f *Factory) CreateFromString(splitType string) (Strategy, error) {
	return f.Create(SplitType(splitType))
}

var (
	ErrUnknownSplitType     = errors.New("unknown split type")
	ErrNoParticipants       = errors.New("at least one participant is required")
	ErrNonPositiveAmount    = errors.New("amount must be positive")
	ErrEmptyMember          = errors.New("participant member is required")
	ErrDuplicateParticipant = errors.New("participant listed more than once")
	ErrInvalidPercentages   = errors.New("percentages must sum to 100")
	ErrInvalidExactAmounts  = errors.New("exact amounts must sum to total amount")
	ErrNegativeAmount       = errors.New("amounts cannot be negative")
	ErrMissingPercentage    = errors.New("percentage value required for all participants")
	ErrMissingExactAmount   = errors.New("exact amount required for all participants")
	ErrPercentageOutOfRange = errors.New("percentage must be between 0 and 100")
)

// InvalidSplitError reports a split request that cannot produce shares.
// The cause is one of the Err* sentinels above and is reachable with errors.Is.
type InvalidSplitError struct {
	Type SplitType
	Err  error
}

func (e *InvalidSplitError) Error() string {
	return fmt.Sprintf("invalid %s split: %v", e.Type, e.Err)
}

func (e *InvalidSplitError) Unwrap() error {
	return e.Err
}

func invalid(t SplitType, err error) error {
	return &InvalidSplitError{Type: t, Err: err}
}

// validateCommon runs the checks every strategy shares.
func validateCommon(t SplitType, amount int64, participants []Participant) error {
	if amount <= 0 {
		return invalid(t, ErrNonPositiveAmount)
	}
	if len(participants) == 0 {
		return invalid(t, ErrNoParticipants)
	}
	seen := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		if p.Member == "" {
			return invalid(t, ErrEmptyMember)
		}
		if _, dup := seen[p.Member]; dup {
			return invalid(t, ErrDuplicateParticipant)
		}
		seen[p.Member] = struct{}{}
	}
	return nil
}

// distributeRemainder hands out the leftover minor units one at a time to the
// first eligible shares in order. eligible may be nil, meaning every share.
func distributeRemainder(shares []Share, remainder int64, eligible func(i int) bool) {
	for i := range shares {
		if remainder == 0 {
			return
		}
		if eligible != nil && !eligible(i) {
			continue
		}
		shares[i].Amount++
		remainder--
	}
}
