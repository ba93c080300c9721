package fees

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FeeSchedule describes the fee a privacy pool deducts from every withdrawal:
// ProportionalRate * gross + FixedFee.
type FeeSchedule struct {
	ProportionalRate decimal.Decimal `json:"proportionalRate"`
	FixedFee         decimal.Decimal `json:"fixedFee"`
	MinimumNet       decimal.Decimal `json:"minimumNet"`
}

// Privacy pool defaults, denominated in USD-equivalent units.
const (
	DefaultProportionalRate = 0.0035
	DefaultFixedFee         = 0.744548676
	DefaultMinimumNet       = 2.0
	DefaultDecimals         = 6
)

// NewFeeSchedule builds a validated schedule from float inputs
func NewFeeSchedule(rate, fixedFee, minimumNet float64) (FeeSchedule, error) {
	s := FeeSchedule{
		ProportionalRate: decimal.NewFromFloat(rate),
		FixedFee:         decimal.NewFromFloat(fixedFee),
		MinimumNet:       decimal.NewFromFloat(minimumNet),
	}
	if err := s.Validate(); err != nil {
		return FeeSchedule{}, err
	}
	return s, nil
}

// DefaultSchedule returns the privacy pool's published schedule
func DefaultSchedule() FeeSchedule {
	return FeeSchedule{
		ProportionalRate: decimal.NewFromFloat(DefaultProportionalRate),
		FixedFee:         decimal.NewFromFloat(DefaultFixedFee),
		MinimumNet:       decimal.NewFromFloat(DefaultMinimumNet),
	}
}

// Validate checks 0 <= rate < 1, fixed fee >= 0 and minimum >= 0
func (s FeeSchedule) Validate() error {
	if s.ProportionalRate.IsNegative() || s.ProportionalRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: proportional rate %s must be in [0, 1)", ErrInvalidInput, s.ProportionalRate)
	}
	if s.FixedFee.IsNegative() {
		return fmt.Errorf("%w: fixed fee %s must not be negative", ErrInvalidInput, s.FixedFee)
	}
	if s.MinimumNet.IsNegative() {
		return fmt.Errorf("%w: minimum amount %s must not be negative", ErrInvalidInput, s.MinimumNet)
	}
	return nil
}

// PoolDeduction is the fee the pool itself takes from a withdrawal of gross.
func (s FeeSchedule) PoolDeduction(gross decimal.Decimal) decimal.Decimal {
	return gross.Mul(s.ProportionalRate).Add(s.FixedFee)
}

// Delivered is what the recipient receives when gross is withdrawn.
func (s FeeSchedule) Delivered(gross decimal.Decimal) decimal.Decimal {
	return gross.Sub(s.PoolDeduction(gross))
}
