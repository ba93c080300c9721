package fees

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidInput is returned for non-positive amounts and malformed schedules
	ErrInvalidInput = errors.New("invalid input")
	// ErrBelowMinimumAmount is returned when the amount is under the schedule's minimum
	ErrBelowMinimumAmount = errors.New("amount below minimum")
)

// divisionPrecision is the number of fractional digits kept before unit rounding.
const divisionPrecision = 30

// Mode selects who absorbs the pool fee
type Mode string

const (
	SenderPaysFees    Mode = "sender_pays_fees"    // recipient gets exactly the requested amount
	RecipientPaysFees Mode = "recipient_pays_fees" // requested amount is moved as-is
)

// ParseMode accepts the canonical names plus the short forms "sender" and "recipient".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", string(SenderPaysFees), "sender":
		return SenderPaysFees, nil
	case string(RecipientPaysFees), "recipient":
		return RecipientPaysFees, nil
	default:
		return "", fmt.Errorf("%w: unknown fee mode %q", ErrInvalidInput, s)
	}
}

// WithdrawalPlan is the computed instruction for one private withdrawal.
// GrossAmount (and its base-unit form) is used for both the deposit and the
// withdrawal issued to the pool; ImpliedFee is informational only.
type WithdrawalPlan struct {
	Mode              Mode            `json:"mode"`
	RequestedAmount   decimal.Decimal `json:"requestedAmount"`
	ExactGross        decimal.Decimal `json:"exactGross"`
	GrossAmount       decimal.Decimal `json:"grossAmount"`
	GrossBaseUnits    *big.Int        `json:"grossBaseUnits"`
	ImpliedFee        decimal.Decimal `json:"impliedFee"`
	RecipientReceives decimal.Decimal `json:"recipientReceives"`
	Decimals          int32           `json:"decimals"`
}

// Compute dispatches to the calculation for the given mode
func Compute(mode Mode, amount decimal.Decimal, schedule FeeSchedule, decimals int32) (*WithdrawalPlan, error) {
	switch mode {
	case SenderPaysFees:
		return ComputeSenderPaysFees(amount, schedule, decimals)
	case RecipientPaysFees:
		return ComputeRecipientPaysFees(amount, schedule, decimals)
	default:
		return nil, fmt.Errorf("%w: unknown fee mode %q", ErrInvalidInput, mode)
	}
}

// ComputeSenderPaysFees inverts the pool fee so the recipient receives requestedNet.
//
// The pool delivers net = gross*(1-rate) - fixed, so gross = (net + fixed) / (1 - rate).
// Gross is floored to the asset's base unit; the pool then delivers at most
// one base unit less than requestedNet.
func ComputeSenderPaysFees(requestedNet decimal.Decimal, schedule FeeSchedule, decimals int32) (*WithdrawalPlan, error) {
	if err := checkPreconditions(requestedNet, schedule, decimals); err != nil {
		return nil, err
	}

	keep := decimal.NewFromInt(1).Sub(schedule.ProportionalRate)
	exact := requestedNet.Add(schedule.FixedFee).DivRound(keep, divisionPrecision)
	gross := FloorToUnit(exact, decimals)

	return &WithdrawalPlan{
		Mode:              SenderPaysFees,
		RequestedAmount:   requestedNet,
		ExactGross:        exact,
		GrossAmount:       gross,
		GrossBaseUnits:    ToBaseUnits(gross, decimals),
		ImpliedFee:        gross.Sub(requestedNet),
		RecipientReceives: schedule.Delivered(gross),
		Decimals:          decimals,
	}, nil
}

// ComputeRecipientPaysFees moves requestedAmount unchanged and reports the fee
// the recipient absorbs. Amounts finer than one base unit cannot be moved as-is
// and fail with ErrInvalidInput. RecipientReceives may be zero or negative for
// small amounts; callers must show it before the user confirms.
func ComputeRecipientPaysFees(requestedAmount decimal.Decimal, schedule FeeSchedule, decimals int32) (*WithdrawalPlan, error) {
	if err := checkPreconditions(requestedAmount, schedule, decimals); err != nil {
		return nil, err
	}
	if !requestedAmount.Equal(FloorToUnit(requestedAmount, decimals)) {
		return nil, fmt.Errorf("%w: amount %s has more than %d decimals", ErrInvalidInput, requestedAmount, decimals)
	}

	fee := schedule.PoolDeduction(requestedAmount)

	return &WithdrawalPlan{
		Mode:              RecipientPaysFees,
		RequestedAmount:   requestedAmount,
		ExactGross:        requestedAmount,
		GrossAmount:       requestedAmount,
		GrossBaseUnits:    ToBaseUnits(requestedAmount, decimals),
		ImpliedFee:        fee,
		RecipientReceives: schedule.Delivered(requestedAmount),
		Decimals:          decimals,
	}, nil
}

func checkPreconditions(amount decimal.Decimal, schedule FeeSchedule, decimals int32) error {
	if err := schedule.Validate(); err != nil {
		return err
	}
	if err := validateDecimals(decimals); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount %s must be greater than 0", ErrInvalidInput, amount)
	}
	if amount.LessThan(schedule.MinimumNet) {
		return fmt.Errorf("%w: %s is less than the minimum of %s", ErrBelowMinimumAmount, amount, schedule.MinimumNet)
	}
	return nil
}
