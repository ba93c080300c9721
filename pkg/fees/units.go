package fees

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// MaxDecimals bounds the unit scale accepted for an asset.
const MaxDecimals = 18

func validateDecimals(decimals int32) error {
	if decimals < 0 || decimals > MaxDecimals {
		return fmt.Errorf("%w: decimals %d out of range [0, %d]", ErrInvalidInput, decimals, MaxDecimals)
	}
	return nil
}

// FloorToUnit rounds amount down to the smallest transferable unit at the given precision.
func FloorToUnit(amount decimal.Decimal, decimals int32) decimal.Decimal {
	return amount.RoundFloor(decimals)
}

// ToBaseUnits converts a currency amount to integer base units, flooring any remainder.
// 1.5 USDC at 6 decimals is 1500000.
func ToBaseUnits(amount decimal.Decimal, decimals int32) *big.Int {
	return amount.Shift(decimals).Floor().BigInt()
}

// FromBaseUnits converts integer base units back to a currency amount.
func FromBaseUnits(units *big.Int, decimals int32) decimal.Decimal {
	if units == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(units, -decimals)
}

// UnitSize returns the value of one base unit, e.g. 0.000001 at 6 decimals.
func UnitSize(decimals int32) decimal.Decimal {
	return decimal.New(1, -decimals)
}
