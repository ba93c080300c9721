package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/fees"
)

var (
	amountPattern   = regexp.MustCompile(`^\d{1,3}(,\d{3})*(\.\d+)?$|^\d+(\.\d+)?$|^\.\d+$`)
	withdrawPattern = regexp.MustCompile(`^([0-9.,]+)\s+([A-Z0-9]+)$`)
)

// WithdrawRequest is a parsed "withdraw <amount> <asset>" command
type WithdrawRequest struct {
	Amount decimal.Decimal
	Asset  string
}

// ParseAmount parses a user-entered positive amount such as "100", "0.5" or "1,000.25".
// Anything else fails with fees.ErrInvalidInput.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: amount is required", fees.ErrInvalidInput)
	}
	if !amountPattern.MatchString(s) {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", fees.ErrInvalidInput, s)
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", fees.ErrInvalidInput, s)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be greater than 0", fees.ErrInvalidInput)
	}
	return amount, nil
}

// ParseWithdrawCommand parses a natural language withdraw command
// Examples:
//   - "withdraw 100 USDC"
//   - "2.5 sol"
func ParseWithdrawCommand(command string) (*WithdrawRequest, error) {
	command = strings.TrimSpace(strings.ToUpper(command))
	command = strings.TrimSpace(strings.TrimPrefix(command, "WITHDRAW"))

	matches := withdrawPattern.FindStringSubmatch(command)
	if matches == nil {
		return nil, fmt.Errorf("%w: expected 'withdraw <amount> <asset>' (e.g., 'withdraw 100 USDC')", fees.ErrInvalidInput)
	}

	amount, err := ParseAmount(matches[1])
	if err != nil {
		return nil, err
	}

	return &WithdrawRequest{Amount: amount, Asset: matches[2]}, nil
}
