package status

import "strings"

// Payload is a JSON-decoded execution status response. Nothing about its shape is trusted.
type Payload map[string]any

// UnknownStatus is reported when no status field carries a value
const UnknownStatus = "UNKNOWN"

// Upstream execution states
const (
	StatusKnownDepositTx    = "KNOWN_DEPOSIT_TX"
	StatusPendingDeposit    = "PENDING_DEPOSIT"
	StatusIncompleteDeposit = "INCOMPLETE_DEPOSIT"
	StatusProcessing        = "PROCESSING"
	StatusSuccess           = "SUCCESS"
	StatusRefunded          = "REFUNDED"
	StatusFailed            = "FAILED"
)

// NormalizedExecutionStatus is the canonical, fully populated status record
// served to clients. Every field is present regardless of the input.
type NormalizedExecutionStatus struct {
	Status           string      `json:"status"`
	UpdatedAt        string      `json:"updatedAt"`
	OriginAsset      *string     `json:"originAsset"`
	DestinationAsset *string     `json:"destinationAsset"`
	SwapDetails      SwapDetails `json:"swapDetails"`
}

// SwapDetails carries amounts and transaction hashes. Amount fields keep the
// upstream value as-is (usually a numeric string) and are null when absent,
// except the refunded amounts which default to "0". Hash lists are never null.
type SwapDetails struct {
	AmountIn                 any   `json:"amountIn"`
	AmountInFormatted        any   `json:"amountInFormatted"`
	AmountInUsd              any   `json:"amountInUsd"`
	AmountOut                any   `json:"amountOut"`
	AmountOutFormatted       any   `json:"amountOutFormatted"`
	AmountOutUsd             any   `json:"amountOutUsd"`
	DepositedAmount          any   `json:"depositedAmount"`
	DepositedAmountFormatted any   `json:"depositedAmountFormatted"`
	DepositedAmountUsd       any   `json:"depositedAmountUsd"`
	DestinationChainTxHashes []any `json:"destinationChainTxHashes"`
	IntentHashes             []any `json:"intentHashes"`
	NearTxHashes             []any `json:"nearTxHashes"`
	OriginChainTxHashes      []any `json:"originChainTxHashes"`
	RefundedAmount           any   `json:"refundedAmount"`
	RefundedAmountFormatted  any   `json:"refundedAmountFormatted"`
	RefundedAmountUsd        any   `json:"refundedAmountUsd"`
	Slippage                 any   `json:"slippage"`
}

// IsTerminal reports whether a swap in this state will not change again
func IsTerminal(status string) bool {
	switch strings.ToUpper(status) {
	case StatusSuccess, StatusRefunded, StatusFailed:
		return true
	default:
		return false
	}
}
