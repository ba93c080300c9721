package address

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
)

var (
	// ErrEmptyAddress is returned when no recipient address is given
	ErrEmptyAddress = errors.New("recipient address is required")
	// ErrInvalidAddress is returned when the address does not parse for its chain
	ErrInvalidAddress = errors.New("invalid recipient address")
)

// Family groups chains that share an address format
type Family string

const (
	FamilySolana  Family = "solana"
	FamilyEVM     Family = "evm"
	FamilyUnknown Family = "unknown"
)

var chainFamilies = map[string]Family{
	"sol":       FamilySolana,
	"solana":    FamilySolana,
	"eth":       FamilyEVM,
	"ethereum":  FamilyEVM,
	"base":      FamilyEVM,
	"arb":       FamilyEVM,
	"arbitrum":  FamilyEVM,
	"pol":       FamilyEVM,
	"polygon":   FamilyEVM,
	"bsc":       FamilyEVM,
	"op":        FamilyEVM,
	"optimism":  FamilyEVM,
	"avax":      FamilyEVM,
	"avalanche": FamilyEVM,
	"gnosis":    FamilyEVM,
	"evm":       FamilyEVM,
}

// FamilyOf maps a chain name to its address family
func FamilyOf(chain string) Family {
	if f, ok := chainFamilies[strings.ToLower(strings.TrimSpace(chain))]; ok {
		return f
	}
	return FamilyUnknown
}

// Validate checks that addr is well formed for chain.
// Chains without a known format only require a non-empty address.
func Validate(chain, addr string) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ErrEmptyAddress
	}

	switch FamilyOf(chain) {
	case FamilySolana:
		if _, err := solana.PublicKeyFromBase58(addr); err != nil {
			return fmt.Errorf("%w for solana: %v", ErrInvalidAddress, err)
		}
	case FamilyEVM:
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("%w for %s: %s", ErrInvalidAddress, chain, addr)
		}
	}

	return nil
}
