package address_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/address"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		chain   string
		addr    string
		wantErr error
	}{
		{"solana system program", "sol", "11111111111111111111111111111111", nil},
		{"solana usdc mint", "Solana", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", nil},
		{"solana bad base58", "sol", "0OIl-not-base58", address.ErrInvalidAddress},
		{"evm checksummed", "eth", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", nil},
		{"evm lowercase on base", "base", "0xde0b295669a9fd93d5f28d9ec85e40f4cb697bae", nil},
		{"evm too short", "arb", "0x1234", address.ErrInvalidAddress},
		{"unknown chain accepts anything", "near", "alice.near", nil},
		{"empty", "sol", "   ", address.ErrEmptyAddress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := address.Validate(tt.chain, tt.addr)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFamilyOf(t *testing.T) {
	assert.Equal(t, address.FamilySolana, address.FamilyOf(" SOL "))
	assert.Equal(t, address.FamilyEVM, address.FamilyOf("polygon"))
	assert.Equal(t, address.FamilyUnknown, address.FamilyOf("btc"))
}
