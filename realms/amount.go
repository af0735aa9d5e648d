package realms

import (
	"context"
	"fmt"
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/shopspring/decimal"

	"realms-cli/governance"
	"realms-cli/ledger"
)

// Amount converts raw token units to a decimal amount.
func Amount(raw uint64, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(raw), -int32(decimals))
}

// ParseAmount converts a decimal string such as "12.5" into raw token units.
func ParseAmount(s string, decimals uint8) (uint64, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if amount.IsNegative() {
		return 0, fmt.Errorf("invalid amount %q: negative", s)
	}
	raw := amount.Shift(int32(decimals))
	if !raw.Equal(raw.Truncate(0)) {
		return 0, fmt.Errorf("invalid amount %q: more than %d decimals", s, decimals)
	}
	value := raw.BigInt()
	if !value.IsUint64() {
		return 0, fmt.Errorf("invalid amount %q: too large", s)
	}
	return value.Uint64(), nil
}

// FetchMint returns the SPL mint account at address.
func (c *Client) FetchMint(ctx context.Context, address solana.PublicKey) (*token.Mint, error) {
	data, err := ledger.FetchAccount(ctx, c.RpcClient, address)
	if err != nil {
		return nil, err
	}
	var mint token.Mint
	if err := bin.NewBinDecoder(data).Decode(&mint); err != nil {
		return nil, fmt.Errorf("%w: mint %s: %v", governance.ErrDecode, address, err)
	}
	return &mint, nil
}
