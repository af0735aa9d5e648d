package staking

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realms-cli/governance"
)

func key(b byte) solana.PublicKey {
	var out solana.PublicKey
	for i := range out {
		out[i] = b
	}
	return out
}

func stakeAccountBytes(owner solana.PublicKey, shares uint64, state StakeState, pool solana.PublicKey) []byte {
	data := make([]byte, StakeAccountSize)
	copy(data[stakeOwnerOffset:], owner[:])
	binary.LittleEndian.PutUint64(data[stakeSharesOffset:], shares)
	data[stakeStateOffset] = uint8(state)
	copy(data[stakePoolOffset:], pool[:])
	binary.LittleEndian.PutUint64(data[stakeUnbondingStartOffset:], 11)
	binary.LittleEndian.PutUint64(data[stakeLockupEndOffset:], 22)
	data[stakeBumpOffset] = 254
	return data
}

func stakePoolBytes(tokenAccount solana.PublicKey, totalShares uint64) []byte {
	data := make([]byte, StakePoolSize)
	copy(data[poolAuthorityOffset:], key(0xa1).Bytes())
	copy(data[poolMintOffset:], key(0xa2).Bytes())
	copy(data[poolTokenAccountOffset:], tokenAccount[:])
	binary.LittleEndian.PutUint64(data[poolTotalSharesOffset:], totalShares)
	data[poolBumpOffset] = 253
	return data
}

func tokenAccountBytes(mint, owner solana.PublicKey, amount uint64) []byte {
	data := make([]byte, TokenAccountSize)
	copy(data[0:], mint[:])
	copy(data[32:], owner[:])
	binary.LittleEndian.PutUint64(data[64:], amount)
	data[108] = 1
	return data
}

func TestDecodeStakeAccount(t *testing.T) {
	stake, err := DecodeStakeAccount(stakeAccountBytes(key(1), 50, StakeStateBonded, key(2)))
	require.NoError(t, err)

	assert.Equal(t, key(1), stake.Owner)
	assert.Equal(t, uint64(50), stake.Shares)
	assert.Equal(t, StakeStateBonded, stake.State)
	assert.Equal(t, int64(11), stake.UnbondingStart)
	assert.Equal(t, int64(22), stake.LockupEnd)
	assert.Equal(t, uint8(254), stake.Bump)
	pool, bonded := stake.BondedPool()
	assert.True(t, bonded)
	assert.Equal(t, key(2), pool)

	unbonding, err := DecodeStakeAccount(stakeAccountBytes(key(1), 50, StakeStateUnbonding, key(2)))
	require.NoError(t, err)
	_, bonded = unbonding.BondedPool()
	assert.False(t, bonded)
	assert.Equal(t, "Unbonding", unbonding.State.String())
}

func TestDecodeStakeAccount_Malformed(t *testing.T) {
	good := stakeAccountBytes(key(1), 50, StakeStateBonded, key(2))
	badState := append([]byte(nil), good...)
	badState[stakeStateOffset] = 7

	for _, tc := range []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", good[:137]},
		{"long", append(append([]byte(nil), good...), 0)},
		{"unknown state", badState},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeStakeAccount(tc.data)
			assert.ErrorIs(t, err, governance.ErrDecode)
		})
	}
}

func TestDecodeStakePool(t *testing.T) {
	data := stakePoolBytes(key(3), 200)
	pool, err := DecodeStakePool(append(data, 0, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, key(0xa1), pool.Authority)
	assert.Equal(t, key(0xa2), pool.StakingMint)
	assert.Equal(t, key(3), pool.StakingTokenAccount)
	assert.Equal(t, uint64(200), pool.TotalShares)
	assert.Equal(t, uint8(253), pool.Bump)

	_, err = DecodeStakePool(data[:104])
	assert.ErrorIs(t, err, governance.ErrDecode)
}

func TestDecodeTokenAccount(t *testing.T) {
	account, err := DecodeTokenAccount(tokenAccountBytes(key(4), key(5), 1000))
	require.NoError(t, err)
	assert.Equal(t, key(4), account.Mint)
	assert.Equal(t, key(5), account.Owner)
	assert.Equal(t, uint64(1000), account.Amount)

	_, err = DecodeTokenAccount(make([]byte, 100))
	assert.ErrorIs(t, err, governance.ErrDecode)
}
