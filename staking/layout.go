package staking

import (
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"

	"realms-cli/governance"
)

// Stake account layout, 138 bytes:
//
//	0   owner           pubkey
//	32  shares          u64
//	40  state           u8 (0 inactive, 1 bonded, 2 unbonding)
//	41  pool            pubkey
//	73  unbonding start i64
//	81  lockup end      i64
//	89  bump            u8
//	90  reserved        [48]u8
const (
	StakeAccountSize = 138

	stakeOwnerOffset          = 0
	stakeSharesOffset         = 32
	stakeStateOffset          = 40
	stakePoolOffset           = 41
	stakeUnbondingStartOffset = 73
	stakeLockupEndOffset      = 81
	stakeBumpOffset           = 89
)

// Stake pool layout, at least 105 bytes:
//
//	0   authority             pubkey
//	32  staking mint          pubkey
//	64  staking token account pubkey
//	96  total shares          u64
//	104 bump                  u8
const (
	StakePoolSize = 105

	poolAuthorityOffset    = 0
	poolMintOffset         = 32
	poolTokenAccountOffset = 64
	poolTotalSharesOffset  = 96
	poolBumpOffset         = 104
)

// TokenAccountSize is the size of an SPL token account.
const TokenAccountSize = 165

type StakeState uint8

const (
	StakeStateInactive StakeState = iota
	StakeStateBonded
	StakeStateUnbonding
)

func (s StakeState) String() string {
	switch s {
	case StakeStateInactive:
		return "Inactive"
	case StakeStateBonded:
		return "Bonded"
	case StakeStateUnbonding:
		return "Unbonding"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(s))
	}
}

type StakeAccount struct {
	Owner          solana.PublicKey
	Shares         uint64
	State          StakeState
	Pool           solana.PublicKey
	UnbondingStart int64
	LockupEnd      int64
	Bump           uint8
}

// BondedPool returns the pool the account is bonded to, if any.
func (s *StakeAccount) BondedPool() (solana.PublicKey, bool) {
	if s.State != StakeStateBonded {
		return solana.PublicKey{}, false
	}
	return s.Pool, true
}

type StakePool struct {
	Authority           solana.PublicKey
	StakingMint         solana.PublicKey
	StakingTokenAccount solana.PublicKey
	TotalShares         uint64
	Bump                uint8
}

func readPubkey(data []byte, offset int) solana.PublicKey {
	return solana.PublicKeyFromBytes(data[offset : offset+solana.PublicKeyLength])
}

// DecodeStakeAccount decodes a stake account. Any size other than 138 is rejected.
func DecodeStakeAccount(data []byte) (*StakeAccount, error) {
	if len(data) != StakeAccountSize {
		return nil, fmt.Errorf("%w: stake account is %d bytes, want %d", governance.ErrDecode, len(data), StakeAccountSize)
	}
	state := StakeState(data[stakeStateOffset])
	if state > StakeStateUnbonding {
		return nil, fmt.Errorf("%w: stake account state %d", governance.ErrDecode, data[stakeStateOffset])
	}
	return &StakeAccount{
		Owner:          readPubkey(data, stakeOwnerOffset),
		Shares:         binary.LittleEndian.Uint64(data[stakeSharesOffset:]),
		State:          state,
		Pool:           readPubkey(data, stakePoolOffset),
		UnbondingStart: int64(binary.LittleEndian.Uint64(data[stakeUnbondingStartOffset:])),
		LockupEnd:      int64(binary.LittleEndian.Uint64(data[stakeLockupEndOffset:])),
		Bump:           data[stakeBumpOffset],
	}, nil
}

// DecodeStakePool decodes a stake pool; trailing bytes are ignored.
func DecodeStakePool(data []byte) (*StakePool, error) {
	if len(data) < StakePoolSize {
		return nil, fmt.Errorf("%w: stake pool is %d bytes, want at least %d", governance.ErrDecode, len(data), StakePoolSize)
	}
	return &StakePool{
		Authority:           readPubkey(data, poolAuthorityOffset),
		StakingMint:         readPubkey(data, poolMintOffset),
		StakingTokenAccount: readPubkey(data, poolTokenAccountOffset),
		TotalShares:         binary.LittleEndian.Uint64(data[poolTotalSharesOffset:]),
		Bump:                data[poolBumpOffset],
	}, nil
}

// DecodeTokenAccount decodes an SPL token account.
func DecodeTokenAccount(data []byte) (*token.Account, error) {
	if len(data) < TokenAccountSize {
		return nil, fmt.Errorf("%w: token account is %d bytes, want %d", governance.ErrDecode, len(data), TokenAccountSize)
	}
	var account token.Account
	if err := bin.NewBinDecoder(data).Decode(&account); err != nil {
		return nil, fmt.Errorf("%w: token account: %v", governance.ErrDecode, err)
	}
	return &account, nil
}
