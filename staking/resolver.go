package staking

import (
	"context"
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
	"github.com/gagliardetto/solana-go"
	"k8s.io/klog/v2"

	"realms-cli/governance"
	"realms-cli/ledger"
)

// ErrNoStakeAccount is returned when the owner has no bonded stake account with shares.
var ErrNoStakeAccount = fmt.Errorf("no bonded stake account with shares: %w", governance.ErrAccountNotFound)

// VoterWeight is a snapshot of an owner's stake and the weight it yields.
// Weight is nil when the pool has no shares or the result does not fit in a u64.
type VoterWeight struct {
	Owner            solana.PublicKey
	StakeAccount     solana.PublicKey
	Stake            *StakeAccount
	Pool             solana.PublicKey
	StakePool        *StakePool
	PoolTokenAccount solana.PublicKey
	PoolTokenAmount  uint64
	Weight           *uint64

	// Candidates is the number of accounts returned by the node, Skipped the number
	// of those that failed to decode.
	Candidates int
	Skipped    int
}

type Resolver struct {
	Reader         ledger.Reader
	StakeProgramID solana.PublicKey
}

func NewResolver(reader ledger.Reader, stakeProgramID solana.PublicKey) *Resolver {
	if stakeProgramID.IsZero() {
		stakeProgramID = DefaultStakeProgramID
	}
	return &Resolver{Reader: reader, StakeProgramID: stakeProgramID}
}

// FindStakeAccounts returns every decodable stake account of owner in node order,
// plus the number of accounts that were skipped because they failed to decode.
func (r *Resolver) FindStakeAccounts(ctx context.Context, owner solana.PublicKey) ([]ledger.RawAccount, []*StakeAccount, int, error) {
	raw, err := ledger.FetchProgramAccounts(ctx, r.Reader, r.StakeProgramID,
		ledger.DataSizeFilter(StakeAccountSize),
		ledger.PubkeyFilter(stakeOwnerOffset, owner),
	)
	if err != nil {
		return nil, nil, 0, err
	}

	var (
		kept    []ledger.RawAccount
		decoded []*StakeAccount
		skipped int
	)
	for _, account := range raw {
		stake, err := DecodeStakeAccount(account.Data)
		if err != nil {
			skipped++
			klog.Warningf("skipping stake account %s: %v", account.Address, err)
			if klog.V(2).Enabled() {
				klog.V(2).Info(goerrors.Wrap(err, 0).ErrorStack())
			}
			continue
		}
		kept = append(kept, account)
		decoded = append(decoded, stake)
	}
	return kept, decoded, skipped, nil
}

// Resolve computes the voter weight of owner. The first stake account in node order
// that is bonded and holds shares is used. On error the returned VoterWeight holds
// whatever was resolved before the failure.
func (r *Resolver) Resolve(ctx context.Context, owner solana.PublicKey) (*VoterWeight, error) {
	result := &VoterWeight{Owner: owner}

	raw, stakes, skipped, err := r.FindStakeAccounts(ctx, owner)
	if err != nil {
		return result, err
	}
	result.Candidates = len(raw) + skipped
	result.Skipped = skipped

	for i, stake := range stakes {
		if _, bonded := stake.BondedPool(); bonded && stake.Shares > 0 {
			result.StakeAccount = raw[i].Address
			result.Stake = stake
			break
		}
	}
	if result.Stake == nil {
		return result, fmt.Errorf("%w: owner %s", ErrNoStakeAccount, owner)
	}
	result.Pool = result.Stake.Pool
	klog.V(2).Infof("stake account %s: %d shares in pool %s", result.StakeAccount, result.Stake.Shares, result.Pool)

	poolData, err := ledger.FetchAccount(ctx, r.Reader, result.Pool)
	if err != nil {
		return result, fmt.Errorf("failed to fetch stake pool: %w", err)
	}
	if result.StakePool, err = DecodeStakePool(poolData); err != nil {
		return result, err
	}

	if result.PoolTokenAccount, err = StakePoolTokenAccountAddress(r.StakeProgramID, result.Pool); err != nil {
		return result, fmt.Errorf("failed to derive stake pool token account: %w", err)
	}
	if result.PoolTokenAccount != result.StakePool.StakingTokenAccount {
		klog.Warningf("stake pool %s records token account %s, derived %s", result.Pool, result.StakePool.StakingTokenAccount, result.PoolTokenAccount)
	}

	tokenData, err := ledger.FetchAccount(ctx, r.Reader, result.PoolTokenAccount)
	if err != nil {
		return result, fmt.Errorf("failed to fetch stake pool token account: %w", err)
	}
	tokenAccount, err := DecodeTokenAccount(tokenData)
	if err != nil {
		return result, err
	}
	result.PoolTokenAmount = tokenAccount.Amount

	if weight, ok := ComputeWeight(result.PoolTokenAmount, result.Stake.Shares, result.StakePool.TotalShares); ok {
		result.Weight = &weight
	} else {
		klog.Warningf("voter weight of %s is undefined: %d shares of %d", owner, result.Stake.Shares, result.StakePool.TotalShares)
	}
	return result, nil
}

// IsNotFound reports whether err means the owner has nothing to vote with.
func IsNotFound(err error) bool {
	return errors.Is(err, governance.ErrAccountNotFound)
}
