package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"realms-cli/governance"
)

// Reader is the read side of the RPC client. *rpc.Client satisfies it.
type Reader interface {
	GetProgramAccountsWithOpts(ctx context.Context, publicKey solana.PublicKey, opts *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error)
	GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error)
}

// RawAccount is an account address with its undecoded data.
type RawAccount struct {
	Address  solana.PublicKey
	Owner    solana.PublicKey
	Lamports uint64
	Data     []byte
}

func DataSizeFilter(size uint64) rpc.RPCFilter {
	return rpc.RPCFilter{DataSize: size}
}

func MemcmpFilter(offset uint64, data []byte) rpc.RPCFilter {
	return rpc.RPCFilter{
		Memcmp: &rpc.RPCFilterMemcmp{
			Offset: offset,
			Bytes:  data,
		},
	}
}

// PubkeyFilter matches accounts holding pk at offset.
func PubkeyFilter(offset uint64, pk solana.PublicKey) rpc.RPCFilter {
	return MemcmpFilter(offset, pk.Bytes())
}

// FetchAccount returns the data of a single account. A missing account is reported
// as governance.ErrAccountNotFound.
func FetchAccount(ctx context.Context, reader Reader, address solana.PublicKey) ([]byte, error) {
	account, err := FetchRawAccount(ctx, reader, address)
	if err != nil {
		return nil, err
	}
	return account.Data, nil
}

func FetchRawAccount(ctx context.Context, reader Reader, address solana.PublicKey) (*RawAccount, error) {
	resp, err := reader.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
		Commitment: rpc.CommitmentConfirmed,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", governance.ErrAccountNotFound, address)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", address, err)
	}
	if resp == nil || resp.Value == nil {
		return nil, fmt.Errorf("%w: %s", governance.ErrAccountNotFound, address)
	}
	return &RawAccount{
		Address:  address,
		Owner:    resp.Value.Owner,
		Lamports: resp.Value.Lamports,
		Data:     resp.Value.Data.GetBinary(),
	}, nil
}

// FetchProgramAccounts returns every account owned by program that matches all filters,
// in the order the node returned them.
func FetchProgramAccounts(ctx context.Context, reader Reader, program solana.PublicKey, filters ...rpc.RPCFilter) ([]RawAccount, error) {
	resp, err := reader.GetProgramAccountsWithOpts(ctx, program, &rpc.GetProgramAccountsOpts{
		Commitment: rpc.CommitmentConfirmed,
		Filters:    filters,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get program accounts of %s: %w", program, err)
	}

	accounts := make([]RawAccount, 0, len(resp))
	for _, keyed := range resp {
		if keyed == nil || keyed.Account == nil {
			continue
		}
		accounts = append(accounts, RawAccount{
			Address:  keyed.Pubkey,
			Owner:    keyed.Account.Owner,
			Lamports: keyed.Account.Lamports,
			Data:     keyed.Account.Data.GetBinary(),
		})
	}
	return accounts, nil
}
