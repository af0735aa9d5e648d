// Package ledgertest provides an in-memory ledger.Reader for tests.
package ledgertest

import (
	"bytes"
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

type account struct {
	address solana.PublicKey
	owner   solana.PublicKey
	data    []byte
}

// Ledger holds accounts in insertion order and answers queries by applying the
// dataSize and memcmp filters the way a node does.
type Ledger struct {
	mu       sync.Mutex
	accounts []account

	// Err, when set, is returned by every call.
	Err error
	// Queries records the filters of every getProgramAccounts call.
	Queries [][]rpc.RPCFilter
}

func New() *Ledger {
	return &Ledger{}
}

// Put stores or replaces the account at address.
func (l *Ledger) Put(address, owner solana.PublicKey, data []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.accounts {
		if l.accounts[i].address == address {
			l.accounts[i] = account{address: address, owner: owner, data: data}
			return
		}
	}
	l.accounts = append(l.accounts, account{address: address, owner: owner, data: data})
}

func (l *Ledger) GetProgramAccountsWithOpts(_ context.Context, program solana.PublicKey, opts *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return nil, l.Err
	}

	var filters []rpc.RPCFilter
	if opts != nil {
		filters = opts.Filters
	}
	l.Queries = append(l.Queries, filters)

	out := rpc.GetProgramAccountsResult{}
	for _, a := range l.accounts {
		if a.owner != program || !matches(a.data, filters) {
			continue
		}
		out = append(out, &rpc.KeyedAccount{
			Pubkey: a.address,
			Account: &rpc.Account{
				Lamports: 1,
				Owner:    a.owner,
				Data:     rpc.DataBytesOrJSONFromBytes(a.data),
			},
		})
	}
	return out, nil
}

func (l *Ledger) GetAccountInfoWithOpts(_ context.Context, address solana.PublicKey, _ *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return nil, l.Err
	}
	for _, a := range l.accounts {
		if a.address == address {
			return &rpc.GetAccountInfoResult{
				Value: &rpc.Account{
					Lamports: 1,
					Owner:    a.owner,
					Data:     rpc.DataBytesOrJSONFromBytes(a.data),
				},
			}, nil
		}
	}
	return nil, rpc.ErrNotFound
}

func matches(data []byte, filters []rpc.RPCFilter) bool {
	for _, f := range filters {
		if f.DataSize != 0 && uint64(len(data)) != f.DataSize {
			return false
		}
		if f.Memcmp != nil {
			end := f.Memcmp.Offset + uint64(len(f.Memcmp.Bytes))
			if end > uint64(len(data)) || !bytes.Equal(data[f.Memcmp.Offset:end], f.Memcmp.Bytes) {
				return false
			}
		}
	}
	return true
}
