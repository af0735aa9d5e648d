package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realms-cli/governance"
	"realms-cli/ledger"
	"realms-cli/ledger/ledgertest"
)

func pk(b byte) solana.PublicKey {
	var out solana.PublicKey
	out[0] = b
	out[31] = b
	return out
}

func TestFetchAccount(t *testing.T) {
	fake := ledgertest.New()
	fake.Put(pk(1), pk(9), []byte{1, 2, 3})

	data, err := ledger.FetchAccount(context.Background(), fake, pk(1))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	_, err = ledger.FetchAccount(context.Background(), fake, pk(2))
	assert.ErrorIs(t, err, governance.ErrAccountNotFound)

	fake.Err = errors.New("connection refused")
	_, err = ledger.FetchAccount(context.Background(), fake, pk(1))
	require.Error(t, err)
	assert.NotErrorIs(t, err, governance.ErrAccountNotFound)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestFetchProgramAccounts_Filters(t *testing.T) {
	program := pk(9)
	fake := ledgertest.New()

	withOwner := func(owner solana.PublicKey, size int) []byte {
		data := make([]byte, size)
		copy(data[4:], owner[:])
		return data
	}
	fake.Put(pk(1), program, withOwner(pk(5), 64))
	fake.Put(pk(2), program, withOwner(pk(6), 64))
	fake.Put(pk(3), program, withOwner(pk(5), 40))
	fake.Put(pk(4), pk(8), withOwner(pk(5), 64))
	fake.Put(pk(7), program, withOwner(pk(5), 64))

	accounts, err := ledger.FetchProgramAccounts(context.Background(), fake, program,
		ledger.DataSizeFilter(64),
		ledger.PubkeyFilter(4, pk(5)),
	)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, pk(1), accounts[0].Address)
	assert.Equal(t, pk(7), accounts[1].Address)
	assert.Equal(t, program, accounts[0].Owner)

	require.Len(t, fake.Queries, 1)
	assert.Equal(t, uint64(64), fake.Queries[0][0].DataSize)
	assert.Equal(t, uint64(4), fake.Queries[0][1].Memcmp.Offset)

	accounts, err = ledger.FetchProgramAccounts(context.Background(), fake, program, ledger.MemcmpFilter(0, []byte{0xff}))
	require.NoError(t, err)
	assert.Empty(t, accounts)
}
