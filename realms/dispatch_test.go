package realms

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realms-cli/governance"
)

// programIDs lists the program of every top-level instruction of tx.
func programIDs(t *testing.T, tx *solana.Transaction) []solana.PublicKey {
	t.Helper()
	var out []solana.PublicKey
	for _, ix := range tx.Message.Instructions {
		id, err := tx.Message.Program(ix.ProgramIDIndex)
		require.NoError(t, err)
		out = append(out, id)
	}
	return out
}

func transfer(to solana.PublicKey, from solana.PublicKey) solana.Instruction {
	return system.NewTransferInstruction(1, from, to).Build()
}

func TestSendTransaction_ReadOnly(t *testing.T) {
	client := NewClientWithRPC(newFakeRPC(), Config{}, nil)

	_, err := client.SendTransaction(context.Background(), nil, nil, Labels{})
	assert.ErrorIs(t, err, ErrReadOnly)
	assert.True(t, client.ReadOnly())
}

func TestSendTransaction_DryRun(t *testing.T) {
	conn := newFakeRPC()
	client, signer, notifier := newTestClient(t, conn, Config{DryRun: true, PriorityFee: noFee()})

	result, err := client.SendTransaction(context.Background(),
		[]solana.Instruction{transfer(key(9), signer.PublicKey())}, nil, Labels{Progress: "Sending"})
	require.NoError(t, err)

	assert.False(t, result.Submitted)
	assert.Positive(t, result.Size)
	assert.Empty(t, conn.sent)
	assert.Empty(t, notifier.progress)
	assert.Equal(t, signer.PublicKey(), result.Transaction.Message.AccountKeys[0])
	assert.Equal(t, solana.Hash(key(0xbb)), result.Transaction.Message.RecentBlockhash)
	assert.NoError(t, result.Transaction.VerifySignatures())
	assert.Equal(t, []solana.PublicKey{solana.SystemProgramID}, programIDs(t, result.Transaction))
}

func TestSendTransaction_FixedPriorityFee(t *testing.T) {
	fee := uint64(5_000)
	client, signer, _ := newTestClient(t, newFakeRPC(), Config{DryRun: true, PriorityFee: &fee})

	result, err := client.SendTransaction(context.Background(),
		[]solana.Instruction{transfer(key(9), signer.PublicKey())}, nil, Labels{})
	require.NoError(t, err)

	assert.Equal(t, []solana.PublicKey{
		solana.ComputeBudget,
		solana.ComputeBudget,
		solana.SystemProgramID,
	}, programIDs(t, result.Transaction))
}

func TestSendTransaction_EstimatedPriorityFee(t *testing.T) {
	for _, tc := range []struct {
		name     string
		fees     []uint64
		programs int
	}{
		{name: "recent fees", fees: []uint64{0, 300, 20}, programs: 3},
		{name: "idle cluster", fees: []uint64{0, 0}, programs: 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			conn := newFakeRPC()
			for i, fee := range tc.fees {
				conn.fees = append(conn.fees, rpcFee(uint64(1000+i), fee))
			}
			client, signer, _ := newTestClient(t, conn, Config{DryRun: true})

			result, err := client.SendTransaction(context.Background(),
				[]solana.Instruction{transfer(key(9), signer.PublicKey())}, nil, Labels{})
			require.NoError(t, err)

			assert.Equal(t, 1, conn.feeCalls)
			assert.Len(t, programIDs(t, result.Transaction), tc.programs)
		})
	}
}

func TestSendTransaction_Submit(t *testing.T) {
	conn := newFakeRPC()
	client, signer, notifier := newTestClient(t, conn, Config{PriorityFee: noFee()})

	result, err := client.SendTransaction(context.Background(),
		[]solana.Instruction{transfer(key(9), signer.PublicKey())}, nil,
		Labels{Progress: "Voting on proposal", Success: "Proposal voted on"})
	require.NoError(t, err)

	assert.True(t, result.Submitted)
	require.Len(t, conn.sent, 1)
	assert.Equal(t, conn.sent[0].Signatures[0], result.Signature)
	assert.Equal(t, []string{"Voting on proposal"}, notifier.progress)
	assert.Equal(t, []string{"Proposal voted on"}, notifier.success)
}

func TestSendTransaction_Rejected(t *testing.T) {
	conn := newFakeRPC()
	conn.sendErr = errors.New("custom program error: 0x1f5")
	client, signer, notifier := newTestClient(t, conn, Config{PriorityFee: noFee()})

	result, err := client.SendTransaction(context.Background(),
		[]solana.Instruction{transfer(key(9), signer.PublicKey())}, nil, Labels{Progress: "Creating proposal"})
	require.Error(t, err)

	assert.ErrorIs(t, err, governance.ErrTransactionRejected)
	assert.Contains(t, err.Error(), "0x1f5")
	assert.False(t, result.Submitted)
	assert.Equal(t, []string{"Creating proposal"}, notifier.progress)
	assert.Empty(t, notifier.success)
}

func TestSendTransaction_TooLarge(t *testing.T) {
	conn := newFakeRPC()
	client, signer, _ := newTestClient(t, conn, Config{PriorityFee: noFee()})

	var instructions []solana.Instruction
	for i := 0; i < 40; i++ {
		instructions = append(instructions, transfer(key(byte(10+i)), signer.PublicKey()))
	}

	result, err := client.SendTransaction(context.Background(), instructions, nil, Labels{})
	assert.ErrorIs(t, err, ErrTransactionTooLarge)
	assert.Greater(t, result.Size, MaxTransactionSize)
	assert.Empty(t, conn.sent)
}

func TestSendTransaction_CoSigners(t *testing.T) {
	client, signer, _ := newTestClient(t, newFakeRPC(), Config{DryRun: true, PriorityFee: noFee()})
	other := solana.NewWallet().PrivateKey

	result, err := client.SendTransaction(context.Background(),
		[]solana.Instruction{transfer(signer.PublicKey(), other.PublicKey())},
		[]solana.PrivateKey{other}, Labels{})
	require.NoError(t, err)

	assert.Len(t, result.Transaction.Signatures, 2)
	assert.NoError(t, result.Transaction.VerifySignatures())
}

func TestSendSol(t *testing.T) {
	conn := newFakeRPC()
	client, _, notifier := newTestClient(t, conn, Config{PriorityFee: noFee()})

	result, err := client.SendSol(context.Background(), key(7), 1_000_000)
	require.NoError(t, err)

	assert.True(t, result.Submitted)
	assert.Equal(t, []string{"Transfer confirmed"}, notifier.success)
	assert.Contains(t, result.Transaction.Message.AccountKeys, key(7))

	balance, err := client.GetBalance(context.Background(), key(7))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), balance)
}
