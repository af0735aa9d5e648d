package realms

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"

	"realms-cli/governance"
	"realms-cli/ledger/ledgertest"
	"realms-cli/staking"
)

func key(b byte) solana.PublicKey {
	var out solana.PublicKey
	for i := range out {
		out[i] = b
	}
	return out
}

// fakeRPC serves accounts from an in-memory ledger and records sent transactions.
type fakeRPC struct {
	*ledgertest.Ledger

	mu           sync.Mutex
	sent         []*solana.Transaction
	sendErr      error
	fees         []rpc.PriorizationFeeResult
	feeCalls     int
	signatures   []*rpc.TransactionSignature
	transactions map[solana.Signature]*rpc.GetTransactionResult
}

func newFakeRPC() *fakeRPC {
	return &fakeRPC{
		Ledger:       ledgertest.New(),
		transactions: map[solana.Signature]*rpc.GetTransactionResult{},
	}
}

func (f *fakeRPC) GetLatestBlockhash(context.Context, rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	return &rpc.GetLatestBlockhashResult{
		Value: &rpc.LatestBlockhashResult{Blockhash: solana.Hash(key(0xbb)), LastValidBlockHeight: 100},
	}, nil
}

func (f *fakeRPC) SendTransactionWithOpts(_ context.Context, tx *solana.Transaction, _ rpc.TransactionOpts) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return solana.Signature{}, f.sendErr
	}
	f.sent = append(f.sent, tx)
	return tx.Signatures[0], nil
}

func (f *fakeRPC) GetBalance(context.Context, solana.PublicKey, rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
	return &rpc.GetBalanceResult{Value: 42}, nil
}

func (f *fakeRPC) GetSignaturesForAddressWithOpts(context.Context, solana.PublicKey, *rpc.GetSignaturesForAddressOpts) ([]*rpc.TransactionSignature, error) {
	return f.signatures, nil
}

func (f *fakeRPC) GetTransaction(_ context.Context, sig solana.Signature, _ *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.transactions[sig]
	if !ok {
		return nil, rpc.ErrNotFound
	}
	return tx, nil
}

func (f *fakeRPC) RPCCallForInto(_ context.Context, out interface{}, method string, _ []interface{}) error {
	if method != "getRecentPrioritizationFees" {
		return fmt.Errorf("unexpected method %s", method)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feeCalls++
	*(out.(*[]rpc.PriorizationFeeResult)) = f.fees
	return nil
}

type recordingNotifier struct {
	progress []string
	success  []string
}

func (n *recordingNotifier) Progress(label string) { n.progress = append(n.progress, label) }

func (n *recordingNotifier) Success(label string, _ solana.Signature) {
	n.success = append(n.success, label)
}

func noFee() *uint64 {
	var zero uint64
	return &zero
}

func newTestClient(t *testing.T, conn *fakeRPC, cfg Config) (*Client, solana.PrivateKey, *recordingNotifier) {
	t.Helper()
	signer, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	client := NewClientWithRPC(conn, cfg, signer)
	notifier := &recordingNotifier{}
	client.Notifier = notifier
	return client, signer, notifier
}

// accountBuilder writes borsh account data for fixtures.
type accountBuilder struct {
	buf bytes.Buffer
	enc *bin.Encoder
}

func newAccount(t governance.AccountType) *accountBuilder {
	b := &accountBuilder{}
	b.enc = bin.NewBorshEncoder(&b.buf)
	return b.u8(uint8(t))
}

func (b *accountBuilder) u8(v uint8) *accountBuilder {
	_ = b.enc.WriteUint8(v)
	return b
}

func (b *accountBuilder) boolean(v bool) *accountBuilder {
	_ = b.enc.WriteBool(v)
	return b
}

func (b *accountBuilder) u16(v uint16) *accountBuilder {
	_ = b.enc.WriteUint16(v, bin.LE)
	return b
}

func (b *accountBuilder) u32(v uint32) *accountBuilder {
	_ = b.enc.WriteUint32(v, bin.LE)
	return b
}

func (b *accountBuilder) u64(v uint64) *accountBuilder {
	_ = b.enc.WriteUint64(v, bin.LE)
	return b
}

func (b *accountBuilder) i64(v int64) *accountBuilder {
	_ = b.enc.WriteInt64(v, bin.LE)
	return b
}

func (b *accountBuilder) pubkey(pk solana.PublicKey) *accountBuilder {
	_ = b.enc.WriteBytes(pk[:], false)
	return b
}

func (b *accountBuilder) zeros(n int) *accountBuilder {
	_ = b.enc.WriteBytes(make([]byte, n), false)
	return b
}

func (b *accountBuilder) str(s string) *accountBuilder {
	return b.u32(uint32(len(s))).raw([]byte(s))
}

func (b *accountBuilder) raw(data []byte) *accountBuilder {
	_ = b.enc.WriteBytes(data, false)
	return b
}

func (b *accountBuilder) bytes() []byte {
	return b.buf.Bytes()
}

func realmData(name string, communityMint solana.PublicKey, addin bool) []byte {
	return newAccount(governance.AccountTypeRealm).
		pubkey(communityMint).
		boolean(addin).zeros(7).
		u64(1).
		u8(uint8(governance.MintMaxVoteWeightSourceSupplyFraction)).u64(governance.SupplyFractionBase).
		u8(0).
		zeros(8).
		u8(0).
		str(name).
		bytes()
}

var testConfig = governance.GovernanceConfig{
	VoteThresholdPercentage:            governance.VoteThresholdPercentage{Type: governance.VoteThresholdYesVote, Value: 60},
	MinCommunityTokensToCreateProposal: 1,
	MaxVotingTime:                      259_200,
	MinCouncilTokensToCreateProposal:   1,
}

func governanceData(kind governance.GovernanceKind, realm, governed solana.PublicKey, proposals uint32) []byte {
	b := newAccount(kind.AccountType()).pubkey(realm).pubkey(governed).u32(proposals)
	_ = testConfig.MarshalWithEncoder(b.enc)
	return b.bytes()
}

func proposalData(gov, mint, owner solana.PublicKey, state governance.ProposalState) []byte {
	return newAccount(governance.AccountTypeProposalV2).
		pubkey(gov).pubkey(mint).u8(uint8(state)).pubkey(owner).
		u8(1).u8(1).
		u8(uint8(governance.VoteTypeSingleChoice)).
		u32(1).str("Approve").u64(0).u8(0).u16(0).u16(0).u16(0).
		u8(1).u64(0).
		i64(1_700_000_000).
		u8(0).
		u8(1).i64(1_700_000_100).
		u8(0).u8(0).u8(0).u8(0).
		u8(0).
		u8(0).
		u8(0).
		str("Upgrade bridge").str("https://example.org").
		bytes()
}

func tokenOwnerRecordData(realm, mint, owner solana.PublicKey, amount uint64) []byte {
	return newAccount(governance.AccountTypeTokenOwnerRecord).
		pubkey(realm).pubkey(mint).pubkey(owner).
		u64(amount).u32(0).u32(0).u8(0).zeros(7).
		u8(0).
		bytes()
}

// putStake stores a bonded stake account of owner with shares of a pool that holds
// amount tokens for totalShares, and returns the stake account address.
func putStake(t *testing.T, conn *fakeRPC, owner, pool, stakingMint solana.PublicKey, shares, totalShares, amount uint64) solana.PublicKey {
	t.Helper()
	tokenAccount, err := staking.StakePoolTokenAccountAddress(staking.DefaultStakeProgramID, pool)
	require.NoError(t, err)

	stake := make([]byte, staking.StakeAccountSize)
	copy(stake[0:], owner[:])
	binary.LittleEndian.PutUint64(stake[32:], shares)
	stake[40] = uint8(staking.StakeStateBonded)
	copy(stake[41:], pool[:])
	address := key(0x5a)
	conn.Put(address, staking.DefaultStakeProgramID, stake)

	poolData := make([]byte, staking.StakePoolSize)
	copy(poolData[32:], stakingMint[:])
	copy(poolData[64:], tokenAccount[:])
	binary.LittleEndian.PutUint64(poolData[96:], totalShares)
	conn.Put(pool, staking.DefaultStakeProgramID, poolData)

	tokenData := make([]byte, staking.TokenAccountSize)
	copy(tokenData[0:], stakingMint[:])
	copy(tokenData[32:], pool[:])
	binary.LittleEndian.PutUint64(tokenData[64:], amount)
	tokenData[108] = 1
	conn.Put(tokenAccount, solana.TokenProgramID, tokenData)
	return address
}

func mintData(decimals uint8) []byte {
	data := make([]byte, 82)
	data[44] = decimals
	data[45] = 1
	return data
}
