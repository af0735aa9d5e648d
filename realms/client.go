package realms

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/go-resty/resty/v2"

	"realms-cli/governance"
	"realms-cli/ledger"
	"realms-cli/staking"
)

// ErrReadOnly is returned when a write action is attempted without a wallet.
var ErrReadOnly = errors.New("client has no wallet")

// RPC is the subset of the JSON-RPC client the console uses. *rpc.Client satisfies it.
type RPC interface {
	ledger.Reader
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransactionWithOpts(ctx context.Context, transaction *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetBalance(ctx context.Context, publicKey solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	GetSignaturesForAddressWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetSignaturesForAddressOpts) ([]*rpc.TransactionSignature, error)
	GetTransaction(ctx context.Context, txSig solana.Signature, opts *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error)
	RPCCallForInto(ctx context.Context, out interface{}, method string, params []interface{}) error
}

// Config selects the cluster, the programs and how transactions are sent.
type Config struct {
	RPCEndpoint string
	// WSEndpoint enables confirmation over websocket and the account watcher.
	WSEndpoint string
	// HeliusURL, when set, is queried for priority fee estimates.
	HeliusURL string

	Program           governance.Program
	StakeProgramID    solana.PublicKey
	RegistryProgramID solana.PublicKey

	// PriorityFee in micro-lamports per compute unit. Nil estimates a fee, zero disables it.
	PriorityFee      *uint64
	ComputeUnitLimit uint32
	DryRun           bool
}

func (cfg Config) withDefaults() Config {
	if cfg.Program.ID.IsZero() {
		cfg.Program.ID = governance.DefaultProgramID
	}
	if cfg.Program.Version == 0 {
		cfg.Program.Version = governance.DefaultProgramVersion
	}
	if cfg.StakeProgramID.IsZero() {
		cfg.StakeProgramID = staking.DefaultStakeProgramID
	}
	if cfg.RegistryProgramID.IsZero() {
		cfg.RegistryProgramID = staking.DefaultRegistryProgramID
	}
	if cfg.ComputeUnitLimit == 0 {
		cfg.ComputeUnitLimit = DefaultComputeUnitLimit
	}
	return cfg
}

// Client is a client for a governance deployment and its staking addin.
type Client struct {
	RpcClient RPC
	Signer    solana.PrivateKey
	Config    Config
	Notifier  Notifier
	Resolver  *staking.Resolver

	http *resty.Client
}

// NewClient creates a new Client that signs and pays with signer.
func NewClient(cfg Config, signer solana.PrivateKey) (*Client, error) {
	if cfg.RPCEndpoint == "" {
		return nil, fmt.Errorf("rpc endpoint is required")
	}
	return NewClientWithRPC(rpc.New(cfg.RPCEndpoint), cfg, signer), nil
}

// NewReadOnlyClient creates a client for queries only. Write actions fail with ErrReadOnly.
func NewReadOnlyClient(cfg Config) (*Client, error) {
	return NewClient(cfg, nil)
}

// NewClientWithRPC wraps an existing RPC connection.
func NewClientWithRPC(conn RPC, cfg Config, signer solana.PrivateKey) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		RpcClient: conn,
		Signer:    signer,
		Config:    cfg,
		Notifier:  LogNotifier{},
		Resolver:  staking.NewResolver(conn, cfg.StakeProgramID),
		http:      resty.New(),
	}
}

func (c *Client) Program() governance.Program {
	return c.Config.Program
}

func (c *Client) ReadOnly() bool {
	return len(c.Signer) == 0
}

// Wallet returns the public key of the signing wallet.
func (c *Client) Wallet() (solana.PublicKey, error) {
	if c.ReadOnly() {
		return solana.PublicKey{}, ErrReadOnly
	}
	return c.Signer.PublicKey(), nil
}

// GetBalance retrieves the SOL balance for a given public key.
func (c *Client) GetBalance(ctx context.Context, publicKey solana.PublicKey) (uint64, error) {
	balance, err := c.RpcClient.GetBalance(ctx, publicKey, rpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance.Value, nil
}

// SendSol transfers lamports from the wallet, used to fund a fresh profile.
func (c *Client) SendSol(ctx context.Context, recipient solana.PublicKey, amountLamports uint64) (*Result, error) {
	wallet, err := c.Wallet()
	if err != nil {
		return nil, err
	}
	instruction := system.NewTransferInstruction(amountLamports, wallet, recipient).Build()
	return c.SendTransaction(ctx, []solana.Instruction{instruction}, nil, Labels{
		Progress: fmt.Sprintf("Sending %d lamports to %s", amountLamports, recipient),
		Success:  "Transfer confirmed",
	})
}
