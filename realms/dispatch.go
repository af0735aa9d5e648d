package realms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	confirm "github.com/gagliardetto/solana-go/rpc/sendAndConfirmTransaction"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"k8s.io/klog/v2"

	"realms-cli/governance"
)

// MaxTransactionSize is the largest serialized transaction a cluster accepts.
const MaxTransactionSize = 1232

const confirmationTimeout = 90 * time.Second

var ErrTransactionTooLarge = errors.New("transaction too large")

// Labels are the messages reported while a transaction is in flight.
type Labels struct {
	Progress string
	Success  string
}

// Notifier receives the progress of SendTransaction.
type Notifier interface {
	Progress(label string)
	Success(label string, signature solana.Signature)
}

// LogNotifier reports progress through klog.
type LogNotifier struct{}

func (LogNotifier) Progress(label string) {
	if label != "" {
		klog.Info(label)
	}
}

func (LogNotifier) Success(label string, signature solana.Signature) {
	klog.Infof("%s: %s", label, signature)
}

// Result describes a built transaction. Submitted is false for dry runs.
type Result struct {
	Signature   solana.Signature
	Transaction *solana.Transaction
	Submitted   bool
	Size        int
}

// SendTransaction builds one transaction from instructions, paid and signed by the
// wallet and co-signed by signers, and submits it. With a websocket endpoint the
// call waits for confirmation. In dry-run mode the signed transaction is returned
// without being sent.
func (c *Client) SendTransaction(ctx context.Context, instructions []solana.Instruction, signers []solana.PrivateKey, labels Labels) (*Result, error) {
	wallet, err := c.Wallet()
	if err != nil {
		return nil, err
	}

	all := append(c.computeBudget(ctx, instructions), instructions...)

	latestBlockhash, err := c.RpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		all,
		latestBlockhash.Value.Blockhash,
		solana.TransactionPayer(wallet),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	keys := append([]solana.PrivateKey{c.Signer}, signers...)
	_, err = tx.Sign(
		func(key solana.PublicKey) *solana.PrivateKey {
			for i := range keys {
				if keys[i].PublicKey().Equals(key) {
					return &keys[i]
				}
			}
			return nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize transaction: %w", err)
	}
	result := &Result{Transaction: tx, Size: len(raw), Signature: tx.Signatures[0]}
	if len(raw) > MaxTransactionSize {
		return result, fmt.Errorf("%w: %d bytes, limit %d", ErrTransactionTooLarge, len(raw), MaxTransactionSize)
	}

	if c.Config.DryRun {
		klog.V(2).Infof("dry run: %d instructions, %d bytes", len(all), len(raw))
		return result, nil
	}

	c.Notifier.Progress(labels.Progress)
	sig, err := c.submit(ctx, tx)
	if err != nil {
		return result, fmt.Errorf("%w: %w", governance.ErrTransactionRejected, err)
	}
	result.Signature = sig
	result.Submitted = true
	c.Notifier.Success(labels.Success, sig)
	return result, nil
}

func (c *Client) submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	opts := rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentFinalized,
	}
	if c.Config.WSEndpoint == "" {
		return c.RpcClient.SendTransactionWithOpts(ctx, tx, opts)
	}

	wsClient, err := ws.Connect(ctx, c.Config.WSEndpoint)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to connect to websocket: %w", err)
	}
	defer wsClient.Close()

	sig, err := c.RpcClient.SendTransactionWithOpts(ctx, tx, opts)
	if err != nil {
		return sig, err
	}
	timeout := confirmationTimeout
	if _, err := confirm.WaitForConfirmation(ctx, wsClient, sig, &timeout); err != nil {
		return sig, fmt.Errorf("transaction %s not confirmed: %w", sig, err)
	}
	return sig, nil
}
