package realms

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"k8s.io/klog/v2"

	"realms-cli/governance"
)

// DefaultHistoryLimit is the number of recent signatures inspected by History.
const DefaultHistoryLimit = 100

const historyBatchSize = 10

// HistoryEvent is one transaction of the owner that touched the governance program.
type HistoryEvent struct {
	Signature    solana.Signature `json:"signature"`
	Slot         uint64           `json:"slot"`
	Timestamp    time.Time        `json:"timestamp"`
	Instructions []string         `json:"instructions"`
	Failed       bool             `json:"failed"`
}

// History fetches the owner's recent transactions and keeps those that called the
// governance program, newest first, with each governance instruction named.
func (c *Client) History(ctx context.Context, owner solana.PublicKey, limit int) ([]HistoryEvent, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	signatures, err := c.RpcClient.GetSignaturesForAddressWithOpts(
		ctx,
		owner,
		&rpc.GetSignaturesForAddressOpts{
			Limit:      &limit,
			Commitment: rpc.CommitmentConfirmed,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transaction signatures: %w", err)
	}

	events := make([]HistoryEvent, 0)
	if len(signatures) == 0 {
		return events, nil
	}

	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < len(signatures); i += historyBatchSize {
		end := min(i+historyBatchSize, len(signatures))

		for j := i; j < end; j++ {
			wg.Add(1)
			go func(sigInfo *rpc.TransactionSignature) {
				defer wg.Done()

				version := uint64(0)
				tx, err := c.RpcClient.GetTransaction(
					ctx,
					sigInfo.Signature,
					&rpc.GetTransactionOpts{
						Encoding:                       solana.EncodingBase64,
						Commitment:                     rpc.CommitmentConfirmed,
						MaxSupportedTransactionVersion: &version,
					},
				)
				if err != nil {
					klog.Warningf("failed to fetch transaction %s: %v", sigInfo.Signature, err)
					return
				}

				event, ok := c.governanceEvent(sigInfo, tx)
				if !ok {
					return
				}
				mu.Lock()
				events = append(events, event)
				mu.Unlock()
			}(signatures[j])
		}

		// Wait for current batch to complete before starting next batch
		wg.Wait()
	}

	sort.Slice(events, func(a, b int) bool {
		return events[a].Slot > events[b].Slot
	})
	return events, nil
}

func (c *Client) governanceEvent(sigInfo *rpc.TransactionSignature, tx *rpc.GetTransactionResult) (HistoryEvent, bool) {
	if tx == nil || tx.Transaction == nil {
		return HistoryEvent{}, false
	}
	parsed, err := tx.Transaction.GetTransaction()
	if err != nil {
		klog.V(2).Infof("failed to decode transaction %s: %v", sigInfo.Signature, err)
		return HistoryEvent{}, false
	}

	names := governanceInstructionNames(parsed, c.Config.Program.ID)
	if len(names) == 0 {
		return HistoryEvent{}, false
	}

	event := HistoryEvent{
		Signature:    sigInfo.Signature,
		Slot:         tx.Slot,
		Instructions: names,
		Failed:       sigInfo.Err != nil || (tx.Meta != nil && tx.Meta.Err != nil),
	}
	if tx.BlockTime != nil {
		event.Timestamp = tx.BlockTime.Time()
	}
	return event, true
}

// governanceInstructionNames names the top-level instructions addressed to programID.
func governanceInstructionNames(tx *solana.Transaction, programID solana.PublicKey) []string {
	var names []string
	for _, instr := range tx.Message.Instructions {
		programIdx := instr.ProgramIDIndex
		if int(programIdx) >= len(tx.Message.AccountKeys) {
			continue
		}
		if tx.Message.AccountKeys[programIdx] != programID {
			continue
		}
		names = append(names, governance.InstructionName(instr.Data))
	}
	return names
}
