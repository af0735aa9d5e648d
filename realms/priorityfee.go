package realms

import (
	"context"
	"fmt"
	"slices"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/rpc"
	"k8s.io/klog/v2"
)

// DefaultComputeUnitLimit is requested whenever a priority fee is attached.
const DefaultComputeUnitLimit uint32 = 200_000

// priorityFeeLookbackSlots matches the node's prioritization fee cache.
const priorityFeeLookbackSlots = 150

type HeliusPriorityLevel string

const (
	HeliusPriorityLevelLow    HeliusPriorityLevel = "Low"
	HeliusPriorityLevelMedium HeliusPriorityLevel = "Medium"
	HeliusPriorityLevelHigh   HeliusPriorityLevel = "High"
)

type heliusPriorityFeeRequest struct {
	Jsonrpc string                    `json:"jsonrpc"`
	Id      string                    `json:"id"`
	Method  string                    `json:"method"`
	Params  []heliusPriorityFeeParams `json:"params"`
}

type heliusPriorityFeeParams struct {
	AccountKeys []string                 `json:"accountKeys"`
	Options     heliusPriorityFeeOptions `json:"options"`
}

type heliusPriorityFeeOptions struct {
	PriorityLevel HeliusPriorityLevel `json:"priorityLevel"`
}

type heliusPriorityFeeResponse struct {
	Jsonrpc string `json:"jsonrpc"`
	Id      string `json:"id"`
	Result  struct {
		PriorityFeeEstimate float64 `json:"priorityFeeEstimate"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// EstimatePriorityFee returns a fee in micro-lamports per compute unit for a
// transaction writing to accounts. Helius is asked when configured; otherwise the
// node's recent prioritization fees are used.
func (c *Client) EstimatePriorityFee(ctx context.Context, accounts []solana.PublicKey) (uint64, error) {
	if c.Config.HeliusURL != "" {
		return c.heliusPriorityFee(ctx, accounts)
	}
	return c.recentPriorityFee(ctx, accounts)
}

func (c *Client) heliusPriorityFee(ctx context.Context, accounts []solana.PublicKey) (uint64, error) {
	keys := make([]string, 0, len(accounts))
	for _, account := range accounts {
		keys = append(keys, account.String())
	}
	request := heliusPriorityFeeRequest{
		Jsonrpc: "2.0",
		Id:      "realms-cli",
		Method:  "getPriorityFeeEstimate",
		Params: []heliusPriorityFeeParams{{
			AccountKeys: keys,
			Options:     heliusPriorityFeeOptions{PriorityLevel: HeliusPriorityLevelMedium},
		}},
	}

	var response heliusPriorityFeeResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(request).
		SetResult(&response).
		Post(c.Config.HeliusURL)
	if err != nil {
		return 0, fmt.Errorf("failed to call priority fee API: %w", err)
	}
	if !resp.IsSuccess() {
		return 0, fmt.Errorf("priority fee API returned non-200 status: %s", resp.Status())
	}
	if response.Error != nil {
		return 0, fmt.Errorf("priority fee API error %d: %s", response.Error.Code, response.Error.Message)
	}
	return uint64(response.Result.PriorityFeeEstimate), nil
}

func (c *Client) recentPriorityFee(ctx context.Context, accounts []solana.PublicKey) (uint64, error) {
	var samples []rpc.PriorizationFeeResult
	params := []interface{}{solana.PublicKeySlice(accounts)}
	if err := c.RpcClient.RPCCallForInto(ctx, &samples, "getRecentPrioritizationFees", params); err != nil {
		return 0, fmt.Errorf("failed to get recent prioritization fees: %w", err)
	}
	return maxFeeOverSlots(samples, priorityFeeLookbackSlots), nil
}

// maxFeeOverSlots returns the highest fee seen within lookback slots of the newest sample.
func maxFeeOverSlots(samples []rpc.PriorizationFeeResult, lookback uint64) uint64 {
	if len(samples) == 0 {
		return 0
	}
	newest := slices.MaxFunc(samples, func(a, b rpc.PriorizationFeeResult) int {
		switch {
		case a.Slot < b.Slot:
			return -1
		case a.Slot > b.Slot:
			return 1
		}
		return 0
	}).Slot

	var cutoff uint64
	if newest > lookback {
		cutoff = newest - lookback
	}
	var fee uint64
	for _, sample := range samples {
		if sample.Slot >= cutoff && sample.PrioritizationFee > fee {
			fee = sample.PrioritizationFee
		}
	}
	return fee
}

// computeBudget returns the compute budget instructions to prepend, or none when
// no fee applies.
func (c *Client) computeBudget(ctx context.Context, instructions []solana.Instruction) []solana.Instruction {
	var fee uint64
	if c.Config.PriorityFee != nil {
		fee = *c.Config.PriorityFee
	} else {
		estimate, err := c.EstimatePriorityFee(ctx, writableAccounts(instructions))
		if err != nil {
			klog.Warningf("priority fee estimate failed, sending without one: %v", err)
			return nil
		}
		fee = estimate
	}
	if fee == 0 {
		return nil
	}

	klog.V(2).Infof("priority fee %d micro-lamports, compute unit limit %d", fee, c.Config.ComputeUnitLimit)
	return []solana.Instruction{
		computebudget.NewSetComputeUnitLimitInstruction(c.Config.ComputeUnitLimit).Build(),
		computebudget.NewSetComputeUnitPriceInstruction(fee).Build(),
	}
}

func writableAccounts(instructions []solana.Instruction) []solana.PublicKey {
	var out []solana.PublicKey
	seen := map[solana.PublicKey]bool{}
	for _, ix := range instructions {
		for _, meta := range ix.Accounts() {
			if meta.IsWritable && !seen[meta.PublicKey] {
				seen[meta.PublicKey] = true
				out = append(out, meta.PublicKey)
			}
		}
	}
	return out
}
