package realms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rpcFee(slot, fee uint64) rpc.PriorizationFeeResult {
	return rpc.PriorizationFeeResult{Slot: slot, PrioritizationFee: fee}
}

func TestMaxFeeOverSlots(t *testing.T) {
	for _, tc := range []struct {
		name     string
		samples  []rpc.PriorizationFeeResult
		lookback uint64
		want     uint64
	}{
		{name: "empty", want: 0},
		{name: "single", samples: []rpc.PriorizationFeeResult{rpcFee(10, 7)}, lookback: 150, want: 7},
		{
			name:     "max within window",
			samples:  []rpc.PriorizationFeeResult{rpcFee(500, 10), rpcFee(498, 90), rpcFee(499, 40)},
			lookback: 150,
			want:     90,
		},
		{
			name:     "old samples ignored",
			samples:  []rpc.PriorizationFeeResult{rpcFee(100, 1_000), rpcFee(400, 5), rpcFee(300, 8)},
			lookback: 150,
			want:     8,
		},
		{
			name:     "newest slot below lookback",
			samples:  []rpc.PriorizationFeeResult{rpcFee(3, 2), rpcFee(0, 6)},
			lookback: 150,
			want:     6,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, maxFeeOverSlots(tc.samples, tc.lookback))
		})
	}
}

func TestEstimatePriorityFee_RecentFees(t *testing.T) {
	conn := newFakeRPC()
	conn.fees = []rpc.PriorizationFeeResult{rpcFee(1_000, 12), rpcFee(1_001, 30)}
	client, _, _ := newTestClient(t, conn, Config{})

	fee, err := client.EstimatePriorityFee(context.Background(), []solana.PublicKey{key(1)})
	require.NoError(t, err)
	assert.Equal(t, uint64(30), fee)
}

func heliusServer(t *testing.T, status int, body string, seen *heliusPriorityFeeRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestEstimatePriorityFee_Helius(t *testing.T) {
	var request heliusPriorityFeeRequest
	server := heliusServer(t, http.StatusOK, `{"jsonrpc":"2.0","id":"realms-cli","result":{"priorityFeeEstimate":1234.7}}`, &request)
	conn := newFakeRPC()
	client, _, _ := newTestClient(t, conn, Config{HeliusURL: server.URL})

	fee, err := client.EstimatePriorityFee(context.Background(), []solana.PublicKey{key(1), key(2)})
	require.NoError(t, err)

	assert.Equal(t, uint64(1234), fee)
	assert.Zero(t, conn.feeCalls)
	assert.Equal(t, "getPriorityFeeEstimate", request.Method)
	require.Len(t, request.Params, 1)
	assert.Equal(t, []string{key(1).String(), key(2).String()}, request.Params[0].AccountKeys)
	assert.Equal(t, HeliusPriorityLevelMedium, request.Params[0].Options.PriorityLevel)
}

func TestEstimatePriorityFee_HeliusErrors(t *testing.T) {
	for _, tc := range []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "rpc error", status: http.StatusOK, body: `{"jsonrpc":"2.0","id":"1","error":{"code":-32602,"message":"invalid params"}}`, want: "invalid params"},
		{name: "http status", status: http.StatusTooManyRequests, body: `{}`, want: "non-200"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			server := heliusServer(t, tc.status, tc.body, nil)
			client, _, _ := newTestClient(t, newFakeRPC(), Config{HeliusURL: server.URL})

			_, err := client.EstimatePriorityFee(context.Background(), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestComputeBudget_EstimateFailureSendsWithoutFee(t *testing.T) {
	server := heliusServer(t, http.StatusInternalServerError, `{}`, nil)
	client, signer, _ := newTestClient(t, newFakeRPC(), Config{HeliusURL: server.URL})

	budget := client.computeBudget(context.Background(), []solana.Instruction{transfer(key(9), signer.PublicKey())})
	assert.Empty(t, budget)
}

func TestWritableAccounts(t *testing.T) {
	from := key(1)
	instructions := []solana.Instruction{
		transfer(key(2), from),
		transfer(key(3), from),
	}

	assert.Equal(t, []solana.PublicKey{from, key(2), key(3)}, writableAccounts(instructions))
}
