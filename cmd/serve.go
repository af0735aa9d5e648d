package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"realms-cli/governance"
	"realms-cli/realms"
	"realms-cli/staking"
	"realms-cli/storage"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve read-only governance queries as a JSON API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newReadOnlyClient()
		if err != nil {
			return err
		}
		db, err := storage.NewWalletStorage()
		if err != nil {
			return fmt.Errorf("failed to open wallet storage: %w", err)
		}
		return serve(cmd.Context(), serveAddr, newAPI(client, db))
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:8088", "listen address")
	rootCmd.AddCommand(serveCmd)
}

type api struct {
	client *realms.Client
	db     *storage.WalletStorage
}

func newAPI(client *realms.Client, db *storage.WalletStorage) http.Handler {
	a := &api{client: client, db: db}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/realms", a.handleGetRealms)
	mux.HandleFunc("GET /api/governances", a.handleGetGovernances)
	mux.HandleFunc("GET /api/proposals", a.handleGetProposals)
	mux.HandleFunc("GET /api/weight", a.handleGetWeight)
	mux.HandleFunc("GET /api/profiles", a.handleGetProfiles)
	mux.HandleFunc("GET /api/addresses", a.handleGetAddresses)
	mux.HandleFunc("GET /api/balance", a.handleGetBalance)
	mux.HandleFunc("GET /api/history", a.handleGetHistory)
	return mux
}

func serve(ctx context.Context, addr string, handler http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			klog.Errorf("server shutdown: %v", err)
		}
	}()

	fmt.Printf("🚀 Serving the realms API at http://%s\n", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		klog.Errorf("failed to encode response: %v", err)
	}
}

// writeError maps missing accounts to 404 and everything else to 500.
func writeError(w http.ResponseWriter, what string, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, governance.ErrAccountNotFound) || errors.Is(err, storage.ErrWalletNotFound) {
		status = http.StatusNotFound
	}
	http.Error(w, fmt.Sprintf("Failed to get %s: %v", what, err), status)
}

func queryKey(w http.ResponseWriter, r *http.Request, name string) (solana.PublicKey, bool) {
	value := r.URL.Query().Get(name)
	if value == "" {
		http.Error(w, fmt.Sprintf("Missing '%s' query parameter", name), http.StatusBadRequest)
		return solana.PublicKey{}, false
	}
	pk, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid '%s' query parameter", name), http.StatusBadRequest)
		return solana.PublicKey{}, false
	}
	return pk, true
}

func (a *api) profile(w http.ResponseWriter, r *http.Request) (*storage.Wallet, bool) {
	profileName := r.URL.Query().Get("profile")
	if profileName == "" {
		http.Error(w, "Missing 'profile' query parameter", http.StatusBadRequest)
		return nil, false
	}
	wallet, err := a.db.GetWallet(profileName)
	if err != nil {
		http.Error(w, fmt.Sprintf("Profile '%s' not found", profileName), http.StatusNotFound)
		return nil, false
	}
	return wallet, true
}

func (a *api) handleGetRealms(w http.ResponseWriter, r *http.Request) {
	listing, err := a.client.FetchRealms(r.Context())
	if err != nil {
		writeError(w, "realms", err)
		return
	}
	writeJSON(w, listing)
}

func (a *api) handleGetGovernances(w http.ResponseWriter, r *http.Request) {
	realm, ok := queryKey(w, r, "realm")
	if !ok {
		return
	}
	listing, err := a.client.FetchGovernances(r.Context(), realm)
	if err != nil {
		writeError(w, "governances", err)
		return
	}
	writeJSON(w, listing)
}

func (a *api) handleGetProposals(w http.ResponseWriter, r *http.Request) {
	gov, ok := queryKey(w, r, "governance")
	if !ok {
		return
	}
	listing, err := a.client.FetchProposals(r.Context(), gov)
	if err != nil {
		writeError(w, "proposals", err)
		return
	}
	writeJSON(w, listing)
}

func (a *api) handleGetWeight(w http.ResponseWriter, r *http.Request) {
	owner, ok := queryKey(w, r, "owner")
	if !ok {
		return
	}
	report, err := a.client.VoterWeight(r.Context(), owner)
	if errors.Is(err, staking.ErrNoStakeAccount) {
		writeJSON(w, map[string]any{"owner": owner, "weight": nil})
		return
	}
	if err != nil {
		writeError(w, "voter weight", err)
		return
	}
	writeJSON(w, report)
}

func (a *api) handleGetProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := a.db.GetAllWalletNames()
	if err != nil {
		writeError(w, "wallet profiles", err)
		return
	}
	if profiles == nil {
		profiles = []string{}
	}
	writeJSON(w, profiles)
}

func (a *api) handleGetAddresses(w http.ResponseWriter, r *http.Request) {
	wallets, err := a.db.GetAllWallets()
	if err != nil {
		writeError(w, "wallets", err)
		return
	}
	addresses := make(map[string]string, len(wallets))
	for _, wallet := range wallets {
		addresses[wallet.Name] = wallet.PublicKey().String()
	}
	writeJSON(w, addresses)
}

func (a *api) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	wallet, ok := a.profile(w, r)
	if !ok {
		return
	}
	balance, err := a.client.GetBalance(r.Context(), wallet.PublicKey())
	if err != nil {
		writeError(w, "balance", err)
		return
	}
	writeJSON(w, map[string]uint64{"lamports": balance})
}

func (a *api) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	wallet, ok := a.profile(w, r)
	if !ok {
		return
	}
	limit := realms.DefaultHistoryLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid 'limit' query parameter", http.StatusBadRequest)
			return
		}
		limit = n
	}
	events, err := a.client.History(r.Context(), wallet.PublicKey(), limit)
	if err != nil {
		writeError(w, "transaction history", err)
		return
	}
	writeJSON(w, events)
}
