package cmd

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"k8s.io/klog/v2"

	"realms-cli/governance"
	"realms-cli/realms"
	"realms-cli/storage"
)

const (
	defaultRpcEndpoint = "https://api.mainnet-beta.solana.com"
	heliusRpcEndpoint  = "https://mainnet.helius-rpc.com/?api-key=%s"
	defaultProfile     = "default"
)

// Values of the persistent flags. Empty values fall back to the environment.
var flags struct {
	profile        string
	rpc            string
	ws             string
	program        string
	programVersion uint8
	priorityFee    string
	dryRun         bool
}

var loadEnv = sync.OnceFunc(func() {
	if err := godotenv.Load(); err != nil {
		klog.V(1).Info(".env file not found, using the process environment")
	}
})

// loadConfig builds the client configuration from flags, then the environment.
func loadConfig() (realms.Config, error) {
	loadEnv()

	cfg := realms.Config{
		RPCEndpoint: firstNonEmpty(flags.rpc, os.Getenv("RPC_URL")),
		WSEndpoint:  firstNonEmpty(flags.ws, os.Getenv("WS_URL")),
		DryRun:      flags.dryRun,
	}
	if heliusApiKey := os.Getenv("HELIUS_API_KEY"); heliusApiKey != "" {
		helius := fmt.Sprintf(heliusRpcEndpoint, heliusApiKey)
		cfg.HeliusURL = helius
		if cfg.RPCEndpoint == "" {
			cfg.RPCEndpoint = helius
			klog.V(1).Info("using Helius RPC endpoint")
		}
	}
	if cfg.RPCEndpoint == "" {
		cfg.RPCEndpoint = defaultRpcEndpoint
	}

	var err error
	if cfg.Program.ID, err = publicKeyOr(firstNonEmpty(flags.program, os.Getenv("GOVERNANCE_PROGRAM_ID")), governance.DefaultProgramID); err != nil {
		return cfg, fmt.Errorf("invalid governance program id: %w", err)
	}
	cfg.Program.Version = flags.programVersion
	if cfg.Program.Version == 0 {
		if v := os.Getenv("GOVERNANCE_PROGRAM_VERSION"); v != "" {
			version, err := strconv.ParseUint(v, 10, 8)
			if err != nil {
				return cfg, fmt.Errorf("invalid GOVERNANCE_PROGRAM_VERSION %q: %w", v, err)
			}
			cfg.Program.Version = uint8(version)
		}
	}
	if cfg.StakeProgramID, err = publicKeyOr(os.Getenv("STAKE_PROGRAM_ID"), solana.PublicKey{}); err != nil {
		return cfg, fmt.Errorf("invalid stake program id: %w", err)
	}
	if cfg.RegistryProgramID, err = publicKeyOr(os.Getenv("REGISTRY_PROGRAM_ID"), solana.PublicKey{}); err != nil {
		return cfg, fmt.Errorf("invalid registry program id: %w", err)
	}

	if fee := firstNonEmpty(flags.priorityFee, os.Getenv("PRIORITY_FEE")); fee != "" && fee != "auto" {
		value, err := strconv.ParseUint(fee, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid priority fee %q: %w", fee, err)
		}
		cfg.PriorityFee = &value
	}
	return cfg, nil
}

// newReadOnlyClient creates a client for queries.
func newReadOnlyClient() (*realms.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return realms.NewReadOnlyClient(cfg)
}

// newClient creates a client signing with the selected profile.
func newClient() (*realms.Client, *storage.Wallet, error) {
	wallet, err := currentWallet()
	if err != nil {
		return nil, nil, err
	}
	client, err := newClientFor(wallet)
	return client, wallet, err
}

func newClientFor(wallet *storage.Wallet) (*realms.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	client, err := realms.NewClient(cfg, wallet.PrivateKey)
	if err != nil {
		return nil, err
	}
	client.Notifier = consoleNotifier{}
	return client, nil
}

func currentWallet() (*storage.Wallet, error) {
	db, err := storage.NewWalletStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet storage: %w", err)
	}
	name := firstNonEmpty(flags.profile, os.Getenv("REALMS_PROFILE"), defaultProfile)
	wallet, err := db.GetWallet(name)
	if err != nil {
		return nil, fmt.Errorf("%w (create one with `realms-cli profile create %s`)", err, name)
	}
	return wallet, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func publicKeyOr(s string, fallback solana.PublicKey) (solana.PublicKey, error) {
	if s == "" {
		return fallback, nil
	}
	return solana.PublicKeyFromBase58(s)
}
