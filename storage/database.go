package storage

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
)

const (
	walletFileName = "wallets.json"
	appDirName     = "realms-cli"
)

var (
	// ErrWalletNotFound is returned when no profile of the given name exists.
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrWalletExists is returned when saving over an existing profile.
	ErrWalletExists = errors.New("wallet already exists")
)

// walletData represents one profile as stored in the JSON file.
type walletData struct {
	PrivateKey string    `json:"private_key"` // base64
	CreatedAt  time.Time `json:"created_at"`
}

type walletFile struct {
	Wallets map[string]walletData `json:"wallets"`
}

// WalletStorage keeps named signing profiles in a single JSON file.
type WalletStorage struct {
	mu   sync.Mutex
	path string
}

// NewWalletStorage opens the store at ~/.config/realms-cli/wallets.json.
func NewWalletStorage() (*WalletStorage, error) {
	path, err := defaultPath()
	if err != nil {
		return nil, fmt.Errorf("could not get wallet path: %w", err)
	}
	return NewWalletStorageAt(path)
}

// NewWalletStorageAt opens the store at path, creating its directory.
func NewWalletStorageAt(path string) (*WalletStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("could not create wallet directory: %w", err)
	}
	return &WalletStorage{path: path}, nil
}

func (s *WalletStorage) Path() string {
	return s.path
}

// SaveWallet stores privateKey under name. Existing profiles are never overwritten.
func (s *WalletStorage) SaveWallet(name string, privateKey solana.PrivateKey) error {
	if name == "" {
		return fmt.Errorf("wallet name is required")
	}
	if len(privateKey) != solana.PrivateKeyLength {
		return fmt.Errorf("invalid private key length: expected %d, got %d", solana.PrivateKeyLength, len(privateKey))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	file, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := file.Wallets[name]; ok {
		return fmt.Errorf("%w: %s", ErrWalletExists, name)
	}
	file.Wallets[name] = walletData{
		PrivateKey: base64.StdEncoding.EncodeToString(privateKey),
		CreatedAt:  time.Now().UTC(),
	}
	return s.write(file)
}

// GetWallet retrieves the profile stored under name.
func (s *WalletStorage) GetWallet(name string) (*Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	file, err := s.read()
	if err != nil {
		return nil, err
	}
	data, ok := file.Wallets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWalletNotFound, name)
	}
	return data.decode(name)
}

// GetAllWalletNames returns the profile names in sorted order.
func (s *WalletStorage) GetAllWalletNames() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	file, err := s.read()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(file.Wallets))
	for name := range file.Wallets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// GetAllWallets returns every profile sorted by name.
func (s *WalletStorage) GetAllWallets() ([]*Wallet, error) {
	names, err := s.GetAllWalletNames()
	if err != nil {
		return nil, err
	}
	wallets := make([]*Wallet, 0, len(names))
	for _, name := range names {
		wallet, err := s.GetWallet(name)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, wallet)
	}
	return wallets, nil
}

func (s *WalletStorage) DeleteWallet(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	file, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := file.Wallets[name]; !ok {
		return fmt.Errorf("%w: %s", ErrWalletNotFound, name)
	}
	delete(file.Wallets, name)
	return s.write(file)
}

func (s *WalletStorage) read() (*walletFile, error) {
	file := &walletFile{Wallets: map[string]walletData{}}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return file, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read wallet file: %w", err)
	}
	if len(data) == 0 {
		return file, nil
	}
	if err := json.Unmarshal(data, file); err != nil {
		return nil, fmt.Errorf("could not parse wallet file: %w", err)
	}
	if file.Wallets == nil {
		file.Wallets = map[string]walletData{}
	}
	return file, nil
}

func (s *WalletStorage) write(file *walletFile) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal wallet data: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("could not write wallet file: %w", err)
	}
	return nil
}

func (d walletData) decode(name string) (*Wallet, error) {
	privateKeyBytes, err := base64.StdEncoding.DecodeString(d.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("could not decode private key of %s: %w", name, err)
	}
	if len(privateKeyBytes) != solana.PrivateKeyLength {
		return nil, fmt.Errorf("invalid private key length in wallet %s: expected %d, got %d", name, solana.PrivateKeyLength, len(privateKeyBytes))
	}
	return &Wallet{
		Name:       name,
		PrivateKey: solana.PrivateKey(privateKeyBytes),
		CreatedAt:  d.CreatedAt,
	}, nil
}

// defaultPath returns e.g. /home/user/.config/realms-cli/wallets.json.
func defaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, appDirName, walletFileName), nil
}
