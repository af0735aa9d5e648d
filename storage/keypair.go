package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
)

// CreateWallet generates a new keypair and saves it under name.
func (s *WalletStorage) CreateWallet(name string) (*Wallet, error) {
	privateKey := solana.NewWallet().PrivateKey
	if err := s.SaveWallet(name, privateKey); err != nil {
		return nil, fmt.Errorf("failed to save new wallet: %w", err)
	}
	return s.GetWallet(name)
}

// ImportKeypairFile saves the keypair of a Solana CLI keypair file (a JSON array of
// 64 bytes) under name.
func (s *WalletStorage) ImportKeypairFile(name, path string) (*Wallet, error) {
	privateKey, err := LoadKeypairFile(path)
	if err != nil {
		return nil, err
	}
	if err := s.SaveWallet(name, privateKey); err != nil {
		return nil, err
	}
	return s.GetWallet(name)
}

// LoadKeypairFile loads a private key from a Solana CLI keypair file.
func LoadKeypairFile(path string) (solana.PrivateKey, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keypair file: %w", err)
	}

	var privateKeyBytes []byte
	if err := json.Unmarshal(bytes, &privateKeyBytes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal keypair file: %w", err)
	}

	if len(privateKeyBytes) != solana.PrivateKeyLength {
		return nil, fmt.Errorf("invalid private key length: expected %d, got %d", solana.PrivateKeyLength, len(privateKeyBytes))
	}

	return solana.PrivateKey(privateKeyBytes), nil
}
