package storage

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// Wallet is a named signing profile.
type Wallet struct {
	Name       string
	PrivateKey solana.PrivateKey
	CreatedAt  time.Time
}

// PublicKey returns the public key of the wallet.
func (w *Wallet) PublicKey() solana.PublicKey {
	return w.PrivateKey.PublicKey()
}
