package governance

import (
	"errors"
	"fmt"
)

var (
	// ErrAccountNotFound is returned when the ledger holds no account at an address.
	ErrAccountNotFound = errors.New("account not found")
	// ErrDecode is returned for account data that does not match the expected layout.
	ErrDecode = errors.New("invalid account data")
	// ErrUnsupportedVersion is returned when an instruction needs a newer program version.
	ErrUnsupportedVersion = errors.New("unsupported program version")
	// ErrTransactionRejected is returned when the cluster refuses a transaction.
	ErrTransactionRejected = errors.New("transaction rejected")
	// ErrSeedTooLong is returned when a seed, usually a realm name, exceeds 32 bytes.
	ErrSeedTooLong = errors.New("seed exceeds 32 bytes")
)

func unsupportedAddin(version uint8) error {
	return fmt.Errorf("%w: voter weight addin is not supported in version %d", ErrUnsupportedVersion, version)
}

func decodeErr(what string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrDecode, what, err)
}
