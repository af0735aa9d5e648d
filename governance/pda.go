package governance

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// RealmAddress returns the realm PDA for a realm name.
func RealmAddress(programID solana.PublicKey, name string) (solana.PublicKey, error) {
	if len(name) > MaxSeedLength {
		return solana.PublicKey{}, fmt.Errorf("%w: realm name %q", ErrSeedTooLong, name)
	}
	pk, _, err := solana.FindProgramAddress(
		[][]byte{
			seedGovernance,
			[]byte(name),
		},
		programID,
	)
	return pk, err
}

// GoverningTokenHoldingAddress returns the token account holding deposits of mint for realm.
func GoverningTokenHoldingAddress(programID, realm, mint solana.PublicKey) (solana.PublicKey, error) {
	pk, _, err := solana.FindProgramAddress(
		[][]byte{
			seedGovernance,
			realm.Bytes(),
			mint.Bytes(),
		},
		programID,
	)
	return pk, err
}

// RealmConfigAddress returns the realm config PDA.
func RealmConfigAddress(programID, realm solana.PublicKey) (solana.PublicKey, error) {
	pk, _, err := solana.FindProgramAddress(
		[][]byte{
			seedRealmConfig,
			realm.Bytes(),
		},
		programID,
	)
	return pk, err
}

// TokenOwnerRecordAddress returns the deposit record of owner for mint in realm.
func TokenOwnerRecordAddress(programID, realm, mint, owner solana.PublicKey) (solana.PublicKey, error) {
	pk, _, err := solana.FindProgramAddress(
		[][]byte{
			seedGovernance,
			realm.Bytes(),
			mint.Bytes(),
			owner.Bytes(),
		},
		programID,
	)
	return pk, err
}

// GovernanceAddress returns the governance PDA of the given kind over a governed entity.
func GovernanceAddress(programID solana.PublicKey, kind GovernanceKind, realm, governed solana.PublicKey) (solana.PublicKey, error) {
	pk, _, err := solana.FindProgramAddress(
		[][]byte{
			kind.seed(),
			realm.Bytes(),
			governed.Bytes(),
		},
		programID,
	)
	return pk, err
}

// ProposalAddress returns the PDA of the proposal at index under governance.
func ProposalAddress(programID, governance, mint solana.PublicKey, index uint32) (solana.PublicKey, error) {
	indexBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(indexBytes, index)
	pk, _, err := solana.FindProgramAddress(
		[][]byte{
			seedGovernance,
			governance.Bytes(),
			mint.Bytes(),
			indexBytes,
		},
		programID,
	)
	return pk, err
}

// SignatoryRecordAddress returns the record of signatory on proposal.
func SignatoryRecordAddress(programID, proposal, signatory solana.PublicKey) (solana.PublicKey, error) {
	pk, _, err := solana.FindProgramAddress(
		[][]byte{
			seedGovernance,
			proposal.Bytes(),
			signatory.Bytes(),
		},
		programID,
	)
	return pk, err
}

// VoteRecordAddress returns the vote record of a token owner record on proposal.
func VoteRecordAddress(programID, proposal, tokenOwnerRecord solana.PublicKey) (solana.PublicKey, error) {
	pk, _, err := solana.FindProgramAddress(
		[][]byte{
			seedGovernance,
			proposal.Bytes(),
			tokenOwnerRecord.Bytes(),
		},
		programID,
	)
	return pk, err
}

// ProgramDataAddress returns the program data account of an upgradeable program.
func ProgramDataAddress(program solana.PublicKey) (solana.PublicKey, error) {
	pk, _, err := solana.FindProgramAddress(
		[][]byte{
			program.Bytes(),
		},
		BPFLoaderUpgradeableProgramID,
	)
	return pk, err
}
