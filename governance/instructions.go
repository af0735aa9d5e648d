package governance

import (
	"github.com/gagliardetto/solana-go"
)

// Program identifies a deployed governance program and the wire version it speaks.
type Program struct {
	ID      solana.PublicKey
	Version uint8
}

// DefaultProgram is the default deployment at the default version.
var DefaultProgram = Program{ID: DefaultProgramID, Version: DefaultProgramVersion}

func (p Program) version() uint8 {
	if p.Version == 0 {
		return DefaultProgramVersion
	}
	return p.Version
}

// supportsAddin reports whether the program understands voter weight addins.
func (p Program) supportsAddin() bool {
	return p.version() >= ProgramVersionV2
}

// voterWeightAccounts returns the realm config and voter weight record metas that
// version 2 instructions expect at the end of their account list.
func (p Program) voterWeightAccounts(realm solana.PublicKey, voterWeightRecord *solana.PublicKey) (solana.AccountMetaSlice, error) {
	if !p.supportsAddin() {
		if voterWeightRecord != nil {
			return nil, unsupportedAddin(p.version())
		}
		return nil, nil
	}
	realmConfig, err := RealmConfigAddress(p.ID, realm)
	if err != nil {
		return nil, err
	}
	metas := solana.AccountMetaSlice{solana.Meta(realmConfig)}
	if voterWeightRecord != nil {
		metas = append(metas, solana.Meta(*voterWeightRecord))
	}
	return metas, nil
}

func appendInstruction(instructions *[]solana.Instruction, programID solana.PublicKey, accounts solana.AccountMetaSlice, data []byte) {
	*instructions = append(*instructions, solana.NewInstruction(programID, accounts, data))
}
