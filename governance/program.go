package governance

import (
	"github.com/gagliardetto/solana-go"
)

// DefaultProgramID is the governance program instance the console talks to
// unless GOVERNANCE_PROGRAM_ID says otherwise.
var DefaultProgramID = solana.MustPublicKeyFromBase58("GovER5Lthms3bLBqWub97yVrMmEogzX7xNjdXpPPCVZw")

// BPFLoaderUpgradeableProgramID owns program data accounts of upgradeable programs.
var BPFLoaderUpgradeableProgramID = solana.MustPublicKeyFromBase58("BPFLoaderUpgradeab1e11111111111111111111111")

const (
	ProgramVersionV1 uint8 = 1
	ProgramVersionV2 uint8 = 2

	// DefaultProgramVersion is assumed when the version is not configured.
	DefaultProgramVersion = ProgramVersionV2
)

// Seeds used by the governance program for its program derived addresses.
var (
	seedGovernance        = []byte("governance")
	seedRealmConfig       = []byte("realm-config")
	seedAccountGovernance = []byte("account-governance")
	seedProgramGovernance = []byte("program-governance")
	seedMintGovernance    = []byte("mint-governance")
	seedTokenGovernance   = []byte("token-governance")
)

// MaxSeedLength bounds every single seed, realm names included.
const MaxSeedLength = solana.MaxSeedLength

// Instruction tags of the governance program.
const (
	InstructionCreateRealm uint8 = iota
	InstructionDepositGoverningTokens
	InstructionWithdrawGoverningTokens
	InstructionSetGovernanceDelegate
	InstructionCreateAccountGovernance
	InstructionCreateProgramGovernance
	InstructionCreateProposal
	InstructionAddSignatory
	InstructionRemoveSignatory
	InstructionInsertInstruction
	InstructionRemoveInstruction
	InstructionCancelProposal
	InstructionSignOffProposal
	InstructionCastVote
	InstructionFinalizeVote
	InstructionRelinquishVote
	InstructionExecuteInstruction
	InstructionCreateMintGovernance
	InstructionCreateTokenGovernance
	InstructionSetGovernanceConfig
	InstructionFlagInstructionError
	InstructionSetRealmAuthority
	InstructionSetRealmConfig
)

var instructionNames = []string{
	"CreateRealm",
	"DepositGoverningTokens",
	"WithdrawGoverningTokens",
	"SetGovernanceDelegate",
	"CreateAccountGovernance",
	"CreateProgramGovernance",
	"CreateProposal",
	"AddSignatory",
	"RemoveSignatory",
	"InsertInstruction",
	"RemoveInstruction",
	"CancelProposal",
	"SignOffProposal",
	"CastVote",
	"FinalizeVote",
	"RelinquishVote",
	"ExecuteInstruction",
	"CreateMintGovernance",
	"CreateTokenGovernance",
	"SetGovernanceConfig",
	"FlagInstructionError",
	"SetRealmAuthority",
	"SetRealmConfig",
}

// InstructionName returns the name of a governance instruction from its data.
func InstructionName(data []byte) string {
	if len(data) == 0 {
		return "Unknown"
	}
	if int(data[0]) < len(instructionNames) {
		return instructionNames[data[0]]
	}
	return "Unknown"
}

// AccountType is the discriminant stored in the first byte of every governance account.
type AccountType uint8

const (
	AccountTypeUninitialized AccountType = iota
	AccountTypeRealm
	AccountTypeTokenOwnerRecord
	AccountTypeAccountGovernance
	AccountTypeProgramGovernance
	AccountTypeProposalV1
	AccountTypeSignatoryRecord
	AccountTypeVoteRecordV1
	AccountTypeProposalInstructionV1
	AccountTypeMintGovernance
	AccountTypeTokenGovernance
	AccountTypeRealmConfig
	AccountTypeVoteRecordV2
	AccountTypeProposalInstructionV2
	AccountTypeProposalV2
)

func (t AccountType) String() string {
	switch t {
	case AccountTypeUninitialized:
		return "Uninitialized"
	case AccountTypeRealm:
		return "Realm"
	case AccountTypeTokenOwnerRecord:
		return "TokenOwnerRecord"
	case AccountTypeAccountGovernance:
		return "AccountGovernance"
	case AccountTypeProgramGovernance:
		return "ProgramGovernance"
	case AccountTypeProposalV1:
		return "ProposalV1"
	case AccountTypeSignatoryRecord:
		return "SignatoryRecord"
	case AccountTypeVoteRecordV1:
		return "VoteRecordV1"
	case AccountTypeProposalInstructionV1:
		return "ProposalInstructionV1"
	case AccountTypeMintGovernance:
		return "MintGovernance"
	case AccountTypeTokenGovernance:
		return "TokenGovernance"
	case AccountTypeRealmConfig:
		return "RealmConfig"
	case AccountTypeVoteRecordV2:
		return "VoteRecordV2"
	case AccountTypeProposalInstructionV2:
		return "ProposalInstructionV2"
	case AccountTypeProposalV2:
		return "ProposalV2"
	default:
		return "Unknown"
	}
}

// IsGovernance reports whether the type is one of the four governance kinds.
func (t AccountType) IsGovernance() bool {
	switch t {
	case AccountTypeAccountGovernance, AccountTypeProgramGovernance, AccountTypeMintGovernance, AccountTypeTokenGovernance:
		return true
	}
	return false
}

// IsProposal reports whether the type is a proposal of either version.
func (t AccountType) IsProposal() bool {
	return t == AccountTypeProposalV1 || t == AccountTypeProposalV2
}

// IsVoteRecord reports whether the type is a vote record of either version.
func (t AccountType) IsVoteRecord() bool {
	return t == AccountTypeVoteRecordV1 || t == AccountTypeVoteRecordV2
}

// AccountTypeOf returns the discriminant of raw account data.
func AccountTypeOf(data []byte) (AccountType, bool) {
	if len(data) == 0 {
		return AccountTypeUninitialized, false
	}
	return AccountType(data[0]), true
}

// GovernanceKind selects which governed entity a governance account controls.
type GovernanceKind string

const (
	GovernanceKindAccount GovernanceKind = "account"
	GovernanceKindProgram GovernanceKind = "program"
	GovernanceKindMint    GovernanceKind = "mint"
	GovernanceKindToken   GovernanceKind = "token"
)

// GovernanceKinds lists every governance kind in menu order.
var GovernanceKinds = []GovernanceKind{
	GovernanceKindAccount,
	GovernanceKindProgram,
	GovernanceKindMint,
	GovernanceKindToken,
}

// AccountType returns the account discriminant of governances of this kind.
func (k GovernanceKind) AccountType() AccountType {
	switch k {
	case GovernanceKindProgram:
		return AccountTypeProgramGovernance
	case GovernanceKindMint:
		return AccountTypeMintGovernance
	case GovernanceKindToken:
		return AccountTypeTokenGovernance
	default:
		return AccountTypeAccountGovernance
	}
}

func (k GovernanceKind) seed() []byte {
	switch k {
	case GovernanceKindProgram:
		return seedProgramGovernance
	case GovernanceKindMint:
		return seedMintGovernance
	case GovernanceKindToken:
		return seedTokenGovernance
	default:
		return seedAccountGovernance
	}
}
