package governance

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// CreateGovernanceArgs are the inputs shared by the four governance creation
// instructions. GovernedAuthority is the upgrade authority, mint authority or
// token owner of the governed entity; it is ignored for account governances.
type CreateGovernanceArgs struct {
	Kind                GovernanceKind
	Realm               solana.PublicKey
	Governed            solana.PublicKey
	GovernedAuthority   solana.PublicKey
	TransferAuthority   bool
	Config              GovernanceConfig
	TokenOwnerRecord    solana.PublicKey
	Payer               solana.PublicKey
	GovernanceAuthority solana.PublicKey
	VoterWeightRecord   *solana.PublicKey
}

// WithCreateGovernance appends the creation instruction matching args.Kind and
// returns the governance address.
func WithCreateGovernance(instructions *[]solana.Instruction, program Program, args CreateGovernanceArgs) (solana.PublicKey, error) {
	switch args.Kind {
	case GovernanceKindAccount:
		return WithCreateAccountGovernance(instructions, program, args)
	case GovernanceKindProgram:
		return WithCreateProgramGovernance(instructions, program, args)
	case GovernanceKindMint:
		return WithCreateMintGovernance(instructions, program, args)
	case GovernanceKindToken:
		return WithCreateTokenGovernance(instructions, program, args)
	default:
		return solana.PublicKey{}, fmt.Errorf("unknown governance kind %q", args.Kind)
	}
}

// WithCreateAccountGovernance appends a CreateAccountGovernance instruction.
func WithCreateAccountGovernance(instructions *[]solana.Instruction, program Program, args CreateGovernanceArgs) (solana.PublicKey, error) {
	governance, err := GovernanceAddress(program.ID, GovernanceKindAccount, args.Realm, args.Governed)
	if err != nil {
		return solana.PublicKey{}, err
	}
	addin, err := program.voterWeightAccounts(args.Realm, args.VoterWeightRecord)
	if err != nil {
		return solana.PublicKey{}, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(args.Realm),
		solana.Meta(governance).WRITE(),
		solana.Meta(args.Governed),
		solana.Meta(args.TokenOwnerRecord),
		solana.Meta(args.Payer).WRITE().SIGNER(),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.SysVarRentPubkey),
		solana.Meta(args.GovernanceAuthority).SIGNER(),
	}
	accounts = append(accounts, addin...)

	data, err := encodeData(InstructionCreateAccountGovernance, args.Config.MarshalWithEncoder)
	if err != nil {
		return solana.PublicKey{}, err
	}

	appendInstruction(instructions, program.ID, accounts, data)
	return governance, nil
}

// WithCreateProgramGovernance appends a CreateProgramGovernance instruction.
// The upgrade authority signs so the program can take over upgrades when
// TransferAuthority is set.
func WithCreateProgramGovernance(instructions *[]solana.Instruction, program Program, args CreateGovernanceArgs) (solana.PublicKey, error) {
	governance, err := GovernanceAddress(program.ID, GovernanceKindProgram, args.Realm, args.Governed)
	if err != nil {
		return solana.PublicKey{}, err
	}
	programData, err := ProgramDataAddress(args.Governed)
	if err != nil {
		return solana.PublicKey{}, err
	}
	addin, err := program.voterWeightAccounts(args.Realm, args.VoterWeightRecord)
	if err != nil {
		return solana.PublicKey{}, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(args.Realm),
		solana.Meta(governance).WRITE(),
		solana.Meta(args.Governed),
		solana.Meta(programData).WRITE(),
		solana.Meta(args.GovernedAuthority).SIGNER(),
		solana.Meta(args.TokenOwnerRecord),
		solana.Meta(args.Payer).WRITE().SIGNER(),
		solana.Meta(BPFLoaderUpgradeableProgramID),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.SysVarRentPubkey),
		solana.Meta(args.GovernanceAuthority).SIGNER(),
	}
	accounts = append(accounts, addin...)

	data, err := encodeData(InstructionCreateProgramGovernance, args.encodeWithTransfer)
	if err != nil {
		return solana.PublicKey{}, err
	}

	appendInstruction(instructions, program.ID, accounts, data)
	return governance, nil
}

// WithCreateMintGovernance appends a CreateMintGovernance instruction.
func WithCreateMintGovernance(instructions *[]solana.Instruction, program Program, args CreateGovernanceArgs) (solana.PublicKey, error) {
	return withCreateTokenLikeGovernance(instructions, program, args, GovernanceKindMint, InstructionCreateMintGovernance)
}

// WithCreateTokenGovernance appends a CreateTokenGovernance instruction.
func WithCreateTokenGovernance(instructions *[]solana.Instruction, program Program, args CreateGovernanceArgs) (solana.PublicKey, error) {
	return withCreateTokenLikeGovernance(instructions, program, args, GovernanceKindToken, InstructionCreateTokenGovernance)
}

// Mint and token governances share one account layout: the governed account is
// writable and its current authority signs.
func withCreateTokenLikeGovernance(instructions *[]solana.Instruction, program Program, args CreateGovernanceArgs, kind GovernanceKind, tag uint8) (solana.PublicKey, error) {
	governance, err := GovernanceAddress(program.ID, kind, args.Realm, args.Governed)
	if err != nil {
		return solana.PublicKey{}, err
	}
	addin, err := program.voterWeightAccounts(args.Realm, args.VoterWeightRecord)
	if err != nil {
		return solana.PublicKey{}, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(args.Realm),
		solana.Meta(governance).WRITE(),
		solana.Meta(args.Governed).WRITE(),
		solana.Meta(args.GovernedAuthority).SIGNER(),
		solana.Meta(args.TokenOwnerRecord),
		solana.Meta(args.Payer).WRITE().SIGNER(),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.SysVarRentPubkey),
		solana.Meta(args.GovernanceAuthority).SIGNER(),
	}
	accounts = append(accounts, addin...)

	data, err := encodeData(tag, args.encodeWithTransfer)
	if err != nil {
		return solana.PublicKey{}, err
	}

	appendInstruction(instructions, program.ID, accounts, data)
	return governance, nil
}

func (args CreateGovernanceArgs) encodeWithTransfer(encoder *bin.Encoder) error {
	if err := args.Config.MarshalWithEncoder(encoder); err != nil {
		return err
	}
	return encoder.WriteBool(args.TransferAuthority)
}
