package governance

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

type CreateProposalArgs struct {
	Realm               solana.PublicKey
	Governance          solana.PublicKey
	TokenOwnerRecord    solana.PublicKey
	Name                string
	DescriptionLink     string
	GoverningTokenMint  solana.PublicKey
	GovernanceAuthority solana.PublicKey
	// ProposalIndex is the governance's current proposal count.
	ProposalIndex uint32
	Payer         solana.PublicKey

	// Version 2 only. Empty Options means a single "Approve" option.
	VoteType          VoteType
	Options           []string
	UseDenyOption     bool
	VoterWeightRecord *solana.PublicKey
}

// DefaultProposalOptions is the option list of a plain yes/no proposal.
var DefaultProposalOptions = []string{"Approve"}

// WithCreateProposal appends a CreateProposal instruction and returns the proposal address.
func WithCreateProposal(instructions *[]solana.Instruction, program Program, args CreateProposalArgs) (solana.PublicKey, error) {
	proposal, err := ProposalAddress(program.ID, args.Governance, args.GoverningTokenMint, args.ProposalIndex)
	if err != nil {
		return solana.PublicKey{}, err
	}
	addin, err := program.voterWeightAccounts(args.Realm, args.VoterWeightRecord)
	if err != nil {
		return solana.PublicKey{}, err
	}

	v2 := program.version() >= ProgramVersionV2
	accounts := solana.AccountMetaSlice{
		solana.Meta(args.Realm),
		solana.Meta(proposal).WRITE(),
		solana.Meta(args.Governance).WRITE(),
		solana.Meta(args.TokenOwnerRecord).WRITE(),
	}
	if v2 {
		accounts = append(accounts, solana.Meta(args.GoverningTokenMint))
	}
	accounts = append(accounts,
		solana.Meta(args.GovernanceAuthority).SIGNER(),
		solana.Meta(args.Payer).WRITE().SIGNER(),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.SysVarRentPubkey),
		solana.Meta(solana.SysVarClockPubkey),
	)
	accounts = append(accounts, addin...)

	options := args.Options
	if len(options) == 0 {
		options = DefaultProposalOptions
	}
	if v2 && args.VoteType.Kind == VoteTypeMultiChoice && int(args.VoteType.MaxChoices) > len(options) {
		return solana.PublicKey{}, fmt.Errorf("max choices %d exceeds %d options", args.VoteType.MaxChoices, len(options))
	}

	data, err := encodeData(InstructionCreateProposal, func(encoder *bin.Encoder) error {
		if err := writeString(encoder, args.Name); err != nil {
			return err
		}
		if err := writeString(encoder, args.DescriptionLink); err != nil {
			return err
		}
		if !v2 {
			return writePublicKey(encoder, args.GoverningTokenMint)
		}
		if err := args.VoteType.MarshalWithEncoder(encoder); err != nil {
			return err
		}
		if err := encoder.WriteUint32(uint32(len(options)), bin.LE); err != nil {
			return err
		}
		for _, option := range options {
			if err := writeString(encoder, option); err != nil {
				return err
			}
		}
		return encoder.WriteBool(args.UseDenyOption)
	})
	if err != nil {
		return solana.PublicKey{}, err
	}

	appendInstruction(instructions, program.ID, accounts, data)
	return proposal, nil
}

type AddSignatoryArgs struct {
	Proposal            solana.PublicKey
	TokenOwnerRecord    solana.PublicKey
	GovernanceAuthority solana.PublicKey
	Signatory           solana.PublicKey
	Payer               solana.PublicKey
}

// WithAddSignatory appends an AddSignatory instruction and returns the signatory record.
func WithAddSignatory(instructions *[]solana.Instruction, program Program, args AddSignatoryArgs) (solana.PublicKey, error) {
	signatoryRecord, err := SignatoryRecordAddress(program.ID, args.Proposal, args.Signatory)
	if err != nil {
		return solana.PublicKey{}, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(args.Proposal).WRITE(),
		solana.Meta(args.TokenOwnerRecord),
		solana.Meta(args.GovernanceAuthority).SIGNER(),
		solana.Meta(signatoryRecord).WRITE(),
		solana.Meta(args.Payer).WRITE().SIGNER(),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.SysVarRentPubkey),
	}

	data, err := encodeData(InstructionAddSignatory, func(encoder *bin.Encoder) error {
		return writePublicKey(encoder, args.Signatory)
	})
	if err != nil {
		return solana.PublicKey{}, err
	}

	appendInstruction(instructions, program.ID, accounts, data)
	return signatoryRecord, nil
}

// WithSignOffProposal appends a SignOffProposal instruction for signatory.
func WithSignOffProposal(instructions *[]solana.Instruction, program Program, proposal, signatory solana.PublicKey) error {
	signatoryRecord, err := SignatoryRecordAddress(program.ID, proposal, signatory)
	if err != nil {
		return err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(proposal).WRITE(),
		solana.Meta(signatoryRecord).WRITE(),
		solana.Meta(signatory).SIGNER(),
		solana.Meta(solana.SysVarClockPubkey),
	}

	data, err := encodeData(InstructionSignOffProposal, nil)
	if err != nil {
		return err
	}

	appendInstruction(instructions, program.ID, accounts, data)
	return nil
}
