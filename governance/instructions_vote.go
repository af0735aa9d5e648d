package governance

import (
	"github.com/gagliardetto/solana-go"
)

type CastVoteArgs struct {
	Realm                 solana.PublicKey
	Governance            solana.PublicKey
	Proposal              solana.PublicKey
	ProposalOwnerRecord   solana.PublicKey
	VoterTokenOwnerRecord solana.PublicKey
	GovernanceAuthority   solana.PublicKey
	GoverningTokenMint    solana.PublicKey
	Payer                 solana.PublicKey
	Vote                  YesNoVote
	VoterWeightRecord     *solana.PublicKey
}

// WithCastVote appends a CastVote instruction and returns the vote record address.
// Version 1 programs receive a YesNoVote; later versions receive the Vote enum.
func WithCastVote(instructions *[]solana.Instruction, program Program, args CastVoteArgs) (solana.PublicKey, error) {
	voteRecord, err := VoteRecordAddress(program.ID, args.Proposal, args.VoterTokenOwnerRecord)
	if err != nil {
		return solana.PublicKey{}, err
	}
	addin, err := program.voterWeightAccounts(args.Realm, args.VoterWeightRecord)
	if err != nil {
		return solana.PublicKey{}, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(args.Realm),
		solana.Meta(args.Governance),
		solana.Meta(args.Proposal).WRITE(),
		solana.Meta(args.ProposalOwnerRecord).WRITE(),
		solana.Meta(args.VoterTokenOwnerRecord).WRITE(),
		solana.Meta(args.GovernanceAuthority).SIGNER(),
		solana.Meta(voteRecord).WRITE(),
		solana.Meta(args.GoverningTokenMint),
		solana.Meta(args.Payer).WRITE().SIGNER(),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.SysVarRentPubkey),
		solana.Meta(solana.SysVarClockPubkey),
	}
	accounts = append(accounts, addin...)

	var data []byte
	if program.version() < ProgramVersionV2 {
		data = []byte{InstructionCastVote, uint8(args.Vote)}
	} else {
		data, err = encodeData(InstructionCastVote, VoteFromYesNo(args.Vote).MarshalWithEncoder)
		if err != nil {
			return solana.PublicKey{}, err
		}
	}

	appendInstruction(instructions, program.ID, accounts, data)
	return voteRecord, nil
}
