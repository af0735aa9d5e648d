package staking

import (
	"github.com/gagliardetto/solana-go"
)

type ReviseArgs struct {
	Realm                 solana.PublicKey
	CommunityMint         solana.PublicKey
	Owner                 solana.PublicKey
	Payer                 solana.PublicKey
	StakeAccount          solana.PublicKey
	StakePool             solana.PublicKey
	StakePoolTokenAccount solana.PublicKey
}

// ReviseArgsFor fills the stake accounts of a resolved voter weight.
func ReviseArgsFor(weight *VoterWeight, realm, communityMint, payer solana.PublicKey) ReviseArgs {
	return ReviseArgs{
		Realm:                 realm,
		CommunityMint:         communityMint,
		Owner:                 weight.Owner,
		Payer:                 payer,
		StakeAccount:          weight.StakeAccount,
		StakePool:             weight.Pool,
		StakePoolTokenAccount: weight.PoolTokenAccount,
	}
}

// WithRevise appends the registry instruction that recomputes the owner's voter
// weight record from their stake, and returns the record address.
func WithRevise(instructions *[]solana.Instruction, registryProgramID solana.PublicKey, args ReviseArgs) (solana.PublicKey, error) {
	record, err := VoterWeightRecordAddress(registryProgramID, args.Realm, args.CommunityMint, args.Owner)
	if err != nil {
		return solana.PublicKey{}, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(args.Payer).WRITE().SIGNER(),
		solana.Meta(args.Realm),
		solana.Meta(args.CommunityMint),
		solana.Meta(args.Owner),
		solana.Meta(record).WRITE(),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.SysVarRentPubkey),
		solana.Meta(args.StakeAccount),
		solana.Meta(args.StakePool),
		solana.Meta(args.StakePoolTokenAccount),
	}

	*instructions = append(*instructions, solana.NewInstruction(registryProgramID, accounts, []byte{InstructionRevise}))
	return record, nil
}
