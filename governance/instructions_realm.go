package governance

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// CreateRealmArgs are the inputs of a CreateRealm instruction.
type CreateRealmArgs struct {
	Name                                 string
	RealmAuthority                       solana.PublicKey
	CommunityMint                        solana.PublicKey
	Payer                                solana.PublicKey
	CouncilMint                          *solana.PublicKey
	CommunityMintMaxVoteWeightSource     MintMaxVoteWeightSource
	MinCommunityTokensToCreateGovernance uint64
	// CommunityVoterWeightAddin requires program version 2.
	CommunityVoterWeightAddin *solana.PublicKey
}

// WithCreateRealm appends a CreateRealm instruction and returns the realm address.
func WithCreateRealm(instructions *[]solana.Instruction, program Program, args CreateRealmArgs) (solana.PublicKey, error) {
	if args.CommunityVoterWeightAddin != nil && !program.supportsAddin() {
		return solana.PublicKey{}, unsupportedAddin(program.version())
	}

	realm, err := RealmAddress(program.ID, args.Name)
	if err != nil {
		return solana.PublicKey{}, err
	}
	communityHolding, err := GoverningTokenHoldingAddress(program.ID, realm, args.CommunityMint)
	if err != nil {
		return solana.PublicKey{}, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(realm).WRITE(),
		solana.Meta(args.RealmAuthority),
		solana.Meta(args.CommunityMint),
		solana.Meta(communityHolding).WRITE(),
		solana.Meta(args.Payer).WRITE().SIGNER(),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(solana.SysVarRentPubkey),
	}

	if args.CouncilMint != nil {
		councilHolding, err := GoverningTokenHoldingAddress(program.ID, realm, *args.CouncilMint)
		if err != nil {
			return solana.PublicKey{}, err
		}
		accounts = append(accounts,
			solana.Meta(*args.CouncilMint),
			solana.Meta(councilHolding).WRITE(),
		)
	}

	if program.supportsAddin() {
		realmConfig, err := RealmConfigAddress(program.ID, realm)
		if err != nil {
			return solana.PublicKey{}, err
		}
		accounts = append(accounts, solana.Meta(realmConfig).WRITE())
		if args.CommunityVoterWeightAddin != nil {
			accounts = append(accounts, solana.Meta(*args.CommunityVoterWeightAddin))
		}
	}

	config := RealmConfigArgs{
		UseCouncilMint:                       args.CouncilMint != nil,
		MinCommunityTokensToCreateGovernance: args.MinCommunityTokensToCreateGovernance,
		CommunityMintMaxVoteWeightSource:     args.CommunityMintMaxVoteWeightSource,
		UseCommunityVoterWeightAddin:         args.CommunityVoterWeightAddin != nil,
	}
	data, err := encodeData(InstructionCreateRealm, func(encoder *bin.Encoder) error {
		if err := writeString(encoder, args.Name); err != nil {
			return err
		}
		return config.encode(encoder, program.version())
	})
	if err != nil {
		return solana.PublicKey{}, err
	}

	appendInstruction(instructions, program.ID, accounts, data)
	return realm, nil
}
