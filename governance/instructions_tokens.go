package governance

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

type DepositGoverningTokensArgs struct {
	Realm                solana.PublicKey
	GoverningTokenSource solana.PublicKey
	GoverningTokenMint   solana.PublicKey
	GoverningTokenOwner  solana.PublicKey
	TransferAuthority    solana.PublicKey
	Payer                solana.PublicKey
	// Amount is only serialized for program version 2 and later; version 1
	// deposits the whole delegated balance.
	Amount uint64
}

// WithDepositGoverningTokens appends a DepositGoverningTokens instruction and
// returns the token owner record it creates or tops up.
func WithDepositGoverningTokens(instructions *[]solana.Instruction, program Program, args DepositGoverningTokensArgs) (solana.PublicKey, error) {
	tokenOwnerRecord, err := TokenOwnerRecordAddress(program.ID, args.Realm, args.GoverningTokenMint, args.GoverningTokenOwner)
	if err != nil {
		return solana.PublicKey{}, err
	}
	holding, err := GoverningTokenHoldingAddress(program.ID, args.Realm, args.GoverningTokenMint)
	if err != nil {
		return solana.PublicKey{}, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(args.Realm),
		solana.Meta(holding).WRITE(),
		solana.Meta(args.GoverningTokenSource).WRITE(),
		solana.Meta(args.GoverningTokenOwner).SIGNER(),
		solana.Meta(args.TransferAuthority).SIGNER(),
		solana.Meta(tokenOwnerRecord).WRITE(),
		solana.Meta(args.Payer).WRITE().SIGNER(),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(solana.SysVarRentPubkey),
	}

	data, err := encodeData(InstructionDepositGoverningTokens, func(encoder *bin.Encoder) error {
		if program.version() < ProgramVersionV2 {
			return nil
		}
		return encoder.WriteUint64(args.Amount, bin.LE)
	})
	if err != nil {
		return solana.PublicKey{}, err
	}

	appendInstruction(instructions, program.ID, accounts, data)
	return tokenOwnerRecord, nil
}

type WithdrawGoverningTokensArgs struct {
	Realm                     solana.PublicKey
	GoverningTokenDestination solana.PublicKey
	GoverningTokenMint        solana.PublicKey
	GoverningTokenOwner       solana.PublicKey
}

// WithWithdrawGoverningTokens appends a WithdrawGoverningTokens instruction.
func WithWithdrawGoverningTokens(instructions *[]solana.Instruction, program Program, args WithdrawGoverningTokensArgs) error {
	tokenOwnerRecord, err := TokenOwnerRecordAddress(program.ID, args.Realm, args.GoverningTokenMint, args.GoverningTokenOwner)
	if err != nil {
		return err
	}
	holding, err := GoverningTokenHoldingAddress(program.ID, args.Realm, args.GoverningTokenMint)
	if err != nil {
		return err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(args.Realm),
		solana.Meta(holding).WRITE(),
		solana.Meta(args.GoverningTokenDestination).WRITE(),
		solana.Meta(args.GoverningTokenOwner).SIGNER(),
		solana.Meta(tokenOwnerRecord).WRITE(),
		solana.Meta(solana.TokenProgramID),
	}

	data, err := encodeData(InstructionWithdrawGoverningTokens, nil)
	if err != nil {
		return err
	}

	appendInstruction(instructions, program.ID, accounts, data)
	return nil
}
