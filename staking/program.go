package staking

import (
	"github.com/gagliardetto/solana-go"
)

var (
	// DefaultStakeProgramID is the staking program holding stake accounts and pools.
	DefaultStakeProgramID = solana.MustPublicKeyFromBase58("3dKaLtaqF1yzRYxT3KygG8vtw2KzVyxMttmEyfswB8HQ")
	// DefaultRegistryProgramID is the voter weight addin that owns voter weight records.
	DefaultRegistryProgramID = solana.MustPublicKeyFromBase58("BtA1aTCMnmyvXSvyLn1BT58WrHww5ho1RcuP8nxURvQw")
)

var seedStakePoolTokenAccount = []byte("stake_pool_token_account")

// InstructionRevise is the registry instruction that refreshes a voter weight record.
const InstructionRevise uint8 = 0

// VoterWeightRecordAddress returns the voter weight record of owner for a realm's
// community mint.
func VoterWeightRecordAddress(registryProgramID, realm, communityMint, owner solana.PublicKey) (solana.PublicKey, error) {
	pk, _, err := solana.FindProgramAddress(
		[][]byte{
			realm.Bytes(),
			communityMint.Bytes(),
			owner.Bytes(),
		},
		registryProgramID,
	)
	return pk, err
}

// StakePoolTokenAccountAddress returns the token account that holds a pool's stake.
func StakePoolTokenAccountAddress(stakeProgramID, pool solana.PublicKey) (solana.PublicKey, error) {
	pk, _, err := solana.FindProgramAddress(
		[][]byte{
			seedStakePoolTokenAccount,
			pool.Bytes(),
		},
		stakeProgramID,
	)
	return pk, err
}
