package governance

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/text/format"
	"github.com/gagliardetto/treeout"
)

const ProgramName = "Governance"

var accountLabels = map[uint8][]string{
	InstructionCreateRealm: {
		"realm", "realmAuthority", "communityMint", "communityHolding", "payer",
		"systemProgram", "tokenProgram", "rent",
	},
	InstructionDepositGoverningTokens: {
		"realm", "holding", "source", "owner", "transferAuthority", "tokenOwnerRecord",
		"payer", "systemProgram", "tokenProgram", "rent",
	},
	InstructionWithdrawGoverningTokens: {
		"realm", "holding", "destination", "owner", "tokenOwnerRecord", "tokenProgram",
	},
	InstructionCreateAccountGovernance: {
		"realm", "governance", "governedAccount", "tokenOwnerRecord", "payer",
		"systemProgram", "rent", "governanceAuthority", "realmConfig", "voterWeightRecord",
	},
	InstructionCreateProgramGovernance: {
		"realm", "governance", "governedProgram", "programData", "upgradeAuthority",
		"tokenOwnerRecord", "payer", "bpfLoaderUpgradeable", "systemProgram", "rent",
		"governanceAuthority", "realmConfig", "voterWeightRecord",
	},
	InstructionCreateMintGovernance: {
		"realm", "governance", "governedMint", "mintAuthority", "tokenOwnerRecord", "payer",
		"tokenProgram", "systemProgram", "rent", "governanceAuthority", "realmConfig",
		"voterWeightRecord",
	},
	InstructionCreateTokenGovernance: {
		"realm", "governance", "governedToken", "tokenOwner", "tokenOwnerRecord", "payer",
		"tokenProgram", "systemProgram", "rent", "governanceAuthority", "realmConfig",
		"voterWeightRecord",
	},
	InstructionAddSignatory: {
		"proposal", "tokenOwnerRecord", "governanceAuthority", "signatoryRecord", "payer",
		"systemProgram", "rent",
	},
	InstructionSignOffProposal: {
		"proposal", "signatoryRecord", "signatory", "clock",
	},
	InstructionCreateProposal: {
		"realm", "proposal", "governance", "tokenOwnerRecord", "governingTokenMint",
		"governanceAuthority", "payer", "systemProgram", "rent", "clock", "realmConfig",
		"voterWeightRecord",
	},
	InstructionCastVote: {
		"realm", "governance", "proposal", "proposalOwnerRecord", "voterTokenOwnerRecord",
		"governanceAuthority", "voteRecord", "governingTokenMint", "payer", "systemProgram",
		"rent", "clock", "realmConfig", "voterWeightRecord",
	},
}

// Describe renders instructions as a tree. Governance instructions get named
// accounts; anything else is listed by program and position.
func Describe(program Program, instructions []solana.Instruction) string {
	tree := treeout.New("Instructions")
	for i, ix := range instructions {
		data, _ := ix.Data()
		accounts := ix.Accounts()

		programName, name := "Program", fmt.Sprintf("#%d", i)
		var labels []string
		if ix.ProgramID().Equals(program.ID) {
			programName, name = ProgramName, InstructionName(data)
			if len(data) > 0 {
				labels = labelsFor(program, data[0])
			}
		}

		tree.Child(format.Program(programName, ix.ProgramID())).
			ParentFunc(func(programBranch treeout.Branches) {
				programBranch.Child(format.Instruction(name)).
					ParentFunc(func(instructionBranch treeout.Branches) {
						instructionBranch.Child(format.Param("Data", fmt.Sprintf("%x", data)))
						instructionBranch.Child(fmt.Sprintf("Accounts[len=%d]", len(accounts))).
							ParentFunc(func(accountsBranch treeout.Branches) {
								for j, meta := range accounts {
									label := fmt.Sprintf("account[%d]", j)
									if j < len(labels) {
										label = labels[j]
									}
									accountsBranch.Child(format.Meta(label, meta))
								}
							})
					})
			})
	}
	return tree.String()
}

func labelsFor(program Program, tag uint8) []string {
	labels := accountLabels[tag]
	if tag == InstructionCreateProposal && program.version() < ProgramVersionV2 {
		// no governing token mint account before version 2
		return append(append([]string{}, labels[:4]...), labels[5:]...)
	}
	return labels
}
