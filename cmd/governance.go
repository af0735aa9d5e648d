package cmd

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"realms-cli/governance"
	"realms-cli/realms"
)

var governancesCmd = &cobra.Command{
	Use:   "governances <realm>",
	Short: "List the governances of a realm",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newReadOnlyClient()
		if err != nil {
			return err
		}
		address, _, err := resolveRealm(cmd.Context(), client, args[0])
		if err != nil {
			return fmt.Errorf("failed to fetch realm: %w", err)
		}
		listing, err := client.FetchGovernances(cmd.Context(), address)
		if err != nil {
			return fmt.Errorf("failed to fetch governances: %w", err)
		}
		if jsonOutput {
			return printJSON(listing)
		}
		for _, item := range listing.Items {
			fmt.Println(titleStyle.Render(fmt.Sprintf("%s %s", item.Account.AccountType, item.Address)))
			printGovernance(item.Account)
		}
		return nil
	},
}

var governanceCmd = &cobra.Command{
	Use:   "governance",
	Short: "Register governances",
}

var registerFlags struct {
	kind              string
	realm             string
	governed          string
	mint              string
	threshold         uint8
	minTokens         uint64
	minCouncilTokens  uint64
	holdUpTime        uint32
	maxVotingTime     uint32
	transferAuthority bool
}

var governanceRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register an account, program, mint or token governance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := governance.GovernanceKind(registerFlags.kind)
		if !slices.Contains(governance.GovernanceKinds, kind) {
			return fmt.Errorf("unknown governance kind %q, want one of %v", registerFlags.kind, governance.GovernanceKinds)
		}
		client, _, err := newClient()
		if err != nil {
			return err
		}
		realm, _, err := resolveRealm(cmd.Context(), client, registerFlags.realm)
		if err != nil {
			return fmt.Errorf("failed to fetch realm: %w", err)
		}
		governed, err := parseKey("governed account", registerFlags.governed)
		if err != nil {
			return err
		}

		params := realms.RegisterGovernanceParams{
			Kind:              kind,
			Realm:             realm,
			Governed:          governed,
			TransferAuthority: registerFlags.transferAuthority,
			Config: governance.GovernanceConfig{
				VoteThresholdPercentage: governance.VoteThresholdPercentage{
					Type:  governance.VoteThresholdYesVote,
					Value: registerFlags.threshold,
				},
				MinCommunityTokensToCreateProposal: registerFlags.minTokens,
				MinInstructionHoldUpTime:           registerFlags.holdUpTime,
				MaxVotingTime:                      registerFlags.maxVotingTime,
				MinCouncilTokensToCreateProposal:   registerFlags.minCouncilTokens,
			},
		}
		if registerFlags.mint != "" {
			mint, err := parseKey("mint", registerFlags.mint)
			if err != nil {
				return err
			}
			params.Mint = &mint
		}
		return registerGovernance(cmd.Context(), client, params)
	},
}

func init() {
	f := governanceRegisterCmd.Flags()
	f.StringVar(&registerFlags.kind, "kind", string(governance.GovernanceKindAccount), "governance kind: account, program, mint or token")
	f.StringVar(&registerFlags.realm, "realm", "", "realm name or address")
	f.StringVar(&registerFlags.governed, "governed", "", "governed account, program, mint or token account")
	f.StringVar(&registerFlags.mint, "mint", "", "governing token mint of the wallet's token owner record (default community mint)")
	f.Uint8Var(&registerFlags.threshold, "threshold", 60, "yes vote threshold in percent")
	f.Uint64Var(&registerFlags.minTokens, "min-tokens", 1, "community tokens required to create a proposal")
	f.Uint64Var(&registerFlags.minCouncilTokens, "min-council-tokens", 1, "council tokens required to create a proposal")
	f.Uint32Var(&registerFlags.holdUpTime, "hold-up-time", 0, "minimum instruction hold up time in seconds")
	f.Uint32Var(&registerFlags.maxVotingTime, "max-voting-time", 3*24*60*60, "maximum voting time in seconds")
	f.BoolVar(&registerFlags.transferAuthority, "transfer-authority", true, "hand the governed authority to the governance")
	_ = governanceRegisterCmd.MarkFlagRequired("realm")
	_ = governanceRegisterCmd.MarkFlagRequired("governed")

	governanceCmd.AddCommand(governanceRegisterCmd)
	rootCmd.AddCommand(governancesCmd, governanceCmd)
}

func printGovernance(g *governance.Governance) {
	printField("Realm", g.Realm)
	printField("Governed account", g.GovernedAccount)
	printField("Proposals", g.ProposalsCount)
	printField("Yes vote threshold", fmt.Sprintf("%d%%", g.Config.VoteThresholdPercentage.Value))
	printField("Min tokens for proposal", g.Config.MinCommunityTokensToCreateProposal)
	printField("Max voting time", fmt.Sprintf("%ds", g.Config.MaxVotingTime))
}

func registerGovernance(ctx context.Context, client *realms.Client, params realms.RegisterGovernanceParams) error {
	address, result, err := client.RegisterGovernance(ctx, params)
	if err != nil {
		return fmt.Errorf("governance registration failed: %w", err)
	}
	printResult(client, result)
	printField("Governance", address)
	return nil
}
