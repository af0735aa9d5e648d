package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"realms-cli/governance"
	"realms-cli/realms"
)

var realmsCmd = &cobra.Command{
	Use:   "realms",
	Short: "List every realm of the governance program",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newReadOnlyClient()
		if err != nil {
			return err
		}
		return listRealms(cmd.Context(), client)
	},
}

var realmCmd = &cobra.Command{
	Use:   "realm",
	Short: "Show or create a realm",
}

var realmShowCmd = &cobra.Command{
	Use:   "show <name|address>",
	Short: "Show a realm and its governances",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newReadOnlyClient()
		if err != nil {
			return err
		}
		return showRealm(cmd.Context(), client, args[0])
	},
}

var createRealmFlags struct {
	name          string
	communityMint string
	councilMint   string
	minTokens     uint64
	stakingAddin  bool
}

var realmCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a realm with the wallet as its authority",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		params := realms.CreateRealmParams{
			Name:                                 createRealmFlags.name,
			MinCommunityTokensToCreateGovernance: createRealmFlags.minTokens,
			UseStakingAddin:                      createRealmFlags.stakingAddin,
		}
		var err error
		if params.CommunityMint, err = parseKey("community mint", createRealmFlags.communityMint); err != nil {
			return err
		}
		if createRealmFlags.councilMint != "" {
			council, err := parseKey("council mint", createRealmFlags.councilMint)
			if err != nil {
				return err
			}
			params.CouncilMint = &council
		}

		client, _, err := newClient()
		if err != nil {
			return err
		}
		return createRealm(cmd.Context(), client, params)
	},
}

func init() {
	f := realmCreateCmd.Flags()
	f.StringVar(&createRealmFlags.name, "name", "", "realm name")
	f.StringVar(&createRealmFlags.communityMint, "community-mint", "", "community token mint")
	f.StringVar(&createRealmFlags.councilMint, "council-mint", "", "optional council token mint")
	f.Uint64Var(&createRealmFlags.minTokens, "min-tokens", 1, "community tokens required to create a governance")
	f.BoolVar(&createRealmFlags.stakingAddin, "staking-addin", false, "take community voter weight from the staking registry")
	_ = realmCreateCmd.MarkFlagRequired("name")
	_ = realmCreateCmd.MarkFlagRequired("community-mint")

	realmCmd.AddCommand(realmShowCmd, realmCreateCmd)
	rootCmd.AddCommand(realmsCmd, realmCmd)
}

func listRealms(ctx context.Context, client *realms.Client) error {
	listing, err := client.FetchRealms(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch realms: %w", err)
	}
	if jsonOutput {
		return printJSON(listing)
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("🏛  %d realms", len(listing.Items))))
	for _, item := range listing.Items {
		addin := ""
		if item.Account.Config.UseCommunityVoterWeightAddin {
			addin = infoStyle.Render(" [staking addin]")
		}
		fmt.Printf("%s %s%s\n", labelStyle.Render(item.Account.Name), item.Address, addin)
	}
	if listing.Skipped > 0 {
		fmt.Println(warningStyle.Render(fmt.Sprintf("%d accounts could not be decoded", listing.Skipped)))
	}
	return nil
}

// resolveRealm accepts a realm address or a realm name.
func resolveRealm(ctx context.Context, client *realms.Client, arg string) (solana.PublicKey, *governance.Realm, error) {
	if address, err := solana.PublicKeyFromBase58(arg); err == nil {
		realm, err := client.FetchRealm(ctx, address)
		return address, realm, err
	}
	return client.FetchRealmByName(ctx, arg)
}

func showRealm(ctx context.Context, client *realms.Client, arg string) error {
	address, realm, err := resolveRealm(ctx, client, arg)
	if err != nil {
		return fmt.Errorf("failed to fetch realm: %w", err)
	}
	governances, err := client.FetchGovernances(ctx, address)
	if err != nil {
		return fmt.Errorf("failed to fetch governances: %w", err)
	}
	var config *governance.RealmConfigAccount
	if client.Program().Version >= governance.ProgramVersionV2 {
		config, err = client.FetchRealmConfig(ctx, address)
		if err != nil && !errors.Is(err, governance.ErrAccountNotFound) {
			return fmt.Errorf("failed to fetch realm config: %w", err)
		}
	}

	if jsonOutput {
		return printJSON(map[string]any{
			"address":     address,
			"realm":       realm,
			"config":      config,
			"governances": governances,
		})
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("🏛  %s", realm.Name)))
	printField("Address", address)
	printField("Community mint", realm.CommunityMint)
	printField("Council mint", optionalKey(realm.Config.CouncilMint))
	printField("Authority", optionalKey(realm.Authority))
	printField("Min tokens for governance", realm.Config.MinCommunityTokensToCreateGovernance)
	printField("Staking addin", realm.Config.UseCommunityVoterWeightAddin)
	if config != nil {
		printField("Voter weight addin", optionalKey(config.CommunityVoterWeightAddin))
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("Governances (%d)", len(governances.Items))))
	for _, item := range governances.Items {
		fmt.Printf("%s %s %s\n",
			labelStyle.Render(item.Account.AccountType.String()),
			item.Address,
			promptStyle.Render(fmt.Sprintf("governs %s, %d proposals", item.Account.GovernedAccount, item.Account.ProposalsCount)),
		)
	}
	return nil
}

func createRealm(ctx context.Context, client *realms.Client, params realms.CreateRealmParams) error {
	address, result, err := client.CreateRealm(ctx, params)
	if err != nil {
		return fmt.Errorf("realm creation failed: %w", err)
	}
	printResult(client, result)
	printField("Realm", address)
	return nil
}
