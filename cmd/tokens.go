package cmd

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"realms-cli/governance"
	"realms-cli/realms"
)

var tokenFlags struct {
	realm  string
	mint   string
	amount string
	owner  string
}

var depositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "Deposit governing tokens into a realm",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient()
		if err != nil {
			return err
		}
		return depositTokens(cmd.Context(), client, tokenFlags.realm, tokenFlags.mint, tokenFlags.amount)
	},
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Withdraw all governing tokens of the wallet from a realm",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient()
		if err != nil {
			return err
		}
		realm, mint, err := realmMint(cmd.Context(), client, tokenFlags.realm, tokenFlags.mint)
		if err != nil {
			return err
		}
		result, err := client.WithdrawGoverningTokens(cmd.Context(), realm, mint)
		if err != nil {
			return fmt.Errorf("withdrawal failed: %w", err)
		}
		printResult(client, result)
		return nil
	},
}

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List token owner records of a realm mint, or of an owner across realms",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newReadOnlyClient()
		if err != nil {
			return err
		}

		var listing *realms.Listing[*governance.TokenOwnerRecord]
		switch {
		case tokenFlags.owner != "":
			owner, err := parseKey("owner", tokenFlags.owner)
			if err != nil {
				return err
			}
			listing, err = client.FetchWalletTokenOwnerRecords(cmd.Context(), owner)
			if err != nil {
				return fmt.Errorf("failed to fetch token owner records: %w", err)
			}
		case tokenFlags.realm != "":
			realm, mint, err := realmMint(cmd.Context(), client, tokenFlags.realm, tokenFlags.mint)
			if err != nil {
				return err
			}
			listing, err = client.FetchTokenOwnerRecords(cmd.Context(), realm, mint)
			if err != nil {
				return fmt.Errorf("failed to fetch token owner records: %w", err)
			}
		default:
			return fmt.Errorf("either --realm or --owner is required")
		}

		if jsonOutput {
			return printJSON(listing)
		}
		fmt.Println(titleStyle.Render(fmt.Sprintf("🪙 %d token owner records", len(listing.Items))))
		for _, item := range listing.Items {
			record := item.Account
			fmt.Printf("%s %s %s\n",
				labelStyle.Render(record.GoverningTokenOwner.String()[:8]+"..."),
				item.Address,
				promptStyle.Render(fmt.Sprintf("deposit %d, %d votes, %d open proposals",
					record.GoverningTokenDepositAmount, record.TotalVotesCount, record.OutstandingProposalCount)),
			)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{depositCmd, withdrawCmd, recordsCmd} {
		c.Flags().StringVar(&tokenFlags.realm, "realm", "", "realm name or address")
		c.Flags().StringVar(&tokenFlags.mint, "mint", "", "governing token mint (default community mint)")
	}
	depositCmd.Flags().StringVar(&tokenFlags.amount, "amount", "", "amount in whole tokens, e.g. 12.5")
	recordsCmd.Flags().StringVar(&tokenFlags.owner, "owner", "", "list the records of this owner across all realms")
	_ = depositCmd.MarkFlagRequired("realm")
	_ = depositCmd.MarkFlagRequired("amount")
	_ = withdrawCmd.MarkFlagRequired("realm")

	rootCmd.AddCommand(depositCmd, withdrawCmd, recordsCmd)
}

// realmMint resolves the realm argument and the governing mint, defaulting to the
// realm's community mint.
func realmMint(ctx context.Context, client *realms.Client, realmArg, mintArg string) (solana.PublicKey, solana.PublicKey, error) {
	address, realm, err := resolveRealm(ctx, client, realmArg)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, fmt.Errorf("failed to fetch realm: %w", err)
	}
	if mintArg == "" {
		return address, realm.CommunityMint, nil
	}
	mint, err := parseKey("mint", mintArg)
	return address, mint, err
}

func depositTokens(ctx context.Context, client *realms.Client, realmArg, mintArg, amountArg string) error {
	realm, mint, err := realmMint(ctx, client, realmArg, mintArg)
	if err != nil {
		return err
	}
	mintAccount, err := client.FetchMint(ctx, mint)
	if err != nil {
		return fmt.Errorf("failed to fetch mint: %w", err)
	}
	amount, err := realms.ParseAmount(amountArg, mintAccount.Decimals)
	if err != nil {
		return err
	}
	record, result, err := client.DepositGoverningTokens(ctx, realm, mint, amount)
	if err != nil {
		return fmt.Errorf("deposit failed: %w", err)
	}
	printResult(client, result)
	printField("Token owner record", record)
	return nil
}
