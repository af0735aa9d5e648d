package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"realms-cli/realms"
	"realms-cli/staking"
)

var weightCmd = &cobra.Command{
	Use:   "weight [owner]",
	Short: "Show the voter weight an owner derives from their stake",
	Long: `Resolves the bonded stake account of the owner in the staking program and computes
its voting weight from the pool's staking token balance. Defaults to the wallet.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newReadOnlyClient()
		if err != nil {
			return err
		}
		var owner solana.PublicKey
		if len(args) == 1 {
			if owner, err = parseKey("owner", args[0]); err != nil {
				return err
			}
		} else {
			wallet, err := currentWallet()
			if err != nil {
				return err
			}
			owner = wallet.PublicKey()
		}
		return showWeight(cmd.Context(), client, owner)
	},
}

func init() {
	rootCmd.AddCommand(weightCmd)
}

func showWeight(ctx context.Context, client *realms.Client, owner solana.PublicKey) error {
	report, err := client.VoterWeight(ctx, owner)
	if errors.Is(err, staking.ErrNoStakeAccount) {
		fmt.Println(warningStyle.Render(fmt.Sprintf("%s has no bonded stake, voter weight is 0", owner)))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to resolve voter weight: %w", err)
	}
	if jsonOutput {
		return printJSON(report)
	}

	fmt.Println(titleStyle.Render("⚖️  Voter weight"))
	printField("Owner", owner)
	printField("Weight", report.Display)
	printField("Staked in pool", report.Staked)
	printField("Stake account", report.StakeAccount)
	printField("Shares", report.Stake.Shares)
	printField("Stake pool", report.Pool)
	printField("Pool total shares", report.StakePool.TotalShares)
	printField("Staking mint", report.StakePool.StakingMint)
	if report.Skipped > 0 {
		fmt.Println(infoStyle.Render(fmt.Sprintf("%d of %d stake accounts could not be decoded", report.Skipped, report.Candidates)))
	}
	return nil
}
