package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"realms-cli/realms"
)

var historyFlags struct {
	limit int
	owner string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent governance transactions of the wallet or an owner",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newReadOnlyClient()
		if err != nil {
			return err
		}
		var owner solana.PublicKey
		if historyFlags.owner != "" {
			if owner, err = parseKey("owner", historyFlags.owner); err != nil {
				return err
			}
		} else {
			wallet, err := currentWallet()
			if err != nil {
				return err
			}
			owner = wallet.PublicKey()
		}
		return showHistory(cmd.Context(), client, owner, historyFlags.limit)
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyFlags.limit, "limit", realms.DefaultHistoryLimit, "number of recent signatures to inspect")
	historyCmd.Flags().StringVar(&historyFlags.owner, "owner", "", "owner to inspect instead of the wallet")
	rootCmd.AddCommand(historyCmd)
}

func showHistory(ctx context.Context, client *realms.Client, owner solana.PublicKey, limit int) error {
	fmt.Println(promptStyle.Render("\nFetching transaction history... Please wait."))
	events, err := client.History(ctx, owner, limit)
	if err != nil {
		return fmt.Errorf("failed to fetch history: %w", err)
	}
	if jsonOutput {
		return printJSON(events)
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("📜 %d governance transactions", len(events))))
	for _, event := range events {
		status := ""
		if event.Failed {
			status = warningStyle.Render(" failed")
		}
		fmt.Printf("%s %s%s\n   %s\n",
			labelStyle.Render(event.Timestamp.UTC().Format(time.DateTime)),
			event.Signature,
			status,
			infoStyle.Render(strings.Join(event.Instructions, ", ")),
		)
	}
	return nil
}
