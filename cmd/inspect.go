package cmd

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
)

var inspectRaw bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <address>",
	Short: "Decode any governance account by its type byte",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		address, err := parseKey("account", args[0])
		if err != nil {
			return err
		}
		client, err := newReadOnlyClient()
		if err != nil {
			return err
		}
		account, data, err := client.FetchAccount(cmd.Context(), address)
		if err != nil && data == nil {
			return fmt.Errorf("failed to fetch account: %w", err)
		}
		if err != nil {
			fmt.Println(warningStyle.Render(fmt.Sprintf("Failed to decode account: %v", err)))
			inspectRaw = true
		}

		if account != nil {
			if jsonOutput {
				return printJSON(account)
			}
			fmt.Println(titleStyle.Render(fmt.Sprintf("🔍 %s %s", account.Type(), address)))
			spew.Dump(account)
		}
		if inspectRaw {
			fmt.Println(titleStyle.Render(fmt.Sprintf("Raw data (%d bytes)", len(data))))
			spew.Dump(data)
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectRaw, "raw", false, "also dump the raw account data")
	rootCmd.AddCommand(inspectCmd)
}
