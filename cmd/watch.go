package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"realms-cli/realms"
)

var watchTypes []string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream governance account changes over websocket until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newReadOnlyClient()
		if err != nil {
			return err
		}
		watcher, err := client.NewWatcher()
		if err != nil {
			return err
		}

		events := watchTypes
		if len(events) == 0 {
			events = []string{realms.EventAny}
		}
		for _, event := range events {
			watcher.On(event, printChange)
		}

		fmt.Println(promptStyle.Render(fmt.Sprintf("Watching %s on %s, press Ctrl+C to stop.", client.Program().ID, watcher.Endpoint)))
		return watcher.Run(cmd.Context())
	},
}

func init() {
	watchCmd.Flags().StringSliceVar(&watchTypes, "type", nil, "only show these account types, e.g. ProposalV2,VoteRecordV2 or removed")
	rootCmd.AddCommand(watchCmd)
}

func printChange(change realms.AccountChange) {
	if jsonOutput {
		_ = printJSON(change)
		return
	}
	switch {
	case change.Removed:
		fmt.Printf("%s %s %s\n", labelStyle.Render(fmt.Sprintf("slot %d", change.Slot)), change.Address, warningStyle.Render("removed"))
	case change.Err != nil:
		fmt.Printf("%s %s %s\n", labelStyle.Render(fmt.Sprintf("slot %d", change.Slot)), change.Address, warningStyle.Render(change.Err.Error()))
	default:
		fmt.Printf("%s %s %s\n", labelStyle.Render(fmt.Sprintf("slot %d", change.Slot)), change.Address, infoStyle.Render(change.Type.String()))
	}
}
