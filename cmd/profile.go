package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"realms-cli/realms"
	"realms-cli/storage"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage wallet profiles",
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wallet profiles and their addresses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := storage.NewWalletStorage()
		if err != nil {
			return fmt.Errorf("failed to open wallet storage: %w", err)
		}
		wallets, err := db.GetAllWallets()
		if err != nil {
			return fmt.Errorf("failed to get wallet profiles: %w", err)
		}
		if jsonOutput {
			addresses := make(map[string]string, len(wallets))
			for _, w := range wallets {
				addresses[w.Name] = w.PublicKey().String()
			}
			return printJSON(addresses)
		}
		for _, w := range wallets {
			printField(w.Name, w.PublicKey())
		}
		return nil
	},
}

var profileCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a profile with a fresh keypair",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := storage.NewWalletStorage()
		if err != nil {
			return fmt.Errorf("failed to open wallet storage: %w", err)
		}
		wallet, err := db.CreateWallet(args[0])
		if err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
		printProfileCreated(wallet)
		return nil
	},
}

var profileImportCmd = &cobra.Command{
	Use:   "import <name> <keypair.json>",
	Short: "Import a solana-keygen keypair file as a profile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := storage.NewWalletStorage()
		if err != nil {
			return fmt.Errorf("failed to open wallet storage: %w", err)
		}
		wallet, err := db.ImportKeypairFile(args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to import keypair: %w", err)
		}
		printProfileCreated(wallet)
		return nil
	},
}

var profileAddressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the address and balance of the selected profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, wallet, err := newClient()
		if err != nil {
			return err
		}
		fmt.Println(titleStyle.Render(fmt.Sprintf("🔑 Profile %s", wallet.Name)))
		printField("Address", wallet.PublicKey())
		balance, err := client.GetBalance(cmd.Context(), wallet.PublicKey())
		if err != nil {
			return err
		}
		printField("Balance", lamportsToSol(balance).String()+" SOL")
		return nil
	},
}

var profileFundCmd = &cobra.Command{
	Use:   "fund <recipient> <sol>",
	Short: "Send SOL from the selected profile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		recipient, err := parseKey("recipient", args[0])
		if err != nil {
			return err
		}
		lamports, err := solToLamports(args[1])
		if err != nil {
			return err
		}
		client, _, err := newClient()
		if err != nil {
			return err
		}
		result, err := client.SendSol(cmd.Context(), recipient, lamports)
		if err != nil {
			return fmt.Errorf("failed to send SOL: %w", err)
		}
		printResult(client, result)
		return nil
	},
}

var profileDeleteYes bool

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a profile and its private key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := storage.NewWalletStorage()
		if err != nil {
			return fmt.Errorf("failed to open wallet storage: %w", err)
		}
		wallet, err := db.GetWallet(args[0])
		if err != nil {
			return err
		}
		if !profileDeleteYes {
			fmt.Println(warningStyle.Render("\n⚠️ The private key of this profile cannot be recovered after deletion."))
			confirm := false
			prompt := &survey.Confirm{Message: fmt.Sprintf("Delete profile %s (%s)?", wallet.Name, wallet.PublicKey()), Default: false}
			if err := survey.AskOne(prompt, &confirm); err != nil || !confirm {
				fmt.Println(promptStyle.Render("\nDeletion cancelled."))
				return nil
			}
		}
		if err := db.DeleteWallet(wallet.Name); err != nil {
			return fmt.Errorf("failed to delete profile: %w", err)
		}
		fmt.Println(titleStyle.Render(fmt.Sprintf("\n✅ Profile %s Deleted!", wallet.Name)))
		return nil
	},
}

func init() {
	profileDeleteCmd.Flags().BoolVarP(&profileDeleteYes, "yes", "y", false, "skip the confirmation prompt")
	profileCmd.AddCommand(profileListCmd, profileCreateCmd, profileImportCmd, profileAddressCmd, profileFundCmd, profileDeleteCmd)
	rootCmd.AddCommand(profileCmd)
}

func printProfileCreated(wallet *storage.Wallet) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("\n✅ Profile %s Created!", wallet.Name)))
	fmt.Println(promptStyle.Render("   Your wallet address:"), wallet.PublicKey().String())
}

const solDecimals = 9

func lamportsToSol(lamports uint64) decimal.Decimal {
	return realms.Amount(lamports, solDecimals)
}

func solToLamports(s string) (uint64, error) {
	lamports, err := realms.ParseAmount(s, solDecimals)
	if err != nil {
		return 0, err
	}
	if lamports == 0 {
		return 0, fmt.Errorf("invalid SOL amount %q", s)
	}
	return lamports, nil
}
