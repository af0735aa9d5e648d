package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/gagliardetto/solana-go"

	"realms-cli/governance"
	"realms-cli/realms"
	"realms-cli/storage"
)

var errUserExited = errors.New("user exited")

// runProfileSelection handles the UI for choosing or creating a wallet profile.
func runProfileSelection() (*storage.Wallet, error) {
	db, err := storage.NewWalletStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet storage: %w", err)
	}

	for {
		profiles, err := db.GetAllWalletNames()
		if err != nil {
			return nil, fmt.Errorf("failed to get wallet profiles: %w", err)
		}
		if len(profiles) == 0 {
			fmt.Println(titleStyle.Render("🚀 Welcome to Realms! Let's get you set up."))
			handleCreateProfile(db, defaultProfile)
			continue
		}

		options := append(profiles, "Create New Profile", "Exit")
		selection := ""
		prompt := &survey.Select{
			Message: promptStyle.Render("Choose a profile to continue:"),
			Options: options,
		}
		if err := survey.AskOne(prompt, &selection); err != nil {
			return nil, errUserExited
		}

		switch selection {
		case "Create New Profile":
			name := ""
			namePrompt := &survey.Input{Message: "Enter a name for the new profile:"}
			if err := survey.AskOne(namePrompt, &name, survey.WithValidator(survey.Required)); err != nil {
				continue
			}
			handleCreateProfile(db, name)
		case "Exit":
			return nil, errUserExited
		default:
			return db.GetWallet(selection)
		}
	}
}

func handleCreateProfile(db *storage.WalletStorage, name string) {
	fmt.Println(promptStyle.Render(fmt.Sprintf("\nCreating new %s wallet...", name)))
	wallet, err := db.CreateWallet(name)
	if err != nil {
		printFailure("Profile creation", err)
		return
	}
	printProfileCreated(wallet)
}

// runInteractive shows the action menu until the user switches profile.
func runInteractive(ctx context.Context, wallet *storage.Wallet) {
	client, err := newClientFor(wallet)
	if err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("Failed to create Solana client: %v", err)))
		return
	}

	fmt.Printf("\n---\n")
	fmt.Println(titleStyle.Render(fmt.Sprintf("Operating with profile: %s", wallet.Name)))
	fmt.Println(promptStyle.Render(fmt.Sprintf("Address: %s", wallet.PublicKey())))
	fmt.Printf("---\n\n")

	menu := &survey.Select{
		Message: promptStyle.Render("Choose an action:"),
		Options: []string{
			"List Realms",
			"Show Realm",
			"Show Proposal",
			"View Voter Weight",
			"Vote on Proposal",
			"Deposit Governing Tokens",
			"Create Proposal",
			"Transaction History",
			"Wallet Management",
			"Switch Profile",
		},
		Help: "Use the arrow keys to navigate, and press Enter to select.",
	}

	for ctx.Err() == nil {
		var choice string
		if err := survey.AskOne(menu, &choice); err != nil {
			if !errors.Is(err, terminal.InterruptErr) {
				fmt.Println(warningStyle.Render(err.Error()))
			}
			return
		}

		var actionErr error
		switch choice {
		case "List Realms":
			actionErr = listRealms(ctx, client)
		case "Show Realm":
			actionErr = showRealm(ctx, client, ask("Enter the realm name or address:"))
		case "Show Proposal":
			actionErr = showProposal(ctx, client, ask("Enter the proposal address:"))
		case "View Voter Weight":
			actionErr = showWeight(ctx, client, wallet.PublicKey())
		case "Vote on Proposal":
			actionErr = handleVote(ctx, client)
		case "Deposit Governing Tokens":
			actionErr = depositTokens(ctx, client, ask("Enter the realm name or address:"), "", ask("Enter the amount to deposit:"))
		case "Create Proposal":
			actionErr = handleCreateProposal(ctx, client)
		case "Transaction History":
			actionErr = showHistory(ctx, client, wallet.PublicKey(), realms.DefaultHistoryLimit)
		case "Wallet Management":
			handleWalletManagement(ctx, client, wallet)
		case "Switch Profile":
			return
		}
		if actionErr != nil {
			printFailure(choice, actionErr)
		}
		fmt.Println()
	}
}

func ask(message string) string {
	answer := ""
	prompt := &survey.Input{Message: message}
	_ = survey.AskOne(prompt, &answer, survey.WithValidator(survey.Required))
	return answer
}

func handleVote(ctx context.Context, client *realms.Client) error {
	proposal := ask("Enter the proposal address:")
	choice := ""
	prompt := &survey.Select{
		Message: "Your vote:",
		Options: []string{"Yes", "No"},
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return err
	}
	vote := governance.YesNoVoteNo
	if choice == "Yes" {
		vote = governance.YesNoVoteYes
	}
	return castVote(ctx, client, proposal, vote)
}

func handleCreateProposal(ctx context.Context, client *realms.Client) error {
	fmt.Println(promptStyle.Render("\n📝 Create Proposal"))
	governanceAddress, err := parseKey("governance", ask("Enter the governance address:"))
	if err != nil {
		return err
	}
	params := realms.CreateProposalParams{
		Governance: governanceAddress,
		Name:       ask("Enter the proposal name:"),
	}
	linkPrompt := &survey.Input{Message: "Enter the description link (optional):"}
	_ = survey.AskOne(linkPrompt, &params.DescriptionLink)
	return createProposal(ctx, client, params)
}

func handleWalletManagement(ctx context.Context, client *realms.Client, wallet *storage.Wallet) {
	fmt.Println()
	menu := &survey.Select{
		Message: promptStyle.Render("Wallet Management:"),
		Options: []string{"View Address", "View Balance", "Send SOL", "Export Wallet (UNSAFE)", "Back to Main Menu"},
	}
	var choice string
	_ = survey.AskOne(menu, &choice)

	switch choice {
	case "View Address":
		fmt.Println(titleStyle.Render("\n🔑 Your Current Wallet Address:"))
		fmt.Println(wallet.PublicKey().String())
	case "View Balance":
		viewBalance(ctx, client, wallet.PublicKey())
	case "Send SOL":
		sendSol(ctx, client)
	case "Export Wallet (UNSAFE)":
		exportWallet(wallet.PrivateKey)
	case "Back to Main Menu":
		return
	}
}

func viewBalance(ctx context.Context, client *realms.Client, owner solana.PublicKey) {
	fmt.Println(promptStyle.Render("\nChecking balance... Please wait."))
	balanceLamports, err := client.GetBalance(ctx, owner)
	if err != nil {
		printFailure("Balance check", err)
		return
	}
	fmt.Println(titleStyle.Render("\n💰 Your Wallet Balance:"))
	fmt.Printf("   %s SOL\n", lamportsToSol(balanceLamports))
}

func exportWallet(privateKey solana.PrivateKey) {
	fmt.Println(warningStyle.Render("\n⚠️ WARNING: EXPORTING YOUR PRIVATE KEY ⚠️"))
	fmt.Println(promptStyle.Render("Sharing your private key can result in the permanent loss of your funds."))
	confirm := false
	prompt := &survey.Confirm{Message: "Are you absolutely sure?", Default: false}
	_ = survey.AskOne(prompt, &confirm)
	if !confirm {
		fmt.Println(promptStyle.Render("\nExport cancelled."))
		return
	}
	fmt.Println(titleStyle.Render("\n🔐 Your Private Key (Base58):"))
	fmt.Println(privateKey.String())
}

func sendSol(ctx context.Context, client *realms.Client) {
	fmt.Println(promptStyle.Render("\n💸 Send SOL"))
	recipient, err := parseKey("recipient", ask("Enter recipient address:"))
	if err != nil {
		fmt.Println(warningStyle.Render("Invalid recipient address."))
		return
	}
	amountStr := ask("Enter amount of SOL to send:")
	amountLamports, err := solToLamports(amountStr)
	if err != nil {
		fmt.Println(warningStyle.Render("Invalid amount entered."))
		return
	}
	confirm := false
	confirmPrompt := &survey.Confirm{
		Message: fmt.Sprintf("You are about to send %s SOL to %s. Continue?", amountStr, recipient),
		Default: false,
	}
	_ = survey.AskOne(confirmPrompt, &confirm)
	if !confirm {
		fmt.Println(promptStyle.Render("\nSend cancelled."))
		return
	}
	result, err := client.SendSol(ctx, recipient, amountLamports)
	if err != nil {
		printFailure("Send SOL", err)
		return
	}
	printResult(client, result)
}
