package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"realms-cli/governance"
	"realms-cli/realms"
)

var proposalsCmd = &cobra.Command{
	Use:   "proposals <governance>",
	Short: "List the proposals of a governance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		governanceAddress, err := parseKey("governance", args[0])
		if err != nil {
			return err
		}
		client, err := newReadOnlyClient()
		if err != nil {
			return err
		}
		listing, err := client.FetchProposals(cmd.Context(), governanceAddress)
		if err != nil {
			return fmt.Errorf("failed to fetch proposals: %w", err)
		}
		if jsonOutput {
			return printJSON(listing)
		}
		fmt.Println(titleStyle.Render(fmt.Sprintf("🗳  %d proposals", len(listing.Items))))
		for _, item := range listing.Items {
			fmt.Printf("%s %s %s\n",
				labelStyle.Render(item.Account.State.String()),
				item.Address,
				promptStyle.Render(item.Account.Name),
			)
		}
		return nil
	},
}

var proposalCmd = &cobra.Command{
	Use:   "proposal",
	Short: "Show, create and sign off proposals",
}

var proposalShowCmd = &cobra.Command{
	Use:   "show <proposal>",
	Short: "Show a proposal with its signatories and votes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newReadOnlyClient()
		if err != nil {
			return err
		}
		return showProposal(cmd.Context(), client, args[0])
	},
}

var createProposalFlags struct {
	governance string
	name       string
	link       string
	mint       string
	options    []string
	maxChoices uint16
	deny       bool
}

var proposalCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a proposal and sign up the wallet as its signatory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		governanceAddress, err := parseKey("governance", createProposalFlags.governance)
		if err != nil {
			return err
		}
		params := realms.CreateProposalParams{
			Governance:      governanceAddress,
			Name:            createProposalFlags.name,
			DescriptionLink: createProposalFlags.link,
			Options:         createProposalFlags.options,
			UseDenyOption:   createProposalFlags.deny,
		}
		if createProposalFlags.maxChoices > 1 {
			params.VoteType = governance.VoteType{Kind: governance.VoteTypeMultiChoice, MaxChoices: createProposalFlags.maxChoices}
		}
		if createProposalFlags.mint != "" {
			mint, err := parseKey("mint", createProposalFlags.mint)
			if err != nil {
				return err
			}
			params.Mint = &mint
		}

		client, _, err := newClient()
		if err != nil {
			return err
		}
		return createProposal(cmd.Context(), client, params)
	},
}

var proposalSignOffCmd = &cobra.Command{
	Use:   "sign-off <proposal>",
	Short: "Sign off a proposal as the wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		proposal, err := parseKey("proposal", args[0])
		if err != nil {
			return err
		}
		client, _, err := newClient()
		if err != nil {
			return err
		}
		result, err := client.SignOffProposal(cmd.Context(), proposal)
		if err != nil {
			return fmt.Errorf("sign off failed: %w", err)
		}
		printResult(client, result)
		return nil
	},
}

var voteCmd = &cobra.Command{
	Use:   "vote <proposal> <yes|no>",
	Short: "Vote on a proposal, revising the staking voter weight first when the realm uses it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		proposal, err := parseKey("proposal", args[0])
		if err != nil {
			return err
		}
		vote, err := parseVote(args[1])
		if err != nil {
			return err
		}
		client, _, err := newClient()
		if err != nil {
			return err
		}
		return castVote(cmd.Context(), client, proposal.String(), vote)
	},
}

func init() {
	f := proposalCreateCmd.Flags()
	f.StringVar(&createProposalFlags.governance, "governance", "", "governance address")
	f.StringVar(&createProposalFlags.name, "name", "", "proposal name")
	f.StringVar(&createProposalFlags.link, "link", "", "description link")
	f.StringVar(&createProposalFlags.mint, "mint", "", "governing token mint (default community mint)")
	f.StringArrayVar(&createProposalFlags.options, "option", nil, "vote option label, repeatable (default a single Approve option with deny)")
	f.Uint16Var(&createProposalFlags.maxChoices, "max-choices", 0, "make the proposal multiple choice with up to this many choices")
	f.BoolVar(&createProposalFlags.deny, "deny", false, "add a deny option next to the given options")
	_ = proposalCreateCmd.MarkFlagRequired("governance")
	_ = proposalCreateCmd.MarkFlagRequired("name")

	proposalCmd.AddCommand(proposalShowCmd, proposalCreateCmd, proposalSignOffCmd)
	rootCmd.AddCommand(proposalsCmd, proposalCmd, voteCmd)
}

func parseVote(s string) (governance.YesNoVote, error) {
	switch strings.ToLower(s) {
	case "yes", "y", "approve":
		return governance.YesNoVoteYes, nil
	case "no", "n", "deny":
		return governance.YesNoVoteNo, nil
	}
	return 0, fmt.Errorf("invalid vote %q, want yes or no", s)
}

func formatTime(ts *int64) string {
	if ts == nil {
		return "-"
	}
	return time.Unix(*ts, 0).UTC().Format(time.RFC3339)
}

func showProposal(ctx context.Context, client *realms.Client, arg string) error {
	address, err := parseKey("proposal", arg)
	if err != nil {
		return err
	}
	proposal, err := client.FetchProposal(ctx, address)
	if err != nil {
		return fmt.Errorf("failed to fetch proposal: %w", err)
	}
	signatories, err := client.FetchSignatoryRecords(ctx, address)
	if err != nil {
		return fmt.Errorf("failed to fetch signatories: %w", err)
	}
	votes, err := client.FetchVoteRecords(ctx, address)
	if err != nil {
		return fmt.Errorf("failed to fetch votes: %w", err)
	}

	if jsonOutput {
		return printJSON(map[string]any{
			"address":     address,
			"proposal":    proposal,
			"signatories": signatories,
			"votes":       votes,
		})
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("🗳  %s", proposal.Name)))
	printField("Address", address)
	printField("State", proposal.State)
	printField("Governance", proposal.Governance)
	printField("Governing token mint", proposal.GoverningTokenMint)
	printField("Description", proposal.DescriptionLink)
	printField("Drafted", formatTime(&proposal.DraftAt))
	printField("Voting started", formatTime(proposal.VotingAt))
	printField("Voting completed", formatTime(proposal.VotingCompletedAt))
	for _, option := range proposal.Options {
		printField("Option "+option.Label, option.VoteWeight)
	}
	if proposal.DenyVoteWeight != nil {
		printField("Deny", *proposal.DenyVoteWeight)
	}
	printField("Signed off", fmt.Sprintf("%d of %d", proposal.SignatoriesSignedOffCount, proposal.SignatoriesCount))

	fmt.Println(titleStyle.Render(fmt.Sprintf("Signatories (%d)", len(signatories.Items))))
	for _, item := range signatories.Items {
		printField(item.Account.Signatory.String(), fmt.Sprintf("signed off: %t", item.Account.SignedOff))
	}
	fmt.Println(titleStyle.Render(fmt.Sprintf("Votes (%d)", len(votes.Items))))
	for _, item := range votes.Items {
		printField(item.Account.GoverningTokenOwner.String(), describeVote(item.Account))
	}
	return nil
}

func createProposal(ctx context.Context, client *realms.Client, params realms.CreateProposalParams) error {
	address, result, err := client.CreateProposal(ctx, params)
	if err != nil {
		return fmt.Errorf("proposal creation failed: %w", err)
	}
	printResult(client, result)
	printField("Proposal", address)
	return nil
}

func castVote(ctx context.Context, client *realms.Client, proposal string, vote governance.YesNoVote) error {
	address, err := parseKey("proposal", proposal)
	if err != nil {
		return err
	}
	result, err := client.CastVote(ctx, address, vote)
	if err != nil {
		return fmt.Errorf("vote failed: %w", err)
	}
	printResult(client, result)
	return nil
}

func describeVote(record *governance.VoteRecord) string {
	choice := "no"
	if record.Yes {
		choice = "yes"
	}
	if len(record.Vote.Approved) > 1 {
		ranks := make([]string, 0, len(record.Vote.Approved))
		for _, c := range record.Vote.Approved {
			ranks = append(ranks, fmt.Sprintf("%d:%d%%", c.Rank, c.WeightPercentage))
		}
		choice = "approve " + strings.Join(ranks, " ")
	}
	if record.IsRelinquished {
		choice += " (relinquished)"
	}
	return fmt.Sprintf("%s with weight %d", choice, record.VoterWeight)
}
