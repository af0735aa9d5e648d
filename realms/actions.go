package realms

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"k8s.io/klog/v2"

	"realms-cli/governance"
	"realms-cli/staking"
)

var (
	// ErrProposalNotVoting is returned when a vote is cast outside the voting window.
	ErrProposalNotVoting = errors.New("proposal is not in the voting state")
	// ErrNoVoterWeight is returned when the wallet's stake yields no voting weight.
	ErrNoVoterWeight = errors.New("wallet has no voter weight")
)

type CreateRealmParams struct {
	Name                                 string
	CommunityMint                        solana.PublicKey
	CouncilMint                          *solana.PublicKey
	MinCommunityTokensToCreateGovernance uint64
	// CommunityMintMaxVoteWeightSource defaults to the full supply.
	CommunityMintMaxVoteWeightSource *governance.MintMaxVoteWeightSource
	// UseStakingAddin registers the configured registry program as the community
	// voter weight addin.
	UseStakingAddin bool
}

// CreateRealm creates a realm with the wallet as its authority.
func (c *Client) CreateRealm(ctx context.Context, params CreateRealmParams) (solana.PublicKey, *Result, error) {
	wallet, err := c.Wallet()
	if err != nil {
		return solana.PublicKey{}, nil, err
	}

	maxVoteWeightSource := governance.FullSupplyFraction
	if params.CommunityMintMaxVoteWeightSource != nil {
		maxVoteWeightSource = *params.CommunityMintMaxVoteWeightSource
	}
	args := governance.CreateRealmArgs{
		Name:                                 params.Name,
		RealmAuthority:                       wallet,
		CommunityMint:                        params.CommunityMint,
		Payer:                                wallet,
		CouncilMint:                          params.CouncilMint,
		CommunityMintMaxVoteWeightSource:     maxVoteWeightSource,
		MinCommunityTokensToCreateGovernance: params.MinCommunityTokensToCreateGovernance,
	}
	if params.UseStakingAddin {
		addin := c.Config.RegistryProgramID
		args.CommunityVoterWeightAddin = &addin
	}

	var instructions []solana.Instruction
	realm, err := governance.WithCreateRealm(&instructions, c.Program(), args)
	if err != nil {
		return solana.PublicKey{}, nil, fmt.Errorf("failed to build create realm: %w", err)
	}

	result, err := c.SendTransaction(ctx, instructions, nil, Labels{
		Progress: "Creating realm",
		Success:  "Realm has been created",
	})
	return realm, result, err
}

// DepositGoverningTokens deposits amount of mint from the wallet's associated token
// account. The transfer is approved to a one-time authority that co-signs.
func (c *Client) DepositGoverningTokens(ctx context.Context, realm, mint solana.PublicKey, amount uint64) (solana.PublicKey, *Result, error) {
	wallet, err := c.Wallet()
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	source, _, err := solana.FindAssociatedTokenAddress(wallet, mint)
	if err != nil {
		return solana.PublicKey{}, nil, fmt.Errorf("failed to find associated token address: %w", err)
	}

	transferAuthority := solana.NewWallet().PrivateKey
	instructions := []solana.Instruction{
		token.NewApproveInstruction(amount, source, transferAuthority.PublicKey(), wallet, nil).Build(),
	}

	tokenOwnerRecord, err := governance.WithDepositGoverningTokens(&instructions, c.Program(), governance.DepositGoverningTokensArgs{
		Realm:                realm,
		GoverningTokenSource: source,
		GoverningTokenMint:   mint,
		GoverningTokenOwner:  wallet,
		TransferAuthority:    transferAuthority.PublicKey(),
		Payer:                wallet,
		Amount:               amount,
	})
	if err != nil {
		return solana.PublicKey{}, nil, fmt.Errorf("failed to build deposit: %w", err)
	}

	result, err := c.SendTransaction(ctx, instructions, []solana.PrivateKey{transferAuthority}, Labels{
		Progress: "Creating token record",
		Success:  "Token record created",
	})
	return tokenOwnerRecord, result, err
}

// WithdrawGoverningTokens returns the wallet's whole deposit of mint to its
// associated token account.
func (c *Client) WithdrawGoverningTokens(ctx context.Context, realm, mint solana.PublicKey) (*Result, error) {
	wallet, err := c.Wallet()
	if err != nil {
		return nil, err
	}
	destination, _, err := solana.FindAssociatedTokenAddress(wallet, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to find associated token address: %w", err)
	}

	var instructions []solana.Instruction
	err = governance.WithWithdrawGoverningTokens(&instructions, c.Program(), governance.WithdrawGoverningTokensArgs{
		Realm:                     realm,
		GoverningTokenDestination: destination,
		GoverningTokenMint:        mint,
		GoverningTokenOwner:       wallet,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build withdraw: %w", err)
	}

	return c.SendTransaction(ctx, instructions, nil, Labels{
		Progress: "Withdrawing governing tokens",
		Success:  "Tokens have been withdrawn",
	})
}

// withRevise prepends a Revise of the wallet's voter weight record when the realm
// uses the staking addin for mint. It returns the record, or nil when no addin applies.
func (c *Client) withRevise(ctx context.Context, instructions *[]solana.Instruction, realmAddress solana.PublicKey, realm *governance.Realm, mint solana.PublicKey) (*solana.PublicKey, *staking.VoterWeight, error) {
	if !realm.Config.UseCommunityVoterWeightAddin || mint != realm.CommunityMint {
		return nil, nil, nil
	}
	wallet, err := c.Wallet()
	if err != nil {
		return nil, nil, err
	}

	weight, err := c.Resolver.Resolve(ctx, wallet)
	if err != nil {
		return nil, weight, fmt.Errorf("failed to resolve voter weight: %w", err)
	}
	record, err := staking.WithRevise(instructions, c.Config.RegistryProgramID, staking.ReviseArgsFor(weight, realmAddress, realm.CommunityMint, wallet))
	if err != nil {
		return nil, weight, fmt.Errorf("failed to build revise: %w", err)
	}
	klog.V(2).Infof("revising voter weight record %s", record)
	return &record, weight, nil
}

type RegisterGovernanceParams struct {
	Kind     governance.GovernanceKind
	Realm    solana.PublicKey
	Governed solana.PublicKey
	Config   governance.GovernanceConfig
	// TransferAuthority hands the governed account's authority to the governance.
	TransferAuthority bool
	// Mint selects the token owner record; defaults to the community mint.
	Mint *solana.PublicKey
}

// RegisterGovernance creates a governance of the given kind over a governed account.
func (c *Client) RegisterGovernance(ctx context.Context, params RegisterGovernanceParams) (solana.PublicKey, *Result, error) {
	wallet, err := c.Wallet()
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	realm, err := c.FetchRealm(ctx, params.Realm)
	if err != nil {
		return solana.PublicKey{}, nil, fmt.Errorf("failed to fetch realm: %w", err)
	}
	mint := realm.CommunityMint
	if params.Mint != nil {
		mint = *params.Mint
	}
	tokenOwnerRecord, err := governance.TokenOwnerRecordAddress(c.Config.Program.ID, params.Realm, mint, wallet)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}

	var instructions []solana.Instruction
	voterWeightRecord, _, err := c.withRevise(ctx, &instructions, params.Realm, realm, mint)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}

	address, err := governance.WithCreateGovernance(&instructions, c.Program(), governance.CreateGovernanceArgs{
		Kind:                params.Kind,
		Realm:               params.Realm,
		Governed:            params.Governed,
		GovernedAuthority:   wallet,
		TransferAuthority:   params.TransferAuthority,
		Config:              params.Config,
		TokenOwnerRecord:    tokenOwnerRecord,
		Payer:               wallet,
		GovernanceAuthority: wallet,
		VoterWeightRecord:   voterWeightRecord,
	})
	if err != nil {
		return solana.PublicKey{}, nil, fmt.Errorf("failed to build %s governance: %w", params.Kind, err)
	}

	result, err := c.SendTransaction(ctx, instructions, nil, Labels{
		Progress: "Registering governance",
		Success:  "Governance has been registered",
	})
	return address, result, err
}

type CreateProposalParams struct {
	Governance      solana.PublicKey
	Name            string
	DescriptionLink string
	// Mint selects the voting population; defaults to the community mint.
	Mint          *solana.PublicKey
	VoteType      governance.VoteType
	Options       []string
	UseDenyOption bool
}

// CreateProposal creates a proposal under a governance and adds the wallet as its
// first signatory.
func (c *Client) CreateProposal(ctx context.Context, params CreateProposalParams) (solana.PublicKey, *Result, error) {
	wallet, err := c.Wallet()
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	gov, err := c.FetchGovernance(ctx, params.Governance)
	if err != nil {
		return solana.PublicKey{}, nil, fmt.Errorf("failed to fetch governance: %w", err)
	}
	realm, err := c.FetchRealm(ctx, gov.Realm)
	if err != nil {
		return solana.PublicKey{}, nil, fmt.Errorf("failed to fetch realm: %w", err)
	}
	mint := realm.CommunityMint
	if params.Mint != nil {
		mint = *params.Mint
	}
	tokenOwnerRecord, err := governance.TokenOwnerRecordAddress(c.Config.Program.ID, gov.Realm, mint, wallet)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}

	var instructions []solana.Instruction
	voterWeightRecord, _, err := c.withRevise(ctx, &instructions, gov.Realm, realm, mint)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}

	useDenyOption := params.UseDenyOption
	if len(params.Options) == 0 {
		// a plain Approve/Deny proposal
		useDenyOption = true
	}
	proposal, err := governance.WithCreateProposal(&instructions, c.Program(), governance.CreateProposalArgs{
		Realm:               gov.Realm,
		Governance:          params.Governance,
		TokenOwnerRecord:    tokenOwnerRecord,
		Name:                params.Name,
		DescriptionLink:     params.DescriptionLink,
		GoverningTokenMint:  mint,
		GovernanceAuthority: wallet,
		ProposalIndex:       gov.ProposalsCount,
		Payer:               wallet,
		VoteType:            params.VoteType,
		Options:             params.Options,
		UseDenyOption:       useDenyOption,
		VoterWeightRecord:   voterWeightRecord,
	})
	if err != nil {
		return solana.PublicKey{}, nil, fmt.Errorf("failed to build create proposal: %w", err)
	}

	_, err = governance.WithAddSignatory(&instructions, c.Program(), governance.AddSignatoryArgs{
		Proposal:            proposal,
		TokenOwnerRecord:    tokenOwnerRecord,
		GovernanceAuthority: wallet,
		Signatory:           wallet,
		Payer:               wallet,
	})
	if err != nil {
		return solana.PublicKey{}, nil, fmt.Errorf("failed to build add signatory: %w", err)
	}

	result, err := c.SendTransaction(ctx, instructions, nil, Labels{
		Progress: "Creating proposal",
		Success:  "Proposal has been created",
	})
	return proposal, result, err
}

// SignOffProposal signs off the proposal as the wallet. Once every signatory has
// signed off, voting starts.
func (c *Client) SignOffProposal(ctx context.Context, proposal solana.PublicKey) (*Result, error) {
	wallet, err := c.Wallet()
	if err != nil {
		return nil, err
	}

	var instructions []solana.Instruction
	if err := governance.WithSignOffProposal(&instructions, c.Program(), proposal, wallet); err != nil {
		return nil, fmt.Errorf("failed to build sign off: %w", err)
	}

	return c.SendTransaction(ctx, instructions, nil, Labels{
		Progress: "Signing off proposal",
		Success:  "Proposal signed off",
	})
}

// CastVote votes yes or no on a proposal with the wallet's token owner record.
func (c *Client) CastVote(ctx context.Context, proposalAddress solana.PublicKey, vote governance.YesNoVote) (*Result, error) {
	wallet, err := c.Wallet()
	if err != nil {
		return nil, err
	}
	proposal, err := c.FetchProposal(ctx, proposalAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch proposal: %w", err)
	}
	if !proposal.IsVoting() {
		return nil, fmt.Errorf("%w: %s is %s", ErrProposalNotVoting, proposalAddress, proposal.State)
	}
	gov, err := c.FetchGovernance(ctx, proposal.Governance)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch governance: %w", err)
	}
	realm, err := c.FetchRealm(ctx, gov.Realm)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch realm: %w", err)
	}
	voterTokenOwnerRecord, err := governance.TokenOwnerRecordAddress(c.Config.Program.ID, gov.Realm, proposal.GoverningTokenMint, wallet)
	if err != nil {
		return nil, err
	}

	var instructions []solana.Instruction
	voterWeightRecord, weight, err := c.withRevise(ctx, &instructions, gov.Realm, realm, proposal.GoverningTokenMint)
	if err != nil {
		return nil, err
	}
	if voterWeightRecord != nil && (weight.Weight == nil || *weight.Weight == 0) {
		return nil, fmt.Errorf("%w: stake account %s", ErrNoVoterWeight, weight.StakeAccount)
	}

	_, err = governance.WithCastVote(&instructions, c.Program(), governance.CastVoteArgs{
		Realm:                 gov.Realm,
		Governance:            proposal.Governance,
		Proposal:              proposalAddress,
		ProposalOwnerRecord:   proposal.TokenOwnerRecord,
		VoterTokenOwnerRecord: voterTokenOwnerRecord,
		GovernanceAuthority:   wallet,
		GoverningTokenMint:    proposal.GoverningTokenMint,
		Payer:                 wallet,
		Vote:                  vote,
		VoterWeightRecord:     voterWeightRecord,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build cast vote: %w", err)
	}

	return c.SendTransaction(ctx, instructions, nil, Labels{
		Progress: "Voting on proposal",
		Success:  "Proposal voted on",
	})
}

// WeightReport is a resolved voter weight with amounts scaled by the staking
// mint's decimals.
type WeightReport struct {
	*staking.VoterWeight
	Decimals uint8

	Staked  string
	Display string
}

// VoterWeight resolves the voting weight owner derives from their stake.
func (c *Client) VoterWeight(ctx context.Context, owner solana.PublicKey) (*WeightReport, error) {
	weight, err := c.Resolver.Resolve(ctx, owner)
	if err != nil {
		return nil, err
	}

	report := &WeightReport{VoterWeight: weight, Display: "undefined"}
	mint, err := c.FetchMint(ctx, weight.StakePool.StakingMint)
	if err != nil {
		klog.Warningf("failed to fetch staking mint %s, showing raw units: %v", weight.StakePool.StakingMint, err)
	} else {
		report.Decimals = mint.Decimals
	}

	report.Staked = Amount(weight.PoolTokenAmount, report.Decimals).String()
	if weight.Weight != nil {
		report.Display = Amount(*weight.Weight, report.Decimals).String()
	}
	return report, nil
}
