package governance

import (
	"github.com/gagliardetto/solana-go"
)

type ProposalState uint8

const (
	ProposalStateDraft ProposalState = iota
	ProposalStateSigningOff
	ProposalStateVoting
	ProposalStateSucceeded
	ProposalStateExecuting
	ProposalStateCompleted
	ProposalStateCancelled
	ProposalStateDefeated
	ProposalStateExecutingWithErrors
)

var proposalStateNames = []string{
	"Draft",
	"SigningOff",
	"Voting",
	"Succeeded",
	"Executing",
	"Completed",
	"Cancelled",
	"Defeated",
	"ExecutingWithErrors",
}

func (s ProposalState) String() string {
	if int(s) < len(proposalStateNames) {
		return proposalStateNames[s]
	}
	return "Unknown"
}

type OptionVoteResult uint8

const (
	OptionVoteResultNone OptionVoteResult = iota
	OptionVoteResultSucceeded
	OptionVoteResultDefeated
)

type ProposalOption struct {
	Label                     string
	VoteWeight                uint64
	VoteResult                OptionVoteResult
	InstructionsExecutedCount uint16
	InstructionsCount         uint16
	InstructionsNextIndex     uint16
}

// Proposal is the decoded form of both proposal versions. Version 1 proposals
// carry their tally in YesVotesCount/NoVotesCount and get a single synthetic
// option; version 2 proposals carry it in Options and DenyVoteWeight.
type Proposal struct {
	AccountType               AccountType
	Governance                solana.PublicKey
	GoverningTokenMint        solana.PublicKey
	State                     ProposalState
	TokenOwnerRecord          solana.PublicKey
	SignatoriesCount          uint8
	SignatoriesSignedOffCount uint8

	YesVotesCount uint64
	NoVotesCount  uint64

	VoteType       VoteType
	Options        []ProposalOption
	DenyVoteWeight *uint64

	DraftAt                 int64
	SigningOffAt            *int64
	VotingAt                *int64
	VotingAtSlot            *uint64
	VotingCompletedAt       *int64
	ExecutingAt             *int64
	ClosedAt                *int64
	ExecutionFlags          uint8
	MaxVoteWeight           *uint64
	VoteThresholdPercentage *VoteThresholdPercentage
	Name                    string
	DescriptionLink         string
}

func (p *Proposal) Type() AccountType { return p.AccountType }

// YesVotes returns the approve weight of the first option.
func (p *Proposal) YesVotes() uint64 {
	if p.AccountType == AccountTypeProposalV1 {
		return p.YesVotesCount
	}
	if len(p.Options) == 0 {
		return 0
	}
	return p.Options[0].VoteWeight
}

// NoVotes returns the deny weight.
func (p *Proposal) NoVotes() uint64 {
	if p.AccountType == AccountTypeProposalV1 {
		return p.NoVotesCount
	}
	if p.DenyVoteWeight == nil {
		return 0
	}
	return *p.DenyVoteWeight
}

// IsVoting reports whether votes can currently be cast.
func (p *Proposal) IsVoting() bool {
	return p.State == ProposalStateVoting
}

func DecodeProposal(data []byte) (*Proposal, error) {
	if err := expectType(data, "proposal", AccountType.IsProposal); err != nil {
		return nil, err
	}
	r := newReader(data)
	p := &Proposal{AccountType: AccountType(r.u8())}
	p.Governance = r.pubkey()
	p.GoverningTokenMint = r.pubkey()
	p.State = ProposalState(r.u8())
	p.TokenOwnerRecord = r.pubkey()
	p.SignatoriesCount = r.u8()
	p.SignatoriesSignedOffCount = r.u8()

	if p.AccountType == AccountTypeProposalV1 {
		p.YesVotesCount = r.u64()
		p.NoVotesCount = r.u64()
		option := ProposalOption{
			Label:      "Yes",
			VoteWeight: p.YesVotesCount,
		}
		option.InstructionsExecutedCount = r.u16()
		option.InstructionsCount = r.u16()
		option.InstructionsNextIndex = r.u16()
		p.Options = []ProposalOption{option}
		no := p.NoVotesCount
		p.DenyVoteWeight = &no
	} else {
		p.VoteType.Kind = VoteTypeKind(r.u8())
		if p.VoteType.Kind == VoteTypeMultiChoice {
			p.VoteType.MaxChoices = r.u16()
		}
		n := r.u32()
		for i := uint32(0); i < n && r.err == nil; i++ {
			var option ProposalOption
			option.Label = r.string()
			option.VoteWeight = r.u64()
			option.VoteResult = OptionVoteResult(r.u8())
			option.InstructionsExecutedCount = r.u16()
			option.InstructionsCount = r.u16()
			option.InstructionsNextIndex = r.u16()
			p.Options = append(p.Options, option)
		}
		p.DenyVoteWeight = r.optionU64()
	}

	p.DraftAt = r.i64()
	p.SigningOffAt = r.optionI64()
	p.VotingAt = r.optionI64()
	p.VotingAtSlot = r.optionU64()
	p.VotingCompletedAt = r.optionI64()
	p.ExecutingAt = r.optionI64()
	p.ClosedAt = r.optionI64()
	p.ExecutionFlags = r.u8()
	p.MaxVoteWeight = r.optionU64()
	if r.boolean() && r.err == nil {
		p.VoteThresholdPercentage = &VoteThresholdPercentage{
			Type:  VoteThresholdPercentageType(r.u8()),
			Value: r.u8(),
		}
	}
	p.Name = r.string()
	p.DescriptionLink = r.string()

	if r.err != nil {
		return nil, decodeErr("proposal", r.err)
	}
	return p, nil
}
