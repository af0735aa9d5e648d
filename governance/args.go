package governance

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// MintMaxVoteWeightSourceType selects how the max vote weight of a mint is computed.
type MintMaxVoteWeightSourceType uint8

const (
	MintMaxVoteWeightSourceSupplyFraction MintMaxVoteWeightSourceType = iota
	MintMaxVoteWeightSourceAbsolute
)

// SupplyFractionBase is the supply fraction value meaning 100% of the mint supply.
const SupplyFractionBase uint64 = 10_000_000_000

type MintMaxVoteWeightSource struct {
	Type  MintMaxVoteWeightSourceType
	Value uint64
}

// FullSupplyFraction counts the whole mint supply as max vote weight.
var FullSupplyFraction = MintMaxVoteWeightSource{
	Type:  MintMaxVoteWeightSourceSupplyFraction,
	Value: SupplyFractionBase,
}

func (s MintMaxVoteWeightSource) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteUint8(uint8(s.Type)); err != nil {
		return err
	}
	return encoder.WriteUint64(s.Value, bin.LE)
}

func (s *MintMaxVoteWeightSource) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	tag, err := decoder.ReadUint8()
	if err != nil {
		return err
	}
	s.Type = MintMaxVoteWeightSourceType(tag)
	s.Value, err = decoder.ReadUint64(bin.LE)
	return err
}

// RealmConfigArgs configures a realm at creation time.
type RealmConfigArgs struct {
	UseCouncilMint                       bool
	MinCommunityTokensToCreateGovernance uint64
	CommunityMintMaxVoteWeightSource     MintMaxVoteWeightSource
	// UseCommunityVoterWeightAddin is only serialized for program version 2 and later.
	UseCommunityVoterWeightAddin bool
}

func (a RealmConfigArgs) encode(encoder *bin.Encoder, version uint8) error {
	if err := encoder.WriteBool(a.UseCouncilMint); err != nil {
		return err
	}
	if err := encoder.WriteUint64(a.MinCommunityTokensToCreateGovernance, bin.LE); err != nil {
		return err
	}
	if err := a.CommunityMintMaxVoteWeightSource.MarshalWithEncoder(encoder); err != nil {
		return err
	}
	if version >= ProgramVersionV2 {
		return encoder.WriteBool(a.UseCommunityVoterWeightAddin)
	}
	return nil
}

// VoteThresholdPercentageType selects what the threshold percentage is measured against.
type VoteThresholdPercentageType uint8

const (
	VoteThresholdYesVote VoteThresholdPercentageType = iota
	VoteThresholdQuorum
)

type VoteThresholdPercentage struct {
	Type  VoteThresholdPercentageType
	Value uint8
}

// VoteWeightSource selects where governing token weight is read from.
type VoteWeightSource uint8

const (
	VoteWeightSourceDeposit VoteWeightSource = iota
	VoteWeightSourceSnapshot
)

// GovernanceConfig holds the voting rules of a governance.
type GovernanceConfig struct {
	VoteThresholdPercentage            VoteThresholdPercentage
	MinCommunityTokensToCreateProposal uint64
	MinInstructionHoldUpTime           uint32
	MaxVotingTime                      uint32
	VoteWeightSource                   VoteWeightSource
	ProposalCoolOffTime                uint32
	MinCouncilTokensToCreateProposal   uint64
}

func (c GovernanceConfig) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteUint8(uint8(c.VoteThresholdPercentage.Type)); err != nil {
		return err
	}
	if err := encoder.WriteUint8(c.VoteThresholdPercentage.Value); err != nil {
		return err
	}
	if err := encoder.WriteUint64(c.MinCommunityTokensToCreateProposal, bin.LE); err != nil {
		return err
	}
	if err := encoder.WriteUint32(c.MinInstructionHoldUpTime, bin.LE); err != nil {
		return err
	}
	if err := encoder.WriteUint32(c.MaxVotingTime, bin.LE); err != nil {
		return err
	}
	if err := encoder.WriteUint8(uint8(c.VoteWeightSource)); err != nil {
		return err
	}
	if err := encoder.WriteUint32(c.ProposalCoolOffTime, bin.LE); err != nil {
		return err
	}
	return encoder.WriteUint64(c.MinCouncilTokensToCreateProposal, bin.LE)
}

func (c *GovernanceConfig) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	var tag uint8
	if tag, err = decoder.ReadUint8(); err != nil {
		return err
	}
	c.VoteThresholdPercentage.Type = VoteThresholdPercentageType(tag)
	if c.VoteThresholdPercentage.Value, err = decoder.ReadUint8(); err != nil {
		return err
	}
	if c.MinCommunityTokensToCreateProposal, err = decoder.ReadUint64(bin.LE); err != nil {
		return err
	}
	if c.MinInstructionHoldUpTime, err = decoder.ReadUint32(bin.LE); err != nil {
		return err
	}
	if c.MaxVotingTime, err = decoder.ReadUint32(bin.LE); err != nil {
		return err
	}
	if tag, err = decoder.ReadUint8(); err != nil {
		return err
	}
	c.VoteWeightSource = VoteWeightSource(tag)
	if c.ProposalCoolOffTime, err = decoder.ReadUint32(bin.LE); err != nil {
		return err
	}
	c.MinCouncilTokensToCreateProposal, err = decoder.ReadUint64(bin.LE)
	return err
}

// VoteTypeKind distinguishes single from multiple choice proposals.
type VoteTypeKind uint8

const (
	VoteTypeSingleChoice VoteTypeKind = iota
	VoteTypeMultiChoice
)

type VoteType struct {
	Kind VoteTypeKind
	// MaxChoices is only used by multiple choice proposals.
	MaxChoices uint16
}

func (v VoteType) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteUint8(uint8(v.Kind)); err != nil {
		return err
	}
	if v.Kind == VoteTypeMultiChoice {
		return encoder.WriteUint16(v.MaxChoices, bin.LE)
	}
	return nil
}

// YesNoVote is the vote of program version 1.
type YesNoVote uint8

const (
	YesNoVoteYes YesNoVote = iota
	YesNoVoteNo
)

func (v YesNoVote) String() string {
	if v == YesNoVoteYes {
		return "Yes"
	}
	return "No"
}

type VoteChoice struct {
	Rank             uint8
	WeightPercentage uint8
}

// VoteKind is the Vote enum tag of program version 2.
type VoteKind uint8

const (
	VoteApprove VoteKind = iota
	VoteDeny
)

// Vote is the vote of program version 2.
type Vote struct {
	Kind     VoteKind
	Approved []VoteChoice
}

// VoteFromYesNo maps a yes/no vote onto the version 2 vote enum.
func VoteFromYesNo(v YesNoVote) Vote {
	if v == YesNoVoteYes {
		return Vote{
			Kind:     VoteApprove,
			Approved: []VoteChoice{{Rank: 0, WeightPercentage: 100}},
		}
	}
	return Vote{Kind: VoteDeny}
}

func (v Vote) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteUint8(uint8(v.Kind)); err != nil {
		return err
	}
	if v.Kind != VoteApprove {
		return nil
	}
	if err := encoder.WriteUint32(uint32(len(v.Approved)), bin.LE); err != nil {
		return err
	}
	for _, choice := range v.Approved {
		if err := encoder.WriteUint8(choice.Rank); err != nil {
			return err
		}
		if err := encoder.WriteUint8(choice.WeightPercentage); err != nil {
			return err
		}
	}
	return nil
}

func writeString(encoder *bin.Encoder, s string) error {
	if err := encoder.WriteUint32(uint32(len(s)), bin.LE); err != nil {
		return err
	}
	return encoder.WriteBytes([]byte(s), false)
}

func writePublicKey(encoder *bin.Encoder, pk solana.PublicKey) error {
	return encoder.WriteBytes(pk[:], false)
}

// encodeData serializes an instruction payload starting with its tag.
func encodeData(tag uint8, body func(encoder *bin.Encoder) error) ([]byte, error) {
	buf := new(bytes.Buffer)
	encoder := bin.NewBorshEncoder(buf)
	if err := encoder.WriteUint8(tag); err != nil {
		return nil, err
	}
	if body != nil {
		if err := body(encoder); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
