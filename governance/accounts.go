package governance

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Account is any decoded governance account.
type Account interface {
	Type() AccountType
}

type RealmConfig struct {
	UseCommunityVoterWeightAddin         bool
	MinCommunityTokensToCreateGovernance uint64
	CommunityMintMaxVoteWeightSource     MintMaxVoteWeightSource
	CouncilMint                          *solana.PublicKey
}

type Realm struct {
	CommunityMint solana.PublicKey
	Config        RealmConfig
	Authority     *solana.PublicKey
	Name          string
}

func (*Realm) Type() AccountType { return AccountTypeRealm }

// RealmConfigAccount holds the addins of a realm; only version 2 programs create it.
type RealmConfigAccount struct {
	Realm                     solana.PublicKey
	CommunityVoterWeightAddin *solana.PublicKey
}

func (*RealmConfigAccount) Type() AccountType { return AccountTypeRealmConfig }

type TokenOwnerRecord struct {
	Realm                       solana.PublicKey
	GoverningTokenMint          solana.PublicKey
	GoverningTokenOwner         solana.PublicKey
	GoverningTokenDepositAmount uint64
	UnrelinquishedVotesCount    uint32
	TotalVotesCount             uint32
	OutstandingProposalCount    uint8
	GovernanceDelegate          *solana.PublicKey
}

func (*TokenOwnerRecord) Type() AccountType { return AccountTypeTokenOwnerRecord }

type Governance struct {
	AccountType     AccountType
	Realm           solana.PublicKey
	GovernedAccount solana.PublicKey
	ProposalsCount  uint32
	Config          GovernanceConfig
}

func (g *Governance) Type() AccountType { return g.AccountType }

type SignatoryRecord struct {
	Proposal  solana.PublicKey
	Signatory solana.PublicKey
	SignedOff bool
}

func (*SignatoryRecord) Type() AccountType { return AccountTypeSignatoryRecord }

type VoteRecord struct {
	AccountType         AccountType
	Proposal            solana.PublicKey
	GoverningTokenOwner solana.PublicKey
	IsRelinquished      bool
	VoterWeight         uint64
	// Yes is the v1 yes/no choice; for v2 it is true when the vote approves.
	Yes  bool
	Vote Vote
}

func (v *VoteRecord) Type() AccountType { return v.AccountType }

// Byte offsets of the pubkeys the account list filters match on.
const (
	OffsetRealm               = 1
	OffsetGoverningTokenMint  = 1 + 32
	OffsetGoverningTokenOwner = 1 + 32 + 32
	OffsetProposalParent      = 1
)

// DecodeAccount decodes any governance account by its discriminant.
func DecodeAccount(data []byte) (Account, error) {
	accountType, ok := AccountTypeOf(data)
	if !ok {
		return nil, decodeErr("account", fmt.Errorf("empty data"))
	}
	switch {
	case accountType == AccountTypeRealm:
		return asAccount(DecodeRealm(data))
	case accountType == AccountTypeRealmConfig:
		return asAccount(DecodeRealmConfig(data))
	case accountType == AccountTypeTokenOwnerRecord:
		return asAccount(DecodeTokenOwnerRecord(data))
	case accountType.IsGovernance():
		return asAccount(DecodeGovernance(data))
	case accountType.IsProposal():
		return asAccount(DecodeProposal(data))
	case accountType == AccountTypeSignatoryRecord:
		return asAccount(DecodeSignatoryRecord(data))
	case accountType.IsVoteRecord():
		return asAccount(DecodeVoteRecord(data))
	default:
		return nil, decodeErr("account", fmt.Errorf("unsupported account type %s (%d)", accountType, accountType))
	}
}

// asAccount keeps a failed decode from returning a typed nil inside Account.
func asAccount[T Account](account T, err error) (Account, error) {
	if err != nil {
		return nil, err
	}
	return account, nil
}

func expectType(data []byte, what string, accept func(AccountType) bool) error {
	accountType, ok := AccountTypeOf(data)
	if !ok {
		return decodeErr(what, fmt.Errorf("empty data"))
	}
	if !accept(accountType) {
		return decodeErr(what, fmt.Errorf("unexpected account type %s", accountType))
	}
	return nil
}

func is(want AccountType) func(AccountType) bool {
	return func(t AccountType) bool { return t == want }
}

func DecodeRealm(data []byte) (*Realm, error) {
	if err := expectType(data, "realm", is(AccountTypeRealm)); err != nil {
		return nil, err
	}
	r := newReader(data)
	r.skip(1)
	realm := &Realm{}
	realm.CommunityMint = r.pubkey()
	realm.Config.UseCommunityVoterWeightAddin = r.boolean()
	r.skip(7)
	realm.Config.MinCommunityTokensToCreateGovernance = r.u64()
	realm.Config.CommunityMintMaxVoteWeightSource.Type = MintMaxVoteWeightSourceType(r.u8())
	realm.Config.CommunityMintMaxVoteWeightSource.Value = r.u64()
	realm.Config.CouncilMint = r.optionPubkey()
	r.skip(8)
	realm.Authority = r.optionPubkey()
	realm.Name = r.string()
	if r.err != nil {
		return nil, decodeErr("realm", r.err)
	}
	return realm, nil
}

func DecodeRealmConfig(data []byte) (*RealmConfigAccount, error) {
	if err := expectType(data, "realm config", is(AccountTypeRealmConfig)); err != nil {
		return nil, err
	}
	r := newReader(data)
	r.skip(1)
	config := &RealmConfigAccount{
		Realm:                     r.pubkey(),
		CommunityVoterWeightAddin: r.optionPubkey(),
	}
	if r.err != nil {
		return nil, decodeErr("realm config", r.err)
	}
	return config, nil
}

func DecodeTokenOwnerRecord(data []byte) (*TokenOwnerRecord, error) {
	if err := expectType(data, "token owner record", is(AccountTypeTokenOwnerRecord)); err != nil {
		return nil, err
	}
	r := newReader(data)
	r.skip(1)
	record := &TokenOwnerRecord{}
	record.Realm = r.pubkey()
	record.GoverningTokenMint = r.pubkey()
	record.GoverningTokenOwner = r.pubkey()
	record.GoverningTokenDepositAmount = r.u64()
	record.UnrelinquishedVotesCount = r.u32()
	record.TotalVotesCount = r.u32()
	record.OutstandingProposalCount = r.u8()
	r.skip(7)
	record.GovernanceDelegate = r.optionPubkey()
	if r.err != nil {
		return nil, decodeErr("token owner record", r.err)
	}
	return record, nil
}

func DecodeGovernance(data []byte) (*Governance, error) {
	if err := expectType(data, "governance", AccountType.IsGovernance); err != nil {
		return nil, err
	}
	r := newReader(data)
	governance := &Governance{AccountType: AccountType(r.u8())}
	governance.Realm = r.pubkey()
	governance.GovernedAccount = r.pubkey()
	governance.ProposalsCount = r.u32()
	if r.err == nil {
		r.err = governance.Config.UnmarshalWithDecoder(r.decoder)
	}
	if r.err != nil {
		return nil, decodeErr("governance", r.err)
	}
	return governance, nil
}

func DecodeSignatoryRecord(data []byte) (*SignatoryRecord, error) {
	if err := expectType(data, "signatory record", is(AccountTypeSignatoryRecord)); err != nil {
		return nil, err
	}
	r := newReader(data)
	r.skip(1)
	record := &SignatoryRecord{
		Proposal:  r.pubkey(),
		Signatory: r.pubkey(),
		SignedOff: r.boolean(),
	}
	if r.err != nil {
		return nil, decodeErr("signatory record", r.err)
	}
	return record, nil
}

func DecodeVoteRecord(data []byte) (*VoteRecord, error) {
	if err := expectType(data, "vote record", AccountType.IsVoteRecord); err != nil {
		return nil, err
	}
	r := newReader(data)
	record := &VoteRecord{AccountType: AccountType(r.u8())}
	record.Proposal = r.pubkey()
	record.GoverningTokenOwner = r.pubkey()
	record.IsRelinquished = r.boolean()

	if record.AccountType == AccountTypeVoteRecordV1 {
		// VoteWeight enum: Yes(u64) | No(u64)
		record.Yes = r.u8() == 0
		record.VoterWeight = r.u64()
		record.Vote = VoteFromYesNo(YesNoVoteNo)
		if record.Yes {
			record.Vote = VoteFromYesNo(YesNoVoteYes)
		}
	} else {
		record.VoterWeight = r.u64()
		record.Vote.Kind = VoteKind(r.u8())
		if record.Vote.Kind == VoteApprove {
			n := r.u32()
			for i := uint32(0); i < n && r.err == nil; i++ {
				record.Vote.Approved = append(record.Vote.Approved, VoteChoice{
					Rank:             r.u8(),
					WeightPercentage: r.u8(),
				})
			}
		}
		record.Yes = record.Vote.Kind == VoteApprove
	}
	if r.err != nil {
		return nil, decodeErr("vote record", r.err)
	}
	return record, nil
}
