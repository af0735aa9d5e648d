package realms

import (
	"context"
	"fmt"

	goerrors "github.com/go-errors/errors"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"k8s.io/klog/v2"

	"realms-cli/governance"
	"realms-cli/ledger"
)

// Keyed pairs a decoded account with its address.
type Keyed[T any] struct {
	Address solana.PublicKey `json:"address"`
	Account T                `json:"account"`
}

// Listing is the outcome of a filtered query. Skipped counts accounts that matched
// the filters but failed to decode.
type Listing[T any] struct {
	Items   []Keyed[T] `json:"items"`
	Skipped int        `json:"skipped"`
}

func accountTypeFilter(t governance.AccountType) rpc.RPCFilter {
	return ledger.MemcmpFilter(0, []byte{uint8(t)})
}

func fetchDecoded[T any](ctx context.Context, c *Client, decode func([]byte) (T, error), filters ...rpc.RPCFilter) (*Listing[T], error) {
	raw, err := ledger.FetchProgramAccounts(ctx, c.RpcClient, c.Config.Program.ID, filters...)
	if err != nil {
		return nil, err
	}

	listing := &Listing[T]{Items: make([]Keyed[T], 0, len(raw))}
	for _, account := range raw {
		decoded, err := decode(account.Data)
		if err != nil {
			// Log the error but continue with other accounts
			listing.Skipped++
			klog.Warningf("skipping account %s: %v", account.Address, err)
			if klog.V(2).Enabled() {
				klog.V(2).Info(goerrors.Wrap(err, 0).ErrorStack())
			}
			continue
		}
		listing.Items = append(listing.Items, Keyed[T]{Address: account.Address, Account: decoded})
	}
	return listing, nil
}

func fetchOne[T any](ctx context.Context, c *Client, address solana.PublicKey, decode func([]byte) (T, error)) (T, error) {
	var zero T
	data, err := ledger.FetchAccount(ctx, c.RpcClient, address)
	if err != nil {
		return zero, err
	}
	decoded, err := decode(data)
	if err != nil {
		return zero, fmt.Errorf("account %s: %w", address, err)
	}
	return decoded, nil
}

// FetchRealms returns every realm of the governance program.
func (c *Client) FetchRealms(ctx context.Context) (*Listing[*governance.Realm], error) {
	return fetchDecoded(ctx, c, governance.DecodeRealm, accountTypeFilter(governance.AccountTypeRealm))
}

func (c *Client) FetchRealm(ctx context.Context, realm solana.PublicKey) (*governance.Realm, error) {
	return fetchOne(ctx, c, realm, governance.DecodeRealm)
}

// FetchRealmByName resolves the realm address from its name and fetches it.
func (c *Client) FetchRealmByName(ctx context.Context, name string) (solana.PublicKey, *governance.Realm, error) {
	address, err := governance.RealmAddress(c.Config.Program.ID, name)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	realm, err := c.FetchRealm(ctx, address)
	return address, realm, err
}

// FetchRealmConfig returns the realm config account, which only exists for realms
// created with program version 2.
func (c *Client) FetchRealmConfig(ctx context.Context, realm solana.PublicKey) (*governance.RealmConfigAccount, error) {
	address, err := governance.RealmConfigAddress(c.Config.Program.ID, realm)
	if err != nil {
		return nil, err
	}
	return fetchOne(ctx, c, address, governance.DecodeRealmConfig)
}

// FetchGovernances returns the governances of a realm, all four kinds.
func (c *Client) FetchGovernances(ctx context.Context, realm solana.PublicKey) (*Listing[*governance.Governance], error) {
	all := &Listing[*governance.Governance]{}
	for _, kind := range governance.GovernanceKinds {
		listing, err := fetchDecoded(ctx, c, governance.DecodeGovernance,
			accountTypeFilter(kind.AccountType()),
			ledger.PubkeyFilter(governance.OffsetRealm, realm),
		)
		if err != nil {
			return nil, err
		}
		all.Items = append(all.Items, listing.Items...)
		all.Skipped += listing.Skipped
	}
	return all, nil
}

func (c *Client) FetchGovernance(ctx context.Context, address solana.PublicKey) (*governance.Governance, error) {
	return fetchOne(ctx, c, address, governance.DecodeGovernance)
}

// FetchProposals returns the proposals of a governance in both layout versions.
func (c *Client) FetchProposals(ctx context.Context, governanceAddress solana.PublicKey) (*Listing[*governance.Proposal], error) {
	all := &Listing[*governance.Proposal]{}
	for _, t := range []governance.AccountType{governance.AccountTypeProposalV1, governance.AccountTypeProposalV2} {
		listing, err := fetchDecoded(ctx, c, governance.DecodeProposal,
			accountTypeFilter(t),
			ledger.PubkeyFilter(governance.OffsetProposalParent, governanceAddress),
		)
		if err != nil {
			return nil, err
		}
		all.Items = append(all.Items, listing.Items...)
		all.Skipped += listing.Skipped
	}
	return all, nil
}

func (c *Client) FetchProposal(ctx context.Context, address solana.PublicKey) (*governance.Proposal, error) {
	return fetchOne(ctx, c, address, governance.DecodeProposal)
}

// FetchTokenOwnerRecords returns the deposits of every owner for one realm mint.
func (c *Client) FetchTokenOwnerRecords(ctx context.Context, realm, mint solana.PublicKey) (*Listing[*governance.TokenOwnerRecord], error) {
	return fetchDecoded(ctx, c, governance.DecodeTokenOwnerRecord,
		accountTypeFilter(governance.AccountTypeTokenOwnerRecord),
		ledger.PubkeyFilter(governance.OffsetRealm, realm),
		ledger.PubkeyFilter(governance.OffsetGoverningTokenMint, mint),
	)
}

// FetchWalletTokenOwnerRecords returns the records of one owner across all realms.
func (c *Client) FetchWalletTokenOwnerRecords(ctx context.Context, owner solana.PublicKey) (*Listing[*governance.TokenOwnerRecord], error) {
	return fetchDecoded(ctx, c, governance.DecodeTokenOwnerRecord,
		accountTypeFilter(governance.AccountTypeTokenOwnerRecord),
		ledger.PubkeyFilter(governance.OffsetGoverningTokenOwner, owner),
	)
}

func (c *Client) FetchTokenOwnerRecord(ctx context.Context, realm, mint, owner solana.PublicKey) (solana.PublicKey, *governance.TokenOwnerRecord, error) {
	address, err := governance.TokenOwnerRecordAddress(c.Config.Program.ID, realm, mint, owner)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	record, err := fetchOne(ctx, c, address, governance.DecodeTokenOwnerRecord)
	return address, record, err
}

func (c *Client) FetchSignatoryRecords(ctx context.Context, proposal solana.PublicKey) (*Listing[*governance.SignatoryRecord], error) {
	return fetchDecoded(ctx, c, governance.DecodeSignatoryRecord,
		accountTypeFilter(governance.AccountTypeSignatoryRecord),
		ledger.PubkeyFilter(governance.OffsetProposalParent, proposal),
	)
}

func (c *Client) FetchVoteRecords(ctx context.Context, proposal solana.PublicKey) (*Listing[*governance.VoteRecord], error) {
	all := &Listing[*governance.VoteRecord]{}
	for _, t := range []governance.AccountType{governance.AccountTypeVoteRecordV1, governance.AccountTypeVoteRecordV2} {
		listing, err := fetchDecoded(ctx, c, governance.DecodeVoteRecord,
			accountTypeFilter(t),
			ledger.PubkeyFilter(governance.OffsetProposalParent, proposal),
		)
		if err != nil {
			return nil, err
		}
		all.Items = append(all.Items, listing.Items...)
		all.Skipped += listing.Skipped
	}
	return all, nil
}

// FetchAccount fetches any governance account and decodes it by its type byte.
func (c *Client) FetchAccount(ctx context.Context, address solana.PublicKey) (governance.Account, []byte, error) {
	data, err := ledger.FetchAccount(ctx, c.RpcClient, address)
	if err != nil {
		return nil, nil, err
	}
	account, err := governance.DecodeAccount(data)
	return account, data, err
}
