package governance

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(n byte) solana.PublicKey {
	return solana.PublicKeyFromBytes(bytes.Repeat([]byte{n}, solana.PublicKeyLength))
}

func borshString(s string) []byte {
	out := binary.LittleEndian.AppendUint32(nil, uint32(len(s)))
	return append(out, s...)
}

func programV(version uint8) Program {
	return Program{ID: DefaultProgramID, Version: version}
}

func mustData(t *testing.T, ix solana.Instruction) []byte {
	t.Helper()
	data, err := ix.Data()
	require.NoError(t, err)
	return data
}

func TestWithCreateRealm_V2AccountsAndData(t *testing.T) {
	program := programV(ProgramVersionV2)
	authority, communityMint, payer, councilMint, addin := key(1), key(2), key(3), key(4), key(5)

	var ixs []solana.Instruction
	realm, err := WithCreateRealm(&ixs, program, CreateRealmArgs{
		Name:                                 "wormhole",
		RealmAuthority:                       authority,
		CommunityMint:                        communityMint,
		Payer:                                payer,
		CouncilMint:                          &councilMint,
		CommunityMintMaxVoteWeightSource:     FullSupplyFraction,
		MinCommunityTokensToCreateGovernance: 1,
		CommunityVoterWeightAddin:            &addin,
	})
	require.NoError(t, err)
	require.Len(t, ixs, 1)

	expectedRealm, err := RealmAddress(program.ID, "wormhole")
	require.NoError(t, err)
	assert.Equal(t, expectedRealm, realm)

	communityHolding, _ := GoverningTokenHoldingAddress(program.ID, realm, communityMint)
	councilHolding, _ := GoverningTokenHoldingAddress(program.ID, realm, councilMint)
	realmConfig, _ := RealmConfigAddress(program.ID, realm)

	expected := solana.AccountMetaSlice{
		solana.Meta(realm).WRITE(),
		solana.Meta(authority),
		solana.Meta(communityMint),
		solana.Meta(communityHolding).WRITE(),
		solana.Meta(payer).WRITE().SIGNER(),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(solana.SysVarRentPubkey),
		solana.Meta(councilMint),
		solana.Meta(councilHolding).WRITE(),
		solana.Meta(realmConfig).WRITE(),
		solana.Meta(addin),
	}
	assert.Equal(t, []*solana.AccountMeta(expected), ixs[0].Accounts())
	assert.Equal(t, program.ID, ixs[0].ProgramID())

	data := []byte{InstructionCreateRealm}
	data = append(data, borshString("wormhole")...)
	data = append(data, 1)
	data = binary.LittleEndian.AppendUint64(data, 1)
	data = append(data, 0)
	data = binary.LittleEndian.AppendUint64(data, SupplyFractionBase)
	data = append(data, 1)
	assert.Equal(t, data, mustData(t, ixs[0]))
}

func TestWithCreateRealm_V1RejectsAddin(t *testing.T) {
	addin := key(5)
	ixs := []solana.Instruction{}

	_, err := WithCreateRealm(&ixs, programV(ProgramVersionV1), CreateRealmArgs{
		Name:                      "dao",
		RealmAuthority:            key(1),
		CommunityMint:             key(2),
		Payer:                     key(3),
		CommunityVoterWeightAddin: &addin,
	})
	require.ErrorIs(t, err, ErrUnsupportedVersion)
	assert.Contains(t, err.Error(), "voter weight addin is not supported in version 1")
	assert.Empty(t, ixs)
}

func TestWithCreateRealm_V1Data(t *testing.T) {
	var ixs []solana.Instruction
	_, err := WithCreateRealm(&ixs, programV(ProgramVersionV1), CreateRealmArgs{
		Name:                             "dao",
		RealmAuthority:                   key(1),
		CommunityMint:                    key(2),
		Payer:                            key(3),
		CommunityMintMaxVoteWeightSource: FullSupplyFraction,
	})
	require.NoError(t, err)

	data := []byte{InstructionCreateRealm}
	data = append(data, borshString("dao")...)
	data = append(data, 0)
	data = binary.LittleEndian.AppendUint64(data, 0)
	data = append(data, 0)
	data = binary.LittleEndian.AppendUint64(data, SupplyFractionBase)
	assert.Equal(t, data, mustData(t, ixs[0]))
	// no realm config account before version 2
	assert.Len(t, ixs[0].Accounts(), 8)
}

func TestWithCreateRealm_NameTooLong(t *testing.T) {
	var ixs []solana.Instruction
	_, err := WithCreateRealm(&ixs, DefaultProgram, CreateRealmArgs{
		Name: "a realm name that is far longer than thirty two bytes",
	})
	require.ErrorIs(t, err, ErrSeedTooLong)
	assert.Empty(t, ixs)
}

func TestWithDepositGoverningTokens(t *testing.T) {
	realm, source, mint, owner, authority, payer := key(1), key(2), key(3), key(4), key(5), key(6)
	args := DepositGoverningTokensArgs{
		Realm:                realm,
		GoverningTokenSource: source,
		GoverningTokenMint:   mint,
		GoverningTokenOwner:  owner,
		TransferAuthority:    authority,
		Payer:                payer,
		Amount:               42,
	}

	for _, tc := range []struct {
		name    string
		version uint8
		data    []byte
	}{
		{"v1", ProgramVersionV1, []byte{InstructionDepositGoverningTokens}},
		{"v2", ProgramVersionV2, binary.LittleEndian.AppendUint64([]byte{InstructionDepositGoverningTokens}, 42)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			program := programV(tc.version)
			var ixs []solana.Instruction
			record, err := WithDepositGoverningTokens(&ixs, program, args)
			require.NoError(t, err)

			expectedRecord, _ := TokenOwnerRecordAddress(program.ID, realm, mint, owner)
			holding, _ := GoverningTokenHoldingAddress(program.ID, realm, mint)
			assert.Equal(t, expectedRecord, record)

			expected := solana.AccountMetaSlice{
				solana.Meta(realm),
				solana.Meta(holding).WRITE(),
				solana.Meta(source).WRITE(),
				solana.Meta(owner).SIGNER(),
				solana.Meta(authority).SIGNER(),
				solana.Meta(expectedRecord).WRITE(),
				solana.Meta(payer).WRITE().SIGNER(),
				solana.Meta(solana.SystemProgramID),
				solana.Meta(solana.TokenProgramID),
				solana.Meta(solana.SysVarRentPubkey),
			}
			assert.Equal(t, []*solana.AccountMeta(expected), ixs[0].Accounts())
			assert.Equal(t, tc.data, mustData(t, ixs[0]))
		})
	}
}

func TestWithWithdrawGoverningTokens(t *testing.T) {
	var ixs []solana.Instruction
	require.NoError(t, WithWithdrawGoverningTokens(&ixs, DefaultProgram, WithdrawGoverningTokensArgs{
		Realm:                     key(1),
		GoverningTokenDestination: key(2),
		GoverningTokenMint:        key(3),
		GoverningTokenOwner:       key(4),
	}))
	require.Len(t, ixs, 1)
	assert.Equal(t, []byte{InstructionWithdrawGoverningTokens}, mustData(t, ixs[0]))
	accounts := ixs[0].Accounts()
	require.Len(t, accounts, 6)
	assert.True(t, accounts[3].IsSigner)
	assert.Equal(t, solana.TokenProgramID, accounts[5].PublicKey)
}

func testGovernanceConfig() GovernanceConfig {
	return GovernanceConfig{
		VoteThresholdPercentage:            VoteThresholdPercentage{Type: VoteThresholdYesVote, Value: 60},
		MinCommunityTokensToCreateProposal: 1_000,
		MinInstructionHoldUpTime:           0,
		MaxVotingTime:                      3 * 24 * 60 * 60,
		VoteWeightSource:                   VoteWeightSourceDeposit,
		ProposalCoolOffTime:                0,
		MinCouncilTokensToCreateProposal:   1,
	}
}

func governanceConfigBytes(c GovernanceConfig) []byte {
	out := []byte{uint8(c.VoteThresholdPercentage.Type), c.VoteThresholdPercentage.Value}
	out = binary.LittleEndian.AppendUint64(out, c.MinCommunityTokensToCreateProposal)
	out = binary.LittleEndian.AppendUint32(out, c.MinInstructionHoldUpTime)
	out = binary.LittleEndian.AppendUint32(out, c.MaxVotingTime)
	out = append(out, uint8(c.VoteWeightSource))
	out = binary.LittleEndian.AppendUint32(out, c.ProposalCoolOffTime)
	return binary.LittleEndian.AppendUint64(out, c.MinCouncilTokensToCreateProposal)
}

func TestWithCreateProgramGovernance_AccountOrder(t *testing.T) {
	program := DefaultProgram
	realm, governed, upgradeAuthority, record, payer, authority, vwr := key(1), key(2), key(3), key(4), key(5), key(6), key(7)

	var ixs []solana.Instruction
	governance, err := WithCreateProgramGovernance(&ixs, program, CreateGovernanceArgs{
		Kind:                GovernanceKindProgram,
		Realm:               realm,
		Governed:            governed,
		GovernedAuthority:   upgradeAuthority,
		TransferAuthority:   true,
		Config:              testGovernanceConfig(),
		TokenOwnerRecord:    record,
		Payer:               payer,
		GovernanceAuthority: authority,
		VoterWeightRecord:   &vwr,
	})
	require.NoError(t, err)

	expectedGovernance, _ := GovernanceAddress(program.ID, GovernanceKindProgram, realm, governed)
	programData, _ := ProgramDataAddress(governed)
	realmConfig, _ := RealmConfigAddress(program.ID, realm)
	assert.Equal(t, expectedGovernance, governance)

	expected := solana.AccountMetaSlice{
		solana.Meta(realm),
		solana.Meta(expectedGovernance).WRITE(),
		solana.Meta(governed),
		solana.Meta(programData).WRITE(),
		solana.Meta(upgradeAuthority).SIGNER(),
		solana.Meta(record),
		solana.Meta(payer).WRITE().SIGNER(),
		solana.Meta(BPFLoaderUpgradeableProgramID),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.SysVarRentPubkey),
		solana.Meta(authority).SIGNER(),
		solana.Meta(realmConfig),
		solana.Meta(vwr),
	}
	assert.Equal(t, []*solana.AccountMeta(expected), ixs[0].Accounts())

	data := append([]byte{InstructionCreateProgramGovernance}, governanceConfigBytes(testGovernanceConfig())...)
	data = append(data, 1)
	assert.Equal(t, data, mustData(t, ixs[0]))
}

func TestWithCreateGovernance_Kinds(t *testing.T) {
	tags := map[GovernanceKind]uint8{
		GovernanceKindAccount: InstructionCreateAccountGovernance,
		GovernanceKindProgram: InstructionCreateProgramGovernance,
		GovernanceKindMint:    InstructionCreateMintGovernance,
		GovernanceKindToken:   InstructionCreateTokenGovernance,
	}
	for _, kind := range GovernanceKinds {
		t.Run(string(kind), func(t *testing.T) {
			var ixs []solana.Instruction
			governance, err := WithCreateGovernance(&ixs, DefaultProgram, CreateGovernanceArgs{
				Kind:                kind,
				Realm:               key(1),
				Governed:            key(2),
				GovernedAuthority:   key(3),
				Config:              testGovernanceConfig(),
				TokenOwnerRecord:    key(4),
				Payer:               key(5),
				GovernanceAuthority: key(6),
			})
			require.NoError(t, err)
			require.Len(t, ixs, 1)

			expected, _ := GovernanceAddress(DefaultProgramID, kind, key(1), key(2))
			assert.Equal(t, expected, governance)
			assert.Equal(t, tags[kind], mustData(t, ixs[0])[0])
		})
	}

	var ixs []solana.Instruction
	_, err := WithCreateGovernance(&ixs, DefaultProgram, CreateGovernanceArgs{Kind: "treasury"})
	assert.Error(t, err)
}

func TestWithCreateAccountGovernance_V1RejectsVoterWeightRecord(t *testing.T) {
	vwr := key(9)
	var ixs []solana.Instruction
	_, err := WithCreateAccountGovernance(&ixs, programV(ProgramVersionV1), CreateGovernanceArgs{
		Realm:             key(1),
		Governed:          key(2),
		VoterWeightRecord: &vwr,
	})
	require.ErrorIs(t, err, ErrUnsupportedVersion)
	assert.Empty(t, ixs)
}

func TestWithCreateProposal_V2(t *testing.T) {
	program := DefaultProgram
	realm, governance, record, mint, authority, payer, vwr := key(1), key(2), key(3), key(4), key(5), key(6), key(7)

	var ixs []solana.Instruction
	proposal, err := WithCreateProposal(&ixs, program, CreateProposalArgs{
		Realm:               realm,
		Governance:          governance,
		TokenOwnerRecord:    record,
		Name:                "Upgrade",
		DescriptionLink:     "https://example.org/p/1",
		GoverningTokenMint:  mint,
		GovernanceAuthority: authority,
		ProposalIndex:       3,
		Payer:               payer,
		UseDenyOption:       true,
		VoterWeightRecord:   &vwr,
	})
	require.NoError(t, err)

	expectedProposal, _ := ProposalAddress(program.ID, governance, mint, 3)
	realmConfig, _ := RealmConfigAddress(program.ID, realm)
	assert.Equal(t, expectedProposal, proposal)

	expected := solana.AccountMetaSlice{
		solana.Meta(realm),
		solana.Meta(expectedProposal).WRITE(),
		solana.Meta(governance).WRITE(),
		solana.Meta(record).WRITE(),
		solana.Meta(mint),
		solana.Meta(authority).SIGNER(),
		solana.Meta(payer).WRITE().SIGNER(),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.SysVarRentPubkey),
		solana.Meta(solana.SysVarClockPubkey),
		solana.Meta(realmConfig),
		solana.Meta(vwr),
	}
	assert.Equal(t, []*solana.AccountMeta(expected), ixs[0].Accounts())

	data := []byte{InstructionCreateProposal}
	data = append(data, borshString("Upgrade")...)
	data = append(data, borshString("https://example.org/p/1")...)
	data = append(data, uint8(VoteTypeSingleChoice))
	data = binary.LittleEndian.AppendUint32(data, 1)
	data = append(data, borshString("Approve")...)
	data = append(data, 1)
	assert.Equal(t, data, mustData(t, ixs[0]))
}

func TestWithCreateProposal_V1(t *testing.T) {
	program := programV(ProgramVersionV1)
	mint := key(4)

	var ixs []solana.Instruction
	_, err := WithCreateProposal(&ixs, program, CreateProposalArgs{
		Realm:               key(1),
		Governance:          key(2),
		TokenOwnerRecord:    key(3),
		Name:                "p",
		DescriptionLink:     "",
		GoverningTokenMint:  mint,
		GovernanceAuthority: key(5),
		Payer:               key(6),
	})
	require.NoError(t, err)

	data := []byte{InstructionCreateProposal}
	data = append(data, borshString("p")...)
	data = append(data, borshString("")...)
	data = append(data, mint[:]...)
	assert.Equal(t, data, mustData(t, ixs[0]))
	assert.Len(t, ixs[0].Accounts(), 9)
}

func TestWithCreateProposal_MultiChoiceBounds(t *testing.T) {
	var ixs []solana.Instruction
	_, err := WithCreateProposal(&ixs, DefaultProgram, CreateProposalArgs{
		Name:     "pick",
		Options:  []string{"a", "b"},
		VoteType: VoteType{Kind: VoteTypeMultiChoice, MaxChoices: 3},
	})
	assert.Error(t, err)
	assert.Empty(t, ixs)
}

func TestWithAddSignatoryAndSignOff(t *testing.T) {
	proposal, record, authority, signatory, payer := key(1), key(2), key(3), key(4), key(5)

	var ixs []solana.Instruction
	signatoryRecord, err := WithAddSignatory(&ixs, DefaultProgram, AddSignatoryArgs{
		Proposal:            proposal,
		TokenOwnerRecord:    record,
		GovernanceAuthority: authority,
		Signatory:           signatory,
		Payer:               payer,
	})
	require.NoError(t, err)
	require.NoError(t, WithSignOffProposal(&ixs, DefaultProgram, proposal, signatory))
	require.Len(t, ixs, 2)

	expectedRecord, _ := SignatoryRecordAddress(DefaultProgramID, proposal, signatory)
	assert.Equal(t, expectedRecord, signatoryRecord)
	assert.Equal(t, append([]byte{InstructionAddSignatory}, signatory[:]...), mustData(t, ixs[0]))
	assert.Equal(t, expectedRecord, ixs[0].Accounts()[3].PublicKey)

	assert.Equal(t, []byte{InstructionSignOffProposal}, mustData(t, ixs[1]))
	assert.Equal(t, []*solana.AccountMeta(solana.AccountMetaSlice{
		solana.Meta(proposal).WRITE(),
		solana.Meta(expectedRecord).WRITE(),
		solana.Meta(signatory).SIGNER(),
		solana.Meta(solana.SysVarClockPubkey),
	}), ixs[1].Accounts())
}

func castVoteArgs(vote YesNoVote, vwr *solana.PublicKey) CastVoteArgs {
	return CastVoteArgs{
		Realm:                 key(1),
		Governance:            key(2),
		Proposal:              key(3),
		ProposalOwnerRecord:   key(4),
		VoterTokenOwnerRecord: key(5),
		GovernanceAuthority:   key(6),
		GoverningTokenMint:    key(7),
		Payer:                 key(8),
		Vote:                  vote,
		VoterWeightRecord:     vwr,
	}
}

func TestWithCastVote_Data(t *testing.T) {
	for _, tc := range []struct {
		name    string
		version uint8
		vote    YesNoVote
		data    []byte
	}{
		{"v1 yes", ProgramVersionV1, YesNoVoteYes, []byte{InstructionCastVote, 0}},
		{"v1 no", ProgramVersionV1, YesNoVoteNo, []byte{InstructionCastVote, 1}},
		{"v2 yes", ProgramVersionV2, YesNoVoteYes, []byte{InstructionCastVote, 0, 1, 0, 0, 0, 0, 100}},
		{"v2 no", ProgramVersionV2, YesNoVoteNo, []byte{InstructionCastVote, 1}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var ixs []solana.Instruction
			_, err := WithCastVote(&ixs, programV(tc.version), castVoteArgs(tc.vote, nil))
			require.NoError(t, err)
			assert.Equal(t, tc.data, mustData(t, ixs[0]))
		})
	}
}

func TestWithCastVote_AccountOrder(t *testing.T) {
	vwr := key(9)
	args := castVoteArgs(YesNoVoteYes, &vwr)

	var ixs []solana.Instruction
	voteRecord, err := WithCastVote(&ixs, DefaultProgram, args)
	require.NoError(t, err)

	expectedVoteRecord, _ := VoteRecordAddress(DefaultProgramID, args.Proposal, args.VoterTokenOwnerRecord)
	realmConfig, _ := RealmConfigAddress(DefaultProgramID, args.Realm)
	assert.Equal(t, expectedVoteRecord, voteRecord)

	expected := solana.AccountMetaSlice{
		solana.Meta(args.Realm),
		solana.Meta(args.Governance),
		solana.Meta(args.Proposal).WRITE(),
		solana.Meta(args.ProposalOwnerRecord).WRITE(),
		solana.Meta(args.VoterTokenOwnerRecord).WRITE(),
		solana.Meta(args.GovernanceAuthority).SIGNER(),
		solana.Meta(expectedVoteRecord).WRITE(),
		solana.Meta(args.GoverningTokenMint),
		solana.Meta(args.Payer).WRITE().SIGNER(),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.SysVarRentPubkey),
		solana.Meta(solana.SysVarClockPubkey),
		solana.Meta(realmConfig),
		solana.Meta(vwr),
	}
	assert.Equal(t, []*solana.AccountMeta(expected), ixs[0].Accounts())
}

func TestWithCastVote_V1RejectsVoterWeightRecord(t *testing.T) {
	vwr := key(9)
	ixs := []solana.Instruction{}
	_, err := WithCastVote(&ixs, programV(ProgramVersionV1), castVoteArgs(YesNoVoteYes, &vwr))
	require.ErrorIs(t, err, ErrUnsupportedVersion)
	assert.Empty(t, ixs)
}

func TestBuilders_Deterministic(t *testing.T) {
	vwr := key(9)
	build := func() []solana.Instruction {
		var ixs []solana.Instruction
		_, err := WithCreateProposal(&ixs, DefaultProgram, CreateProposalArgs{
			Realm:               key(1),
			Governance:          key(2),
			TokenOwnerRecord:    key(3),
			Name:                "same",
			GoverningTokenMint:  key(4),
			GovernanceAuthority: key(5),
			Payer:               key(6),
			VoterWeightRecord:   &vwr,
		})
		require.NoError(t, err)
		_, err = WithCastVote(&ixs, DefaultProgram, castVoteArgs(YesNoVoteNo, &vwr))
		require.NoError(t, err)
		return ixs
	}

	first, second := build(), build()
	require.Len(t, first, 2)
	for i := range first {
		assert.Equal(t, first[i].Accounts(), second[i].Accounts())
		assert.Equal(t, mustData(t, first[i]), mustData(t, second[i]))
	}
}

func TestBuilders_AppendToExistingList(t *testing.T) {
	existing := solana.NewInstruction(solana.SystemProgramID, solana.AccountMetaSlice{}, []byte{9})
	ixs := []solana.Instruction{existing}

	_, err := WithCastVote(&ixs, DefaultProgram, castVoteArgs(YesNoVoteYes, nil))
	require.NoError(t, err)
	require.Len(t, ixs, 2)
	assert.Same(t, existing, ixs[0])
}

func TestDescribe(t *testing.T) {
	var ixs []solana.Instruction
	_, err := WithCastVote(&ixs, DefaultProgram, castVoteArgs(YesNoVoteYes, nil))
	require.NoError(t, err)

	out := Describe(DefaultProgram, ixs)
	assert.Contains(t, out, "CastVote")
	assert.Contains(t, out, "voterTokenOwnerRecord")
}

func TestInstructionName(t *testing.T) {
	assert.Equal(t, "CastVote", InstructionName([]byte{InstructionCastVote}))
	assert.Equal(t, "SetRealmConfig", InstructionName([]byte{InstructionSetRealmConfig}))
	assert.Equal(t, "Unknown", InstructionName([]byte{200}))
	assert.Equal(t, "Unknown", InstructionName(nil))
}
