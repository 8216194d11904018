package proposal_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dual-finance/governance-proposals/internal/assets"
	"github.com/dual-finance/governance-proposals/internal/instructions"
	"github.com/dual-finance/governance-proposals/internal/logger"
	"github.com/dual-finance/governance-proposals/internal/proposal"
	"github.com/dual-finance/governance-proposals/internal/validation"
	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	logger.InitLogger("test", "")
	goleak.VerifyTestMain(m)
}

func newGovernance() assets.Governance {
	return assets.Governance{
		Pubkey:    solana.NewWallet().PublicKey(),
		ProgramID: solana.NewWallet().PublicKey(),
	}
}

func validEnvelope(gov assets.Governance, chunkBy int, split bool, ixs ...string) *instructions.Envelope {
	return &instructions.Envelope{
		IsValid:                          true,
		Governance:                       &gov,
		AdditionalSerializedInstructions: ixs,
		ChunkBy:                          chunkBy,
		ChunkSplitByDefault:              split,
		FormErrors:                       validation.FieldErrors{},
	}
}

func static(envelope *instructions.Envelope) proposal.Getter {
	return func(context.Context) (*instructions.Envelope, error) {
		return envelope, nil
	}
}

// stubBuilder requires "amount" and reports the treasury field as governed.
type stubBuilder struct {
	governed *assets.GovernedAccount
	calls    atomic.Int32
	// block, when set, is waited on before a build returns.
	block chan struct{}
}

func (b *stubBuilder) Kind() instructions.Kind { return "stub" }

func (b *stubBuilder) Schema() validation.Schema {
	return validation.Schema{
		Name: "stub",
		Rules: []validation.Rule{
			{Field: "amount", Type: validation.TypeInteger, Required: true},
		},
	}
}

func (b *stubBuilder) GovernedAccount(values validation.Values, _ assets.Lister) *assets.GovernedAccount {
	if values.IsEmpty("treasury") {
		return nil
	}
	return b.governed
}

func (b *stubBuilder) Build(ctx context.Context, values validation.Values, _ instructions.Env) (*instructions.Envelope, error) {
	b.calls.Add(1)
	if b.block != nil {
		select {
		case <-b.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	errs := b.Schema().Validate(values)
	if len(errs) > 0 {
		return &instructions.Envelope{
			Governance:                       b.governed.GovernanceRef(),
			AdditionalSerializedInstructions: []string{},
			FormErrors:                       errs,
		}, nil
	}
	envelope := validEnvelope(assets.Governance{}, 1, false, values.String("amount"))
	envelope.Governance = b.governed.GovernanceRef()
	return envelope, nil
}

func TestAssembler_RegisterLastWriteWins(t *testing.T) {
	gov := newGovernance()
	a := proposal.NewAssembler()

	a.Register(2, static(validEnvelope(gov, 1, false, "c")), nil)
	a.Register(0, static(validEnvelope(gov, 1, false, "a")), nil)
	a.Register(0, static(validEnvelope(gov, 1, false, "b")), nil)

	assert.Equal(t, []int{0, 2}, a.Indices())

	envelopes, err := a.BuildAll(context.Background())
	require.NoError(t, err)
	require.Len(t, envelopes, 2)
	assert.Equal(t, []string{"b"}, envelopes[0].AdditionalSerializedInstructions)
	assert.Equal(t, []string{"c"}, envelopes[1].AdditionalSerializedInstructions)

	a.Unregister(2)
	assert.Equal(t, []int{0}, a.Indices())
}

func TestAssembler_BuildAllFailsOnAnyError(t *testing.T) {
	gov := newGovernance()
	a := proposal.NewAssembler()

	a.Register(0, static(validEnvelope(gov, 1, false, "a")), nil)
	a.Register(1, func(context.Context) (*instructions.Envelope, error) {
		return nil, errors.New("encoder exploded")
	}, nil)

	_, err := a.BuildAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "instruction 1")

	_, err = a.Assemble(context.Background())
	assert.Error(t, err)
}

func TestAssembler_Assemble(t *testing.T) {
	gov := newGovernance()
	other := newGovernance()

	tests := []struct {
		name        string
		envelopes   map[int]*instructions.Envelope
		wantValid   bool
		wantInvalid []int
		wantTxs     [][]string
	}{
		{
			name: "split envelopes are chunked",
			envelopes: map[int]*instructions.Envelope{
				0: validEnvelope(gov, 1, true, "config", "strike", "issue"),
				1: validEnvelope(gov, 1, false, "create", "deposit"),
			},
			wantValid: true,
			wantTxs:   [][]string{{"config"}, {"strike"}, {"issue"}, {"create", "deposit"}},
		},
		{
			name: "default chunk size",
			envelopes: map[int]*instructions.Envelope{
				0: validEnvelope(gov, 0, true, "a", "b", "c"),
			},
			wantValid: true,
			wantTxs:   [][]string{{"a", "b"}, {"c"}},
		},
		{
			name: "invalid sibling blocks the proposal",
			envelopes: map[int]*instructions.Envelope{
				0: validEnvelope(gov, 1, false, "a"),
				1: {Governance: &gov, FormErrors: validation.FieldErrors{"x": {Field: "x", Kind: validation.KindRequired}}},
			},
			wantInvalid: []int{1},
			wantTxs:     [][]string{},
		},
		{
			name: "sibling with a different governance",
			envelopes: map[int]*instructions.Envelope{
				0: validEnvelope(gov, 1, false, "a"),
				1: validEnvelope(other, 1, false, "b"),
			},
			wantInvalid: []int{1},
			wantTxs:     [][]string{},
		},
		{
			name: "first valid instruction sets the governance",
			envelopes: map[int]*instructions.Envelope{
				0: {FormErrors: validation.FieldErrors{"x": {Field: "x"}}},
				1: validEnvelope(other, 1, false, "b"),
				2: validEnvelope(gov, 1, false, "c"),
			},
			wantInvalid: []int{0, 2},
			wantTxs:     [][]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := proposal.NewAssembler()
			for index, envelope := range tt.envelopes {
				a.Register(index, static(envelope), nil)
			}

			p, err := a.Assemble(context.Background())
			require.NoError(t, err)

			assert.Equal(t, tt.wantValid, p.Valid)
			assert.Equal(t, tt.wantInvalid, p.InvalidIndices)

			got := make([][]string, 0, len(p.Transactions))
			for _, tx := range p.Transactions {
				got = append(got, tx.Instructions)
			}
			assert.Equal(t, tt.wantTxs, got)
			assert.Len(t, p.Envelopes, len(tt.envelopes))
		})
	}
}

func TestForm_EditClearsErrorsAndReregisters(t *testing.T) {
	ctx := context.Background()
	gov := newGovernance()
	treasury := &assets.GovernedAccount{Pubkey: solana.NewWallet().PublicKey(), Governance: gov}
	builder := &stubBuilder{governed: treasury}
	a := proposal.NewAssembler()

	form := proposal.NewForm(3, builder, a, instructions.Env{}, validation.Values{})
	assert.Equal(t, []int{3}, a.Indices())
	assert.Nil(t, form.GovernedAccount())

	_, err := a.BuildAll(ctx)
	require.NoError(t, err)
	assert.True(t, form.Errors().Has("amount"))

	form.SetField("treasury", treasury.Pubkey.String())
	assert.Empty(t, form.Errors(), "editing clears errors before any build")
	require.NotNil(t, form.GovernedAccount())
	assert.Equal(t, gov.Pubkey, form.GovernedAccount().Governance.Pubkey)

	registered, ok := a.GovernedAccount(3)
	require.True(t, ok)
	assert.Equal(t, treasury, registered)

	form.SetValues(validation.Values{"amount": 7})
	envelopes, err := a.BuildAll(ctx)
	require.NoError(t, err)
	require.Len(t, envelopes, 1)
	assert.True(t, envelopes[0].IsValid)
	assert.Equal(t, []string{"7"}, envelopes[0].AdditionalSerializedInstructions)
	assert.Empty(t, form.Errors())
	assert.Equal(t, validation.Values{"treasury": treasury.Pubkey.String(), "amount": 7}, form.Values())
}

func TestForm_SwitchingTreasuryUpdatesGovernance(t *testing.T) {
	govA := newGovernance()
	govB := newGovernance()
	treasuryA := assets.GovernedAccount{Pubkey: solana.NewWallet().PublicKey(), Type: assets.AccountTypeToken, Governance: govA}
	treasuryB := assets.GovernedAccount{Pubkey: solana.NewWallet().PublicKey(), Type: assets.AccountTypeToken, Governance: govB}
	env := instructions.Env{Assets: assets.NewRegistry(treasuryA, treasuryB)}
	a := proposal.NewAssembler()

	form := proposal.NewForm(1, instructions.NewDelegateBuilder(), a, env, validation.Values{
		instructions.FieldDelegateToken: treasuryA.Pubkey.String(),
	})
	require.NotNil(t, form.GovernedAccount())
	assert.Equal(t, govA.Pubkey, form.GovernedAccount().Governance.Pubkey)

	form.SetField(instructions.FieldDelegateToken, treasuryB.Pubkey.String())

	require.NotNil(t, form.GovernedAccount())
	assert.Equal(t, treasuryB.Pubkey, form.GovernedAccount().Pubkey)
	assert.Equal(t, govB.Pubkey, form.GovernedAccount().Governance.Pubkey)

	registered, ok := a.GovernedAccount(1)
	require.True(t, ok)
	require.NotNil(t, registered)
	assert.Equal(t, govB.Pubkey, registered.Governance.Pubkey)
	assert.NotEqual(t, govA.Pubkey, registered.Governance.Pubkey)
}

func TestForm_StaleBuildDoesNotOverwriteErrors(t *testing.T) {
	ctx := context.Background()
	builder := &stubBuilder{block: make(chan struct{})}
	a := proposal.NewAssembler()

	form := proposal.NewForm(0, builder, a, instructions.Env{}, validation.Values{})

	done := make(chan *instructions.Envelope)
	go func() {
		envelopes, err := a.BuildAll(ctx)
		if err != nil {
			done <- nil
			return
		}
		done <- envelopes[0]
	}()

	// wait for the build to start on the old snapshot, then edit
	require.Eventually(t, func() bool { return builder.calls.Load() == 1 }, time.Second, time.Millisecond)
	form.SetField("amount", 1)
	close(builder.block)

	stale := <-done
	require.NotNil(t, stale)
	assert.False(t, stale.IsValid, "the stale snapshot had no amount")
	assert.Empty(t, form.Errors(), "stale errors must not replace newer state")

	fresh, err := form.Build(ctx)
	require.NoError(t, err)
	assert.True(t, fresh.IsValid)
}

func TestDrafts(t *testing.T) {
	drafts := proposal.NewDrafts()
	draft := drafts.Create("Q3 options", instructions.Env{})

	got, err := drafts.Get(draft.ID)
	require.NoError(t, err)
	assert.Same(t, draft, got)

	builder := &stubBuilder{}
	draft.Mount(1, builder, validation.Values{"amount": 1})
	draft.Mount(0, builder, nil)
	assert.Equal(t, []int{0, 1}, draft.Assembler.Indices())

	forms := draft.Forms()
	require.Len(t, forms, 2)
	assert.Equal(t, 0, forms[0].Index())

	form, err := draft.Form(1)
	require.NoError(t, err)
	assert.Equal(t, instructions.Kind("stub"), form.Kind())

	require.NoError(t, draft.Remove(1))
	assert.Equal(t, []int{0}, draft.Assembler.Indices())
	assert.ErrorIs(t, draft.Remove(1), proposal.ErrFormNotFound)
	_, err = draft.Form(1)
	assert.ErrorIs(t, err, proposal.ErrFormNotFound)

	require.NoError(t, drafts.Delete(draft.ID))
	_, err = drafts.Get(draft.ID)
	assert.ErrorIs(t, err, proposal.ErrDraftNotFound)
	assert.ErrorIs(t, drafts.Delete(uuid.New()), proposal.ErrDraftNotFound)
}
