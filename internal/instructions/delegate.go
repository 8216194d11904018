package instructions

import (
	"context"
	"errors"
	"fmt"

	"github.com/dual-finance/governance-proposals/internal/assets"
	"github.com/dual-finance/governance-proposals/internal/governance"
	"github.com/dual-finance/governance-proposals/internal/logger"
	"github.com/dual-finance/governance-proposals/internal/validation"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// Governance token form fields.
const (
	FieldRealm           = "realm"
	FieldDelegateToken   = "delegateToken"
	FieldDelegateAccount = "delegateAccount"
	FieldSource          = "source"
)

// Delegation sources.
const (
	SourceTreasury = "treasury"
	SourceWallet   = "wallet"
)

func realmRule() validation.Rule {
	return validation.Rule{Field: FieldRealm, Label: "Realm", Type: validation.TypePublicKey, Required: true}
}

func delegateTokenRule() validation.Rule {
	return validation.Rule{Field: FieldDelegateToken, Label: "Governance token treasury", Type: validation.TypeAccount, Required: true}
}

// DelegateBuilder assigns the voting delegate of a token owner record.
type DelegateBuilder struct {
	schema validation.Schema
	logger *zap.Logger
}

func NewDelegateBuilder() *DelegateBuilder {
	return &DelegateBuilder{
		schema: validation.Schema{
			Name: string(KindDelegate),
			Rules: []validation.Rule{
				realmRule(),
				delegateTokenRule(),
				{Field: FieldDelegateAccount, Label: "Delegate", Type: validation.TypePublicKey, Required: true},
				{Field: FieldSource, Label: "Source", Type: validation.TypeString, AllowedValues: []string{SourceTreasury, SourceWallet}},
			},
		},
		logger: logger.L(),
	}
}

func (b *DelegateBuilder) Kind() Kind {
	return KindDelegate
}

func (b *DelegateBuilder) Schema() validation.Schema {
	return b.schema
}

func (b *DelegateBuilder) GovernedAccount(values validation.Values, lister assets.Lister) *assets.GovernedAccount {
	return lookupGoverned(values, FieldDelegateToken, lister)
}

// Build delegates the token owner record of the governance's native treasury,
// or of the connected wallet when source is "wallet". Wallet delegations are
// signed by the wallet before the proposal is created, so they are returned as
// prerequisites rather than proposal instructions.
func (b *DelegateBuilder) Build(ctx context.Context, values validation.Values, env Env) (*Envelope, error) {
	governed := b.GovernedAccount(values, env.Assets)

	errs := b.schema.Validate(values)
	requireGoverned(errs, b.schema, FieldDelegateToken, governed)

	source := values.String(FieldSource)
	if source == "" {
		source = SourceTreasury
	}
	if source == SourceWallet && env.Wallet == nil {
		errs.Add(FieldSource, validation.KindUnresolved, "Connect a wallet to delegate from it")
	}
	if len(errs) > 0 {
		return invalidEnvelope(errs, governed, 1, false), nil
	}

	realm, _ := values.PublicKey(FieldRealm)
	delegate, _ := values.PublicKey(FieldDelegateAccount)

	mint, ok, err := resolveMint(ctx, env.Reader, errs, b.schema, FieldDelegateToken, governed)
	if err != nil {
		return nil, err
	}
	if !ok {
		return invalidEnvelope(errs, governed, 1, false), nil
	}

	programID := governed.Governance.ProgramID
	owner := governed.Governance.NativeTreasury
	if source == SourceWallet {
		owner = *env.Wallet
	}

	ix, err := governance.SetGovernanceDelegate(governance.SetGovernanceDelegateParams{
		ProgramID:           programID,
		ProgramVersion:      env.versions().ProgramVersion(ctx, programID),
		Realm:               realm,
		GoverningTokenMint:  mint,
		GoverningTokenOwner: owner,
		GovernanceAuthority: owner,
		NewDelegate:         &delegate,
	})
	if err != nil {
		return nil, err
	}

	envelope := &Envelope{
		IsValid:                          true,
		Governance:                       governed.GovernanceRef(),
		AdditionalSerializedInstructions: []string{},
		ChunkBy:                          1,
		FormErrors:                       validation.FieldErrors{},
	}

	if source == SourceWallet {
		envelope.PrerequisiteInstructions = []solana.Instruction{ix}
	} else {
		serialized, err := serializeAll([]solana.Instruction{ix})
		if err != nil {
			return nil, err
		}
		envelope.AdditionalSerializedInstructions = serialized
	}

	b.logger.Debug("Built delegate instruction",
		zap.String("source", source),
		zap.String("owner", owner.String()),
		zap.String("delegate", delegate.String()),
	)

	return envelope, nil
}

// VoteDepositBuilder deposits treasury tokens into the realm so the governance
// can vote with them.
type VoteDepositBuilder struct {
	schema validation.Schema
	logger *zap.Logger
}

func NewVoteDepositBuilder() *VoteDepositBuilder {
	return &VoteDepositBuilder{
		schema: validation.Schema{
			Name: string(KindVoteDeposit),
			Rules: []validation.Rule{
				realmRule(),
				delegateTokenRule(),
				{Field: FieldNumTokens, Label: "Number of tokens", Type: validation.TypeNumber, Required: true, Positive: true},
			},
		},
		logger: logger.L(),
	}
}

func (b *VoteDepositBuilder) Kind() Kind {
	return KindVoteDeposit
}

func (b *VoteDepositBuilder) Schema() validation.Schema {
	return b.schema
}

func (b *VoteDepositBuilder) GovernedAccount(values validation.Values, lister assets.Lister) *assets.GovernedAccount {
	return lookupGoverned(values, FieldDelegateToken, lister)
}

// Build produces an optional CreateTokenOwnerRecord followed by
// DepositGoverningTokens, both on behalf of the native treasury.
func (b *VoteDepositBuilder) Build(ctx context.Context, values validation.Values, env Env) (*Envelope, error) {
	governed := b.GovernedAccount(values, env.Assets)

	errs := b.schema.Validate(values)
	requireGoverned(errs, b.schema, FieldDelegateToken, governed)
	if len(errs) > 0 {
		return invalidEnvelope(errs, governed, 1, false), nil
	}

	realm, _ := values.PublicKey(FieldRealm)
	numTokens, _ := values.Decimal(FieldNumTokens)

	mint, ok, err := resolveMint(ctx, env.Reader, errs, b.schema, FieldDelegateToken, governed)
	if err != nil {
		return nil, err
	}
	if !ok {
		return invalidEnvelope(errs, governed, 1, false), nil
	}
	decimals, ok, err := resolveDecimals(ctx, env.Reader, errs, b.schema, FieldDelegateToken, governed, mint)
	if err != nil {
		return nil, err
	}
	if !ok {
		return invalidEnvelope(errs, governed, 1, false), nil
	}

	amount, err := validation.NaturalAmount(numTokens, decimals)
	if err != nil {
		errs.Add(FieldNumTokens, validation.KindRange, fmt.Sprintf("Number of tokens %s", err))
		return invalidEnvelope(errs, governed, 1, false), nil
	}

	programID := governed.Governance.ProgramID
	treasury := governed.Governance.NativeTreasury
	version := env.versions().ProgramVersion(ctx, programID)

	record, err := governance.TokenOwnerRecordAddress(programID, realm, mint, treasury)
	if err != nil {
		return nil, fmt.Errorf("failed to derive token owner record: %w", err)
	}

	var ixs []solana.Instruction
	if !accountExists(ctx, env.Reader, b.logger, record) {
		b.logger.Info("Creating token owner record",
			zap.String("record", record.String()),
			zap.String("realm", realm.String()),
		)
		create, err := governance.CreateTokenOwnerRecord(governance.CreateTokenOwnerRecordParams{
			ProgramID:           programID,
			ProgramVersion:      version,
			Realm:               realm,
			GoverningTokenOwner: treasury,
			GoverningTokenMint:  mint,
			Payer:               treasury,
		})
		if errors.Is(err, governance.ErrUnsupportedProgramVersion) {
			errs.Add(FieldRealm, validation.KindInvalid, fmt.Sprintf(
				"Realm has no token owner record for the treasury and governance program v%d cannot create one", version))
			return invalidEnvelope(errs, governed, 1, false), nil
		}
		if err != nil {
			return nil, err
		}
		ixs = append(ixs, create)
	}

	deposit, err := governance.DepositGoverningTokens(governance.DepositGoverningTokensParams{
		ProgramID:                     programID,
		ProgramVersion:                version,
		Realm:                         realm,
		GoverningTokenSource:          governed.Pubkey,
		GoverningTokenMint:            mint,
		GoverningTokenOwner:           treasury,
		GoverningTokenSourceAuthority: treasury,
		Payer:                         treasury,
		Amount:                        amount,
	})
	if err != nil {
		return nil, err
	}
	ixs = append(ixs, deposit)

	serialized, err := serializeAll(ixs)
	if err != nil {
		return nil, err
	}

	return &Envelope{
		IsValid:                          true,
		Governance:                       governed.GovernanceRef(),
		AdditionalSerializedInstructions: serialized,
		ChunkBy:                          1,
		FormErrors:                       validation.FieldErrors{},
	}, nil
}

// WithdrawBuilder returns the native treasury's deposited governance tokens to
// the treasury token account.
type WithdrawBuilder struct {
	schema validation.Schema
}

func NewWithdrawBuilder() *WithdrawBuilder {
	return &WithdrawBuilder{
		schema: validation.Schema{
			Name:  string(KindWithdraw),
			Rules: []validation.Rule{realmRule(), delegateTokenRule()},
		},
	}
}

func (b *WithdrawBuilder) Kind() Kind {
	return KindWithdraw
}

func (b *WithdrawBuilder) Schema() validation.Schema {
	return b.schema
}

func (b *WithdrawBuilder) GovernedAccount(values validation.Values, lister assets.Lister) *assets.GovernedAccount {
	return lookupGoverned(values, FieldDelegateToken, lister)
}

func (b *WithdrawBuilder) Build(ctx context.Context, values validation.Values, env Env) (*Envelope, error) {
	governed := b.GovernedAccount(values, env.Assets)

	errs := b.schema.Validate(values)
	requireGoverned(errs, b.schema, FieldDelegateToken, governed)
	if len(errs) > 0 {
		return invalidEnvelope(errs, governed, 1, false), nil
	}

	realm, _ := values.PublicKey(FieldRealm)
	mint, ok, err := resolveMint(ctx, env.Reader, errs, b.schema, FieldDelegateToken, governed)
	if err != nil {
		return nil, err
	}
	if !ok {
		return invalidEnvelope(errs, governed, 1, false), nil
	}

	programID := governed.Governance.ProgramID
	ix, err := governance.WithdrawGoverningTokens(governance.WithdrawGoverningTokensParams{
		ProgramID:                 programID,
		ProgramVersion:            env.versions().ProgramVersion(ctx, programID),
		Realm:                     realm,
		GoverningTokenDestination: governed.Pubkey,
		GoverningTokenMint:        mint,
		GoverningTokenOwner:       governed.Governance.NativeTreasury,
	})
	if err != nil {
		return nil, err
	}

	serialized, err := serializeAll([]solana.Instruction{ix})
	if err != nil {
		return nil, err
	}

	return &Envelope{
		IsValid:                          true,
		Governance:                       governed.GovernanceRef(),
		AdditionalSerializedInstructions: serialized,
		ChunkBy:                          1,
		FormErrors:                       validation.FieldErrors{},
	}, nil
}
