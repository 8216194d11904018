package instructions

import (
	"context"
	"fmt"

	"github.com/dual-finance/governance-proposals/internal/assets"
	"github.com/dual-finance/governance-proposals/internal/constants"
	"github.com/dual-finance/governance-proposals/internal/logger"
	"github.com/dual-finance/governance-proposals/internal/stakingoptions"
	"github.com/dual-finance/governance-proposals/internal/validation"
	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"go.uber.org/zap"
)

// Staking option form fields.
const (
	FieldSOName                = "soName"
	FieldOptionExpiration      = "optionExpirationUnixSeconds"
	FieldSubscriptionPeriodEnd = "subscriptionPeriodEndUnixSeconds"
	FieldNumTokens             = "numTokens"
	FieldLotSize               = "lotSize"
	FieldStrike                = "strike"
	FieldBaseTreasury          = "baseTreasury"
	FieldQuoteTreasury         = "quoteTreasury"
	FieldUserPk                = "userPk"
	FieldSOAuthority           = "soAuthority"
)

// StakingOptionBuilder configures a staking option, creates its strike and
// issues the options to a user.
type StakingOptionBuilder struct {
	client *stakingoptions.Client
	schema validation.Schema
	logger *zap.Logger
}

// NewStakingOptionBuilder creates a builder targeting the given program.
func NewStakingOptionBuilder(client *stakingoptions.Client) *StakingOptionBuilder {
	return &StakingOptionBuilder{
		client: client,
		schema: stakingOptionSchema(),
		logger: logger.L(),
	}
}

func stakingOptionSchema() validation.Schema {
	return validation.Schema{
		Name: string(KindStakingOption),
		Rules: []validation.Rule{
			{Field: FieldSOName, Label: "Name", Type: validation.TypeString, Required: true, MaxLength: constants.MaxSeedLength},
			{Field: FieldOptionExpiration, Label: "Option expiration", Type: validation.TypeInteger, Required: true, Positive: true},
			{
				Field: FieldSubscriptionPeriodEnd,
				Label: "Subscription period end",
				Type:  validation.TypeInteger,
				Custom: func(value interface{}, values validation.Values) error {
					end, err := values.Uint64(FieldSubscriptionPeriodEnd)
					if err != nil {
						return nil
					}
					expiration, err := values.Uint64(FieldOptionExpiration)
					if err != nil {
						return nil
					}
					if end > expiration {
						return fmt.Errorf("Subscription period end must not be after the option expiration")
					}
					return nil
				},
			},
			{Field: FieldNumTokens, Label: "Number of tokens", Type: validation.TypeInteger, Required: true, Positive: true},
			{Field: FieldLotSize, Label: "Lot size", Type: validation.TypeInteger, Required: true, Min: validation.Float64Ptr(1)},
			{Field: FieldStrike, Label: "Strike", Type: validation.TypeInteger, Required: true, Positive: true},
			{Field: FieldBaseTreasury, Label: "Base treasury", Type: validation.TypeAccount, Required: true},
			{Field: FieldQuoteTreasury, Label: "Quote treasury", Type: validation.TypePublicKey, Required: true},
			{Field: FieldUserPk, Label: "User", Type: validation.TypePublicKey, Required: true},
			{Field: FieldSOAuthority, Label: "Staking option authority", Type: validation.TypePublicKey},
		},
	}
}

func (b *StakingOptionBuilder) Kind() Kind {
	return KindStakingOption
}

func (b *StakingOptionBuilder) Schema() validation.Schema {
	return b.schema
}

func (b *StakingOptionBuilder) GovernedAccount(values validation.Values, lister assets.Lister) *assets.GovernedAccount {
	return lookupGoverned(values, FieldBaseTreasury, lister)
}

// Build produces config, init-strike, an optional create of the user's option
// token account, and issue, in that order.
func (b *StakingOptionBuilder) Build(ctx context.Context, values validation.Values, env Env) (*Envelope, error) {
	governed := b.GovernedAccount(values, env.Assets)
	invalid := func(errs validation.FieldErrors) *Envelope {
		return invalidEnvelope(errs, governed, 1, true)
	}

	errs := b.schema.Validate(values)
	requireGoverned(errs, b.schema, FieldBaseTreasury, governed)
	if len(errs) > 0 {
		return invalid(errs), nil
	}

	soName := values.String(FieldSOName)
	expiration, _ := values.Uint64(FieldOptionExpiration)
	numTokens, _ := values.Uint64(FieldNumTokens)
	lotSize, _ := values.Uint64(FieldLotSize)
	strike, _ := values.Uint64(FieldStrike)
	quoteTreasury, _ := values.PublicKey(FieldQuoteTreasury)
	user, _ := values.PublicKey(FieldUserPk)

	subscriptionEnd := expiration
	if !values.IsEmpty(FieldSubscriptionPeriodEnd) {
		subscriptionEnd, _ = values.Uint64(FieldSubscriptionPeriodEnd)
	}

	base, err := resolveTokenAccount(ctx, env.Reader, errs, b.schema, FieldBaseTreasury, governed.Pubkey)
	if err != nil {
		return nil, err
	}
	quote, err := resolveTokenAccount(ctx, env.Reader, errs, b.schema, FieldQuoteTreasury, quoteTreasury)
	if err != nil {
		return nil, err
	}
	if base == nil || quote == nil {
		return invalid(errs), nil
	}

	authority := base.Owner
	if !values.IsEmpty(FieldSOAuthority) {
		authority, _ = values.PublicKey(FieldSOAuthority)
	}

	config, err := b.client.Config(stakingoptions.ConfigParams{
		OptionExpiration:   expiration,
		SubscriptionPeriod: subscriptionEnd,
		NumTokens:          numTokens,
		LotSize:            lotSize,
		SOName:             soName,
		Authority:          authority,
		BaseMint:           base.Mint,
		BaseAccount:        base.Address,
		QuoteMint:          quote.Mint,
		QuoteAccount:       quote.Address,
	})
	if err != nil {
		return nil, err
	}

	initStrike, err := b.client.InitStrike(strike, soName, authority, base.Mint)
	if err != nil {
		return nil, err
	}

	state, err := b.client.StateAddress(soName, base.Mint)
	if err != nil {
		return nil, err
	}
	optionMint, err := b.client.OptionMintAddress(state, strike)
	if err != nil {
		return nil, err
	}
	userSOAccount, _, err := solana.FindAssociatedTokenAddress(user, optionMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive user option account: %w", err)
	}

	ixs := []solana.Instruction{config, initStrike}

	if !accountExists(ctx, env.Reader, b.logger, userSOAccount) {
		createATA, err := associatedtokenaccount.NewCreateInstruction(authority, user, optionMint).ValidateAndBuild()
		if err != nil {
			return nil, fmt.Errorf("failed to build create account instruction: %w", err)
		}
		ixs = append(ixs, createATA)
	}

	issue, err := b.client.Issue(stakingoptions.IssueParams{
		Amount:        numTokens,
		Strike:        strike,
		SOName:        soName,
		Authority:     authority,
		BaseMint:      base.Mint,
		UserSOAccount: userSOAccount,
	})
	if err != nil {
		return nil, err
	}
	ixs = append(ixs, issue)

	serialized, err := serializeAll(ixs)
	if err != nil {
		return nil, err
	}

	b.logger.Debug("Built staking option instructions",
		zap.String("so_name", soName),
		zap.String("base_mint", base.Mint.String()),
		zap.String("quote_mint", quote.Mint.String()),
		zap.Int("instructions", len(serialized)),
	)

	return &Envelope{
		IsValid:                          true,
		Governance:                       governed.GovernanceRef(),
		AdditionalSerializedInstructions: serialized,
		ChunkBy:                          1,
		ChunkSplitByDefault:              true,
		FormErrors:                       validation.FieldErrors{},
	}, nil
}
