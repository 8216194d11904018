package instructions

import (
	"context"

	"github.com/dual-finance/governance-proposals/internal/assets"
	"github.com/dual-finance/governance-proposals/internal/stakingoptions"
	"github.com/dual-finance/governance-proposals/internal/validation"
	"github.com/gagliardetto/solana-go"
)

// Airdrop close form fields.
const (
	FieldAirdropState = "airdropState"
	FieldRecipient    = "recipient"
	FieldTreasury     = "treasury"
)

// AirdropCloseBuilder closes an airdrop and sweeps unclaimed tokens to a
// recipient.
type AirdropCloseBuilder struct {
	client *stakingoptions.AirdropClient
	schema validation.Schema
}

func NewAirdropCloseBuilder(client *stakingoptions.AirdropClient) *AirdropCloseBuilder {
	return &AirdropCloseBuilder{
		client: client,
		schema: validation.Schema{
			Name: string(KindAirdropClose),
			Rules: []validation.Rule{
				{Field: FieldAirdropState, Label: "Airdrop state", Type: validation.TypePublicKey, Required: true},
				{Field: FieldRecipient, Label: "Recipient", Type: validation.TypePublicKey, Required: true},
				{Field: FieldTreasury, Label: "Treasury", Type: validation.TypeAccount, Required: true},
			},
		},
	}
}

func (b *AirdropCloseBuilder) Kind() Kind {
	return KindAirdropClose
}

func (b *AirdropCloseBuilder) Schema() validation.Schema {
	return b.schema
}

func (b *AirdropCloseBuilder) GovernedAccount(values validation.Values, lister assets.Lister) *assets.GovernedAccount {
	return lookupGoverned(values, FieldTreasury, lister)
}

// Build closes the airdrop with the treasury's owner as authority.
func (b *AirdropCloseBuilder) Build(ctx context.Context, values validation.Values, env Env) (*Envelope, error) {
	governed := b.GovernedAccount(values, env.Assets)

	errs := b.schema.Validate(values)
	requireGoverned(errs, b.schema, FieldTreasury, governed)
	if len(errs) > 0 {
		return invalidEnvelope(errs, governed, 0, false), nil
	}

	state, _ := values.PublicKey(FieldAirdropState)
	recipient, _ := values.PublicKey(FieldRecipient)

	treasury, err := resolveTokenAccount(ctx, env.Reader, errs, b.schema, FieldTreasury, governed.Pubkey)
	if err != nil {
		return nil, err
	}
	if treasury == nil {
		return invalidEnvelope(errs, governed, 0, false), nil
	}

	ix, err := b.client.Close(treasury.Owner, state, recipient)
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
		FormErrors:                       validation.FieldErrors{},
	}, nil
}
