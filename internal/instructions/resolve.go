package instructions

import (
	"context"
	"fmt"

	"github.com/dual-finance/governance-proposals/internal/assets"
	"github.com/dual-finance/governance-proposals/internal/client/solanarpc"
	"github.com/dual-finance/governance-proposals/internal/validation"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// lookupGoverned returns the governed account referenced by field, or nil.
func lookupGoverned(values validation.Values, field string, lister assets.Lister) *assets.GovernedAccount {
	if lister == nil || values.IsEmpty(field) {
		return nil
	}
	pubkey, err := values.PublicKey(field)
	if err != nil {
		return nil
	}
	account, ok := lister.Lookup(pubkey)
	if !ok {
		return nil
	}
	return account
}

// requireGoverned records an unresolved error when field does not name a
// governed account. Fields that already failed validation are left alone.
func requireGoverned(errs validation.FieldErrors, schema validation.Schema, field string, governed *assets.GovernedAccount) {
	if governed != nil || errs.Has(field) {
		return
	}
	errs.Add(field, validation.KindUnresolved, fmt.Sprintf("%s is not a governed account", label(schema, field)))
}

// resolveTokenAccount reads a token account. A missing or non-token account is
// recorded against field and yields nil; transport failures are returned.
func resolveTokenAccount(ctx context.Context, reader solanarpc.AccountReader, errs validation.FieldErrors, schema validation.Schema, field string, address solana.PublicKey) (*solanarpc.TokenAccount, error) {
	account, err := reader.GetTokenAccount(ctx, address)
	switch {
	case errors.Is(err, solanarpc.ErrAccountNotFound):
		errs.Add(field, validation.KindUnresolved, fmt.Sprintf("%s does not exist", label(schema, field)))
		return nil, nil
	case errors.Is(err, solanarpc.ErrNotTokenAccount):
		errs.Add(field, validation.KindUnresolved, fmt.Sprintf("%s is not a token account", label(schema, field)))
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("failed to resolve %s: %w", field, err)
	}
	return account, nil
}

// resolveMint returns the mint of a governed token account, preferring the
// catalog and falling back to the chain. ok is false when the mint could not
// be resolved and an error was recorded against field.
func resolveMint(ctx context.Context, reader solanarpc.AccountReader, errs validation.FieldErrors, schema validation.Schema, field string, governed *assets.GovernedAccount) (mint solana.PublicKey, ok bool, err error) {
	if governed.Mint != nil {
		return *governed.Mint, true, nil
	}
	account, err := resolveTokenAccount(ctx, reader, errs, schema, field, governed.Pubkey)
	if err != nil || account == nil {
		return solana.PublicKey{}, false, err
	}
	return account.Mint, true, nil
}

// resolveDecimals returns the decimals of mint, preferring the catalog.
func resolveDecimals(ctx context.Context, reader solanarpc.AccountReader, errs validation.FieldErrors, schema validation.Schema, field string, governed *assets.GovernedAccount, mint solana.PublicKey) (decimals uint8, ok bool, err error) {
	if governed.Decimals != nil {
		return *governed.Decimals, true, nil
	}
	info, err := reader.GetMint(ctx, mint)
	switch {
	case errors.Is(err, solanarpc.ErrAccountNotFound), errors.Is(err, solanarpc.ErrNotTokenAccount):
		errs.Add(field, validation.KindUnresolved, fmt.Sprintf("%s has no resolvable mint", label(schema, field)))
		return 0, false, nil
	case err != nil:
		return 0, false, fmt.Errorf("failed to resolve mint of %s: %w", field, err)
	}
	return info.Decimals, true, nil
}

// accountExists is a best-effort existence check: lookup failures count as
// absent.
func accountExists(ctx context.Context, reader solanarpc.AccountReader, log *zap.Logger, address solana.PublicKey) bool {
	exists, err := reader.AccountExists(ctx, address)
	if err != nil {
		log.Warn("Existence check failed, treating account as absent",
			zap.String("address", address.String()),
			zap.Error(err),
		)
		return false
	}
	return exists
}

func label(schema validation.Schema, field string) string {
	if rule, ok := schema.Rule(field); ok && rule.Label != "" {
		return rule.Label
	}
	return field
}
