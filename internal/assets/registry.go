package assets

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/dual-finance/governance-proposals/internal/governance"
	"github.com/dual-finance/governance-proposals/internal/logger"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Lister enumerates the governed accounts a proposal may act on.
type Lister interface {
	ListGovernedAccounts(ctx context.Context, accountType AccountType) ([]GovernedAccount, error)
	Lookup(pubkey solana.PublicKey) (*GovernedAccount, bool)
}

// Registry is a static, in-memory Lister.
type Registry struct {
	mu       sync.RWMutex
	accounts map[solana.PublicKey]GovernedAccount
	logger   *zap.Logger
}

// NewRegistry creates a registry holding accounts.
func NewRegistry(accounts ...GovernedAccount) *Registry {
	r := &Registry{
		accounts: make(map[solana.PublicKey]GovernedAccount, len(accounts)),
		logger:   logger.L(),
	}
	for _, a := range accounts {
		r.accounts[a.Pubkey] = a
	}
	return r
}

// Add inserts or replaces an account.
func (r *Registry) Add(account GovernedAccount) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[account.Pubkey] = account
}

// ListGovernedAccounts returns accounts of accountType ordered by name, or all
// accounts when accountType is empty.
func (r *Registry) ListGovernedAccounts(ctx context.Context, accountType AccountType) ([]GovernedAccount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]GovernedAccount, 0, len(r.accounts))
	for _, a := range r.accounts {
		if accountType != "" && a.Type != accountType {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Pubkey.String() < out[j].Pubkey.String()
	})
	return out, nil
}

// Lookup finds an account by address.
func (r *Registry) Lookup(pubkey solana.PublicKey) (*GovernedAccount, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[pubkey]
	if !ok {
		return nil, false
	}
	return &a, true
}

// fileAccount is the YAML shape of one governed account.
type fileAccount struct {
	Pubkey     string `yaml:"pubkey"`
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	Mint       string `yaml:"mint"`
	Decimals   *uint8 `yaml:"decimals"`
	Governance struct {
		Pubkey         string `yaml:"pubkey"`
		ProgramID      string `yaml:"program_id"`
		Realm          string `yaml:"realm"`
		NativeTreasury string `yaml:"native_treasury"`
	} `yaml:"governance"`
}

type fileRegistry struct {
	Accounts []fileAccount `yaml:"accounts"`
}

// LoadRegistry reads a YAML catalog of governed accounts.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read governed accounts file: %w", err)
	}
	return ParseRegistry(data)
}

// ParseRegistry decodes a YAML catalog of governed accounts. A missing
// native_treasury is derived from the governance address.
func ParseRegistry(data []byte) (*Registry, error) {
	var file fileRegistry
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse governed accounts: %w", err)
	}

	registry := NewRegistry()
	for i, fa := range file.Accounts {
		account, err := fa.toGovernedAccount()
		if err != nil {
			return nil, fmt.Errorf("account %d: %w", i, err)
		}
		registry.Add(account)
	}

	registry.logger.Info("Loaded governed accounts",
		zap.Int("count", len(file.Accounts)),
	)

	return registry, nil
}

func (fa fileAccount) toGovernedAccount() (GovernedAccount, error) {
	pubkey, err := solana.PublicKeyFromBase58(fa.Pubkey)
	if err != nil {
		return GovernedAccount{}, fmt.Errorf("invalid pubkey %q: %w", fa.Pubkey, err)
	}

	account := GovernedAccount{
		Pubkey:   pubkey,
		Name:     fa.Name,
		Type:     AccountType(fa.Type),
		Decimals: fa.Decimals,
	}
	if account.Type == "" {
		account.Type = AccountTypeGeneric
	}

	if fa.Mint != "" {
		mint, err := solana.PublicKeyFromBase58(fa.Mint)
		if err != nil {
			return GovernedAccount{}, fmt.Errorf("invalid mint %q: %w", fa.Mint, err)
		}
		account.Mint = &mint
	}

	if account.Governance.Pubkey, err = solana.PublicKeyFromBase58(fa.Governance.Pubkey); err != nil {
		return GovernedAccount{}, fmt.Errorf("invalid governance pubkey %q: %w", fa.Governance.Pubkey, err)
	}
	if account.Governance.ProgramID, err = solana.PublicKeyFromBase58(fa.Governance.ProgramID); err != nil {
		return GovernedAccount{}, fmt.Errorf("invalid governance program_id %q: %w", fa.Governance.ProgramID, err)
	}
	if account.Governance.Realm, err = solana.PublicKeyFromBase58(fa.Governance.Realm); err != nil {
		return GovernedAccount{}, fmt.Errorf("invalid governance realm %q: %w", fa.Governance.Realm, err)
	}

	if fa.Governance.NativeTreasury != "" {
		if account.Governance.NativeTreasury, err = solana.PublicKeyFromBase58(fa.Governance.NativeTreasury); err != nil {
			return GovernedAccount{}, fmt.Errorf("invalid native_treasury %q: %w", fa.Governance.NativeTreasury, err)
		}
	} else {
		treasury, err := governance.NativeTreasuryAddress(account.Governance.ProgramID, account.Governance.Pubkey)
		if err != nil {
			return GovernedAccount{}, fmt.Errorf("failed to derive native treasury: %w", err)
		}
		account.Governance.NativeTreasury = treasury
	}

	return account, nil
}
