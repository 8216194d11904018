package assets

import (
	"github.com/gagliardetto/solana-go"
)

// AccountType is the kind of asset a governance controls.
type AccountType string

const (
	AccountTypeToken   AccountType = "token"
	AccountTypeSol     AccountType = "sol"
	AccountTypeMint    AccountType = "mint"
	AccountTypeProgram AccountType = "program"
	AccountTypeGeneric AccountType = "generic"
)

// Governance identifies the governance authority permitted to act on an account.
type Governance struct {
	Pubkey         solana.PublicKey `json:"pubkey"`
	ProgramID      solana.PublicKey `json:"program_id"`
	Realm          solana.PublicKey `json:"realm"`
	NativeTreasury solana.PublicKey `json:"native_treasury"`
}

// Equal reports whether g and other are the same governance.
func (g *Governance) Equal(other *Governance) bool {
	if g == nil || other == nil {
		return g == other
	}
	return g.Pubkey.Equals(other.Pubkey) && g.ProgramID.Equals(other.ProgramID)
}

// GovernedAccount is an on-chain account plus the governance that controls it.
type GovernedAccount struct {
	Pubkey     solana.PublicKey  `json:"pubkey"`
	Name       string            `json:"name,omitempty"`
	Type       AccountType       `json:"type"`
	Mint       *solana.PublicKey `json:"mint,omitempty"`
	Decimals   *uint8            `json:"decimals,omitempty"`
	Governance Governance        `json:"governance"`
}

// GovernanceRef returns a pointer to a copy of the account's governance.
func (a *GovernedAccount) GovernanceRef() *Governance {
	if a == nil {
		return nil
	}
	g := a.Governance
	return &g
}
