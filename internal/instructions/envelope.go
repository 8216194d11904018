package instructions

import (
	"context"

	"github.com/dual-finance/governance-proposals/internal/assets"
	"github.com/dual-finance/governance-proposals/internal/client/solanarpc"
	"github.com/dual-finance/governance-proposals/internal/governance"
	"github.com/dual-finance/governance-proposals/internal/validation"
	"github.com/gagliardetto/solana-go"
)

// Kind names an instruction type a proposal form can build.
type Kind string

const (
	KindStakingOption Kind = "dual_staking_option"
	KindDelegate      Kind = "dual_delegate"
	KindVoteDeposit   Kind = "dual_vote_deposit"
	KindWithdraw      Kind = "dual_withdraw"
	KindAirdropClose  Kind = "dual_airdrop_close"
)

// Envelope is the result of building one proposal instruction. Instruction
// lists of an invalid envelope must never be submitted.
type Envelope struct {
	SerializedInstruction            string                 `json:"serialized_instruction"`
	IsValid                          bool                   `json:"is_valid"`
	Governance                       *assets.Governance     `json:"governance,omitempty"`
	AdditionalSerializedInstructions []string               `json:"additional_serialized_instructions"`
	PrerequisiteInstructions         []solana.Instruction   `json:"-"`
	ChunkBy                          int                    `json:"chunk_by,omitempty"`
	ChunkSplitByDefault              bool                   `json:"chunk_split_by_default,omitempty"`
	FormErrors                       validation.FieldErrors `json:"form_errors,omitempty"`
}

// SerializedInstructions returns the primary instruction, when set, followed by
// the additional instructions. It is empty for invalid envelopes.
func (e *Envelope) SerializedInstructions() []string {
	if e == nil || !e.IsValid {
		return nil
	}
	out := make([]string, 0, len(e.AdditionalSerializedInstructions)+1)
	if e.SerializedInstruction != "" {
		out = append(out, e.SerializedInstruction)
	}
	return append(out, e.AdditionalSerializedInstructions...)
}

// SerializedPrerequisites encodes the prerequisite instructions.
func (e *Envelope) SerializedPrerequisites() ([]string, error) {
	if e == nil || !e.IsValid {
		return nil, nil
	}
	return serializeAll(e.PrerequisiteInstructions)
}

// Env carries the collaborators a build reads from.
type Env struct {
	Reader solanarpc.AccountReader
	Assets assets.Lister
	// Wallet is the connected wallet, nil when none is connected.
	Wallet *solana.PublicKey
	// Versions caches governance program versions across builds. A resolver
	// over Reader is created per build when nil.
	Versions *governance.VersionResolver
}

func (env Env) versions() *governance.VersionResolver {
	if env.Versions != nil {
		return env.Versions
	}
	return governance.NewVersionResolver(env.Reader)
}

// Builder turns a validated form into an Envelope.
type Builder interface {
	Kind() Kind
	Schema() validation.Schema
	// GovernedAccount returns the account whose governance executes the
	// instruction, or nil when the form does not reference one yet.
	GovernedAccount(values validation.Values, lister assets.Lister) *assets.GovernedAccount
	Build(ctx context.Context, values validation.Values, env Env) (*Envelope, error)
}

func invalidEnvelope(errs validation.FieldErrors, governed *assets.GovernedAccount, chunkBy int, splitByDefault bool) *Envelope {
	return &Envelope{
		IsValid:                          false,
		Governance:                       governed.GovernanceRef(),
		AdditionalSerializedInstructions: []string{},
		ChunkBy:                          chunkBy,
		ChunkSplitByDefault:              splitByDefault,
		FormErrors:                       errs,
	}
}

func serializeAll(ixs []solana.Instruction) ([]string, error) {
	out := make([]string, 0, len(ixs))
	for _, ix := range ixs {
		encoded, err := governance.SerializeInstructionToBase64(ix)
		if err != nil {
			return nil, err
		}
		out = append(out, encoded)
	}
	return out, nil
}
