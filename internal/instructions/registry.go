package instructions

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dual-finance/governance-proposals/internal/stakingoptions"
	"github.com/gagliardetto/solana-go"
)

// ErrUnknownKind is returned for an instruction type no builder handles.
var ErrUnknownKind = errors.New("unknown instruction type")

// Programs are the program deployments builders target.
type Programs struct {
	StakingOptions solana.PublicKey
	Airdrop        solana.PublicKey
}

// Registry maps instruction kinds to their builders.
type Registry struct {
	builders map[Kind]Builder
}

// NewRegistry creates a registry with every supported builder.
func NewRegistry(programs Programs) *Registry {
	return NewRegistryWith(
		NewStakingOptionBuilder(stakingoptions.NewClient(programs.StakingOptions)),
		NewDelegateBuilder(),
		NewVoteDepositBuilder(),
		NewWithdrawBuilder(),
		NewAirdropCloseBuilder(stakingoptions.NewAirdropClient(programs.Airdrop)),
	)
}

// NewRegistryWith creates a registry holding only builders.
func NewRegistryWith(builders ...Builder) *Registry {
	r := &Registry{builders: make(map[Kind]Builder, len(builders))}
	for _, b := range builders {
		r.builders[b.Kind()] = b
	}
	return r
}

// Get returns the builder for kind.
func (r *Registry) Get(kind Kind) (Builder, error) {
	b, ok := r.builders[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return b, nil
}

// Kinds lists the registered kinds in sorted order.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.builders))
	for k := range r.builders {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
