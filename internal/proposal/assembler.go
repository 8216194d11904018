package proposal

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dual-finance/governance-proposals/internal/assets"
	"github.com/dual-finance/governance-proposals/internal/constants"
	"github.com/dual-finance/governance-proposals/internal/instructions"
	"github.com/dual-finance/governance-proposals/internal/logger"
	"github.com/dual-finance/governance-proposals/internal/validation"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Getter builds the envelope of one sibling instruction on demand.
type Getter func(ctx context.Context) (*instructions.Envelope, error)

type registration struct {
	getter   Getter
	governed *assets.GovernedAccount
}

// Assembler holds the latest build function of every instruction in a
// proposal, keyed by the instruction's index among its siblings.
type Assembler struct {
	mu      sync.RWMutex
	entries map[int]registration
}

// NewAssembler creates an empty assembler.
func NewAssembler() *Assembler {
	return &Assembler{
		entries: make(map[int]registration),
	}
}

// Register sets the build function for index. The last registration wins.
func (a *Assembler) Register(index int, getter Getter, governed *assets.GovernedAccount) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries[index] = registration{getter: getter, governed: governed}
}

// Unregister drops the build function for index.
func (a *Assembler) Unregister(index int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.entries, index)
}

// Indices returns the registered indices in ascending order.
func (a *Assembler) Indices() []int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.indices()
}

func (a *Assembler) indices() []int {
	out := make([]int, 0, len(a.entries))
	for i := range a.entries {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// GovernedAccount returns the governed account registered for index.
func (a *Assembler) GovernedAccount(index int) (*assets.GovernedAccount, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	entry, ok := a.entries[index]
	if !ok {
		return nil, false
	}
	return entry.governed, true
}

// BuildAll runs every registered build function concurrently and returns the
// envelopes ordered by index. Any build error fails the whole call.
func (a *Assembler) BuildAll(ctx context.Context) ([]*instructions.Envelope, error) {
	built, err := a.buildAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*instructions.Envelope, len(built))
	for i, b := range built {
		out[i] = b.envelope
	}
	return out, nil
}

type builtEnvelope struct {
	index    int
	envelope *instructions.Envelope
}

func (a *Assembler) buildAll(ctx context.Context) ([]builtEnvelope, error) {
	a.mu.RLock()
	indices := a.indices()
	getters := make([]Getter, len(indices))
	for i, index := range indices {
		getters[i] = a.entries[index].getter
	}
	a.mu.RUnlock()

	built := make([]builtEnvelope, len(indices))
	g, ctx := errgroup.WithContext(ctx)
	for i := range indices {
		i := i // per-iteration copy (go directive is < 1.22)
		g.Go(func() error {
			envelope, err := getters[i](ctx)
			if err != nil {
				return fmt.Errorf("instruction %d: %w", indices[i], err)
			}
			if envelope == nil {
				return fmt.Errorf("instruction %d: build returned no envelope", indices[i])
			}
			built[i] = builtEnvelope{index: indices[i], envelope: envelope}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.FromContext(ctx).Error("Failed to build proposal instructions", zap.Error(err))
		return nil, err
	}
	return built, nil
}

// Transaction is a group of serialized instructions executed together.
type Transaction struct {
	Instructions []string `json:"instructions"`
}

// Proposal is the assembled result of every sibling instruction.
type Proposal struct {
	Valid          bool                           `json:"valid"`
	Governance     *assets.Governance             `json:"governance,omitempty"`
	Envelopes      []*instructions.Envelope       `json:"envelopes"`
	Transactions   []Transaction                  `json:"transactions"`
	Prerequisites  []string                       `json:"prerequisites"`
	InvalidIndices []int                          `json:"invalid_indices,omitempty"`
	FormErrors     map[int]validation.FieldErrors `json:"form_errors,omitempty"`
}

// Assemble builds every instruction and groups the results into proposal
// transactions. Sibling instructions must share the governance of the first
// instruction; instructions that do not are reported as invalid.
func (a *Assembler) Assemble(ctx context.Context) (*Proposal, error) {
	built, err := a.buildAll(ctx)
	if err != nil {
		return nil, err
	}

	p := &Proposal{
		Envelopes:     make([]*instructions.Envelope, 0, len(built)),
		Transactions:  []Transaction{},
		Prerequisites: []string{},
		FormErrors:    make(map[int]validation.FieldErrors),
	}

	for _, b := range built {
		p.Envelopes = append(p.Envelopes, b.envelope)

		if len(b.envelope.FormErrors) > 0 {
			p.FormErrors[b.index] = b.envelope.FormErrors.Clone()
		}
		if !b.envelope.IsValid {
			p.InvalidIndices = append(p.InvalidIndices, b.index)
			continue
		}

		if p.Governance == nil {
			p.Governance = b.envelope.Governance
		} else if !p.Governance.Equal(b.envelope.Governance) {
			p.InvalidIndices = append(p.InvalidIndices, b.index)
			continue
		}

		prerequisites, err := b.envelope.SerializedPrerequisites()
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", b.index, err)
		}
		p.Prerequisites = append(p.Prerequisites, prerequisites...)
		p.Transactions = append(p.Transactions, chunk(b.envelope)...)
	}

	p.Valid = len(p.InvalidIndices) == 0
	if !p.Valid {
		p.Transactions = []Transaction{}
		p.Prerequisites = []string{}
	}

	logger.FromContext(ctx).Info("Assembled proposal",
		zap.Bool("valid", p.Valid),
		zap.Int("instructions", len(built)),
		zap.Int("transactions", len(p.Transactions)),
		zap.Ints("invalid_indices", p.InvalidIndices),
	)

	return p, nil
}

// chunk groups an envelope's instructions into transactions. Envelopes that
// split by default are grouped ChunkBy at a time; others form one transaction.
func chunk(envelope *instructions.Envelope) []Transaction {
	serialized := envelope.SerializedInstructions()
	if len(serialized) == 0 {
		return nil
	}
	if !envelope.ChunkSplitByDefault {
		return []Transaction{{Instructions: serialized}}
	}

	size := envelope.ChunkBy
	if size <= 0 {
		size = constants.DefaultChunkBy
	}

	out := make([]Transaction, 0, (len(serialized)+size-1)/size)
	for start := 0; start < len(serialized); start += size {
		end := start + size
		if end > len(serialized) {
			end = len(serialized)
		}
		out = append(out, Transaction{Instructions: serialized[start:end]})
	}
	return out
}
