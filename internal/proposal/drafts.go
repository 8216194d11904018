package proposal

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dual-finance/governance-proposals/internal/instructions"
	"github.com/dual-finance/governance-proposals/internal/validation"
	"github.com/google/uuid"
)

var (
	// ErrDraftNotFound is returned for an unknown draft ID.
	ErrDraftNotFound = errors.New("proposal draft not found")
	// ErrFormNotFound is returned for an index with no mounted form.
	ErrFormNotFound = errors.New("instruction form not found")
)

// Draft is a proposal under construction: an assembler plus the forms
// registered with it.
type Draft struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	Assembler *Assembler

	env   instructions.Env
	mu    sync.RWMutex
	forms map[int]*Form
}

// Mount replaces the form at index with a new form for builder.
func (d *Draft) Mount(index int, builder instructions.Builder, values validation.Values) *Form {
	d.mu.Lock()
	defer d.mu.Unlock()
	form := NewForm(index, builder, d.Assembler, d.env, values)
	d.forms[index] = form
	return form
}

// Form returns the form at index.
func (d *Draft) Form(index int) (*Form, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	form, ok := d.forms[index]
	if !ok {
		return nil, ErrFormNotFound
	}
	return form, nil
}

// Remove unmounts the form at index.
func (d *Draft) Remove(index int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.forms[index]; !ok {
		return ErrFormNotFound
	}
	delete(d.forms, index)
	d.Assembler.Unregister(index)
	return nil
}

// Forms returns the mounted forms ordered by index.
func (d *Draft) Forms() []*Form {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*Form, 0, len(d.forms))
	for _, f := range d.forms {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index() < out[j].Index() })
	return out
}

// Drafts is an in-memory store of proposal drafts.
type Drafts struct {
	mu     sync.RWMutex
	drafts map[uuid.UUID]*Draft
	now    func() time.Time
}

// NewDrafts creates an empty store.
func NewDrafts() *Drafts {
	return &Drafts{
		drafts: make(map[uuid.UUID]*Draft),
		now:    time.Now,
	}
}

// Create starts a draft whose forms build against env.
func (s *Drafts) Create(name string, env instructions.Env) *Draft {
	d := &Draft{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: s.now().UTC(),
		Assembler: NewAssembler(),
		env:       env,
		forms:     make(map[int]*Form),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[d.ID] = d
	return d
}

// Get returns the draft with id.
func (s *Drafts) Get(id uuid.UUID) (*Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drafts[id]
	if !ok {
		return nil, ErrDraftNotFound
	}
	return d, nil
}

// Delete removes the draft with id.
func (s *Drafts) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drafts[id]; !ok {
		return ErrDraftNotFound
	}
	delete(s.drafts, id)
	return nil
}
