package proposal

import (
	"context"
	"sync"

	"github.com/dual-finance/governance-proposals/internal/assets"
	"github.com/dual-finance/governance-proposals/internal/instructions"
	"github.com/dual-finance/governance-proposals/internal/validation"
)

// Form is the editable state of one instruction in a proposal. Every edit
// clears the field errors and re-registers a build function with the
// assembler that captures a snapshot of the values.
type Form struct {
	index     int
	builder   instructions.Builder
	assembler *Assembler
	env       instructions.Env

	mu       sync.Mutex
	values   validation.Values
	errors   validation.FieldErrors
	governed *assets.GovernedAccount
	version  uint64
}

// NewForm mounts a form for builder at index and registers its build function.
func NewForm(index int, builder instructions.Builder, assembler *Assembler, env instructions.Env, values validation.Values) *Form {
	f := &Form{
		index:     index,
		builder:   builder,
		assembler: assembler,
		env:       env,
		values:    validation.Values{},
		errors:    validation.FieldErrors{},
	}
	f.SetValues(values)
	return f
}

// Index returns the form's position among its sibling instructions.
func (f *Form) Index() int {
	return f.index
}

// Kind returns the instruction type the form builds.
func (f *Form) Kind() instructions.Kind {
	return f.builder.Kind()
}

// SetField sets one field.
func (f *Form) SetField(name string, value interface{}) {
	f.update(validation.Values{name: value})
}

// SetValues merges values into the form.
func (f *Form) SetValues(values validation.Values) {
	f.update(values)
}

func (f *Form) update(values validation.Values) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.values = f.values.Merge(values)
	f.errors = validation.FieldErrors{}
	f.governed = f.builder.GovernedAccount(f.values, f.env.Assets)
	f.version++

	f.assembler.Register(f.index, f.getter(f.values.Clone(), f.version), f.governed)
}

// getter returns a build function over an immutable snapshot of the values.
// Its field errors are kept only if the form was not edited in the meantime.
func (f *Form) getter(snapshot validation.Values, version uint64) Getter {
	return func(ctx context.Context) (*instructions.Envelope, error) {
		envelope, err := f.builder.Build(ctx, snapshot, f.env)
		if err != nil {
			return nil, err
		}

		f.mu.Lock()
		if f.version == version {
			f.errors = envelope.FormErrors.Clone()
		}
		f.mu.Unlock()

		return envelope, nil
	}
}

// Build runs the form's current build function directly.
func (f *Form) Build(ctx context.Context) (*instructions.Envelope, error) {
	f.mu.Lock()
	getter := f.getter(f.values.Clone(), f.version)
	f.mu.Unlock()
	return getter(ctx)
}

// Errors returns the field errors of the latest build.
func (f *Form) Errors() validation.FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errors.Clone()
}

// Values returns a copy of the form values.
func (f *Form) Values() validation.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values.Clone()
}

// GovernedAccount returns the account whose governance executes the
// instruction, derived from the current values.
func (f *Form) GovernedAccount() *assets.GovernedAccount {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.governed == nil {
		return nil
	}
	g := *f.governed
	return &g
}

// Version counts the edits applied to the form.
func (f *Form) Version() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.version
}
