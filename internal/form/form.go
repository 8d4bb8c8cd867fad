package form

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"jobby-backend/internal/domain"
	"jobby-backend/pkg/query"
	"jobby-backend/pkg/validation"
)

type editable[V any] interface {
	Equal(V) bool
	Rebase(old, fresh V) V
	Clone() V
}

// binding holds what the profile and contact forms share: the lifecycle,
// the seeded snapshot, the edited values and the last field errors.
type binding[V editable[V]] struct {
	name     string
	query    *query.Query[*domain.CandidateProfile]
	notifier Notifier
	log      *slog.Logger
	seedFrom func(*domain.CandidateProfile) V

	mu        sync.Mutex
	state     State
	seeded    bool
	profileID int64
	snapshot  V
	values    V
	errs      validation.FieldErrors
	onSeed    func(p *domain.CandidateProfile)
	// pending is the latest refetch delivered while a load was in flight.
	pending *domain.CandidateProfile

	unsubscribe func()
}

func (b *binding[V]) init() {
	if b.log == nil {
		b.log = slog.Default()
	}
	if b.notifier == nil {
		b.notifier = NotifierFunc(func(Notification) {})
	}
	b.unsubscribe = b.query.Subscribe(b.reseed)
}

// load fetches the shared profile and seeds the form from it.
func (b *binding[V]) load(ctx context.Context) error {
	b.mu.Lock()
	if b.state == StateSubmitting {
		b.mu.Unlock()
		return ErrNotReady
	}
	b.state = StateLoading
	b.pending = nil
	b.mu.Unlock()

	p, err := b.query.Get(ctx)
	if err != nil {
		b.mu.Lock()
		b.state = StateIdle
		b.pending = nil
		b.mu.Unlock()
		b.log.Error("Failed to load profile", "form", b.name, "error", err)
		b.notifier.Notify(failure("Could not load profile", err))
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateReady
	// A refetch that landed during the load is newer than what the load read.
	if b.pending != nil {
		p, b.pending = b.pending, nil
	}
	if p != nil {
		b.seedLocked(p, false)
	}
	return nil
}

// reseed is the query subscriber: a fresh profile replaces the snapshot and
// every field the user has not touched.
func (b *binding[V]) reseed(p *domain.CandidateProfile) {
	if p == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case StateIdle:
		return
	case StateLoading:
		b.pending = p
		return
	}
	b.seedLocked(p, b.seeded)
}

func (b *binding[V]) seedLocked(p *domain.CandidateProfile, keepEdits bool) {
	fresh := b.seedFrom(p)
	if keepEdits {
		b.values = b.values.Rebase(b.snapshot, fresh)
	} else {
		b.values = fresh.Clone()
	}
	b.snapshot = fresh
	b.profileID = p.ID
	b.seeded = true
	if b.onSeed != nil {
		b.onSeed(p)
	}
}

// submit validates the current values and sends them with send. Field
// errors never reach send.
func (b *binding[V]) submit(ctx context.Context, check func(V, int64) error, send func(context.Context, V, int64) error, okTitle, failTitle string) error {
	b.mu.Lock()
	if b.state != StateReady {
		b.mu.Unlock()
		return ErrNotReady
	}
	if !b.seeded {
		b.mu.Unlock()
		return ErrNoProfile
	}
	if b.values.Equal(b.snapshot) {
		b.mu.Unlock()
		return ErrNotDirty
	}
	values, id := b.values.Clone(), b.profileID
	if err := check(values, id); err != nil {
		var fe validation.FieldErrors
		if errors.As(err, &fe) {
			b.errs = fe
		}
		b.mu.Unlock()
		return err
	}
	b.errs = nil
	b.state = StateSubmitting
	b.mu.Unlock()

	err := send(ctx, values, id)

	b.mu.Lock()
	b.state = StateReady
	var fe validation.FieldErrors
	if errors.As(err, &fe) {
		b.errs = fe
	}
	if err == nil {
		// The submitted values are what the server now holds; only edits made
		// while the request was in flight stay dirty.
		b.snapshot = values
	}
	b.mu.Unlock()

	if err != nil {
		b.log.Error("Form submit failed", "form", b.name, "profile_id", id, "error", err)
		b.notifier.Notify(failure(failTitle, err))
		return err
	}

	b.notifier.Notify(success(okTitle))
	b.invalidate(ctx)
	return nil
}

func (b *binding[V]) invalidate(ctx context.Context) {
	if err := b.query.Invalidate(ctx); err != nil {
		b.log.Warn("Profile refetch after write failed", "form", b.name, "error", err)
	}
}

func (b *binding[V]) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Loading reports whether inputs should render as placeholders.
func (b *binding[V]) Loading() bool {
	s := b.State()
	return s == StateIdle || s == StateLoading
}

func (b *binding[V]) Values() V {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.values.Clone()
}

// Update applies fn to the editable values.
func (b *binding[V]) Update(fn func(v *V)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(&b.values)
}

// Reset discards edits and returns to the last seeded snapshot.
func (b *binding[V]) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values = b.snapshot.Clone()
	b.errs = nil
}

func (b *binding[V]) Dirty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seeded && !b.values.Equal(b.snapshot)
}

// CanSubmit gates the save control.
func (b *binding[V]) CanSubmit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state == StateReady && b.seeded && !b.values.Equal(b.snapshot)
}

// Errors returns field errors from the last rejected submit.
func (b *binding[V]) Errors() validation.FieldErrors {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(validation.FieldErrors, len(b.errs))
	for k, v := range b.errs {
		out[k] = v
	}
	return out
}

func (b *binding[V]) ProfileID() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.profileID
}

// Close detaches the form from the shared query.
func (b *binding[V]) Close() {
	if b.unsubscribe != nil {
		b.unsubscribe()
	}
}
