// Package editstate owns the per-image edit states. Each state is an
// immutable value: mutations build a new value and swap it in under the
// registry lock.
package editstate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"post-composer/internal/domain"

	"github.com/wb-go/wbf/zlog"
)

// Reducer turns the current state into the next one. It must not modify
// its argument.
type Reducer func(domain.ImageEditState) (domain.ImageEditState, error)

type Registry struct {
	mu     sync.Mutex
	states map[string]domain.ImageEditState
	store  stateStore
	logger *zlog.Zerolog
	now    func() time.Time
}

// NewRegistry builds a registry. store may be nil, in which case states live
// in memory only. Persistence is best effort: write failures are logged and
// never fail the mutation.
func NewRegistry(store stateStore, logger *zlog.Zerolog) *Registry {
	return &Registry{
		states: make(map[string]domain.ImageEditState),
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Get returns the state of imageID, or the default one when it was never
// edited. Reads never create an entry; the first Update does.
func (r *Registry) Get(ctx context.Context, imageID string) domain.ImageEditState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx, imageID).Clone()
}

// Lookup returns the state only if one was ever created or persisted.
func (r *Registry) Lookup(ctx context.Context, imageID string) (domain.ImageEditState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if st, ok := r.states[imageID]; ok {
		return st.Clone(), true
	}
	if st := r.fetch(ctx, imageID); st != nil {
		r.states[imageID] = *st
		return st.Clone(), true
	}
	return domain.ImageEditState{}, false
}

// Update applies fn to the current state and stores the result wholesale.
func (r *Registry) Update(ctx context.Context, imageID string, fn Reducer) (domain.ImageEditState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.load(ctx, imageID)
	next, err := fn(cur.Clone())
	if err != nil {
		return cur.Clone(), err
	}
	next.ImageID = imageID
	next.LastModified = r.now()

	r.states[imageID] = next
	r.persist(ctx, next)

	return next.Clone(), nil
}

// Replace swaps in a complete state received from a client.
func (r *Registry) Replace(ctx context.Context, state domain.ImageEditState) (domain.ImageEditState, error) {
	if state.ImageID == "" {
		return domain.ImageEditState{}, fmt.Errorf("%w: empty image id", ErrImageMismatch)
	}
	return r.Update(ctx, state.ImageID, func(domain.ImageEditState) (domain.ImageEditState, error) {
		return Normalize(state), nil
	})
}

// Delete drops the state of imageID from memory and the store.
func (r *Registry) Delete(ctx context.Context, imageID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.states, imageID)
	if r.store == nil {
		return
	}
	if err := r.store.DeleteEditState(ctx, imageID); err != nil {
		r.logger.Warn().Err(err).Str("image_id", imageID).Msg("Failed to delete persisted edit state")
	}
}

func (r *Registry) load(ctx context.Context, imageID string) domain.ImageEditState {
	if st, ok := r.states[imageID]; ok {
		return st
	}
	if st := r.fetch(ctx, imageID); st != nil {
		r.states[imageID] = *st
		return *st
	}
	st := domain.NewEditState(imageID)
	st.LastModified = r.now()
	return st
}

func (r *Registry) fetch(ctx context.Context, imageID string) *domain.ImageEditState {
	if r.store == nil {
		return nil
	}
	st, err := r.store.GetEditState(ctx, imageID)
	if err != nil || st == nil {
		r.logger.Debug().Err(err).Str("image_id", imageID).Msg("No persisted edit state")
		return nil
	}
	n := Normalize(*st)
	return &n
}

func (r *Registry) persist(ctx context.Context, st domain.ImageEditState) {
	if r.store == nil {
		return
	}
	if err := r.store.SaveEditState(ctx, st); err != nil {
		r.logger.Warn().Err(err).Str("image_id", st.ImageID).Msg("Failed to persist edit state")
	}
}

// Normalize fills nil slices, clamps coordinates into design space and
// defaults the filter.
func Normalize(st domain.ImageEditState) domain.ImageEditState {
	st = st.Clone()
	if st.TextElements == nil {
		st.TextElements = []domain.TextElement{}
	}
	if st.DecorationElements == nil {
		st.DecorationElements = []domain.DecorationElement{}
	}
	for i := range st.TextElements {
		st.TextElements[i].X = domain.ClampDesign(st.TextElements[i].X)
		st.TextElements[i].Y = domain.ClampDesign(st.TextElements[i].Y)
	}
	for i := range st.DecorationElements {
		st.DecorationElements[i].X = domain.ClampDesign(st.DecorationElements[i].X)
		st.DecorationElements[i].Y = domain.ClampDesign(st.DecorationElements[i].Y)
	}
	if st.Filter.CSSFilter == "" {
		st.Filter = domain.NoFilter
	}
	return st
}
