package screen

import (
	"context"
	"errors"
	"sync"

	"fieldops.service/internal/core"
)

type DetailState[T any] struct {
	Phase      Phase
	Item       T
	Notice     string
	Confirming bool
	Deleted    bool
}

// DetailScreen shows one record. An unknown id leaves the screen in the
// terminal NotFound phase. Deleting takes two steps: RequestDelete shows the
// confirmation and ConfirmDelete performs it.
type DetailScreen[T any] struct {
	name   string
	id     string
	load   func(ctx context.Context, id string) (T, error)
	remove func(ctx context.Context, id string) error

	submit Submitter

	mu         sync.Mutex
	loader     loader
	phase      Phase
	item       T
	notice     string
	confirming bool
	deleted    bool
}

// NewDetailScreen builds a detail screen for id. remove may be nil for
// records that cannot be deleted.
func NewDetailScreen[T any](name, id string, load func(ctx context.Context, id string) (T, error), remove func(ctx context.Context, id string) error) *DetailScreen[T] {
	return &DetailScreen[T]{name: name, id: id, load: load, remove: remove}
}

func (s *DetailScreen[T]) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.phase == NotFound || s.deleted {
		s.mu.Unlock()
		return nil
	}
	ctx, gen, err := s.loader.begin(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.phase = Loading
	s.mu.Unlock()

	item, err := s.load(ctx, s.id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loader.current(gen) {
		logDiscarded(ctx, s.name, err)
		return ErrStale
	}
	switch {
	case core.IsNotFound(err):
		s.phase = NotFound
		s.notice = ""
		return err
	case err != nil:
		s.phase = Failed
		s.notice = core.UserMessage(err)
		return err
	}
	s.phase = Loaded
	s.item = item
	s.notice = ""
	return nil
}

func (s *DetailScreen[T]) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loader.unmount()
}

// Set replaces the shown record after a successful update.
func (s *DetailScreen[T]) Set(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.item = item
}

// Update runs a write against the shown record through the pending-write
// guard and shows the result.
func (s *DetailScreen[T]) Update(ctx context.Context, fn func(ctx context.Context, current T) (T, error)) error {
	return s.submit.Submit(ctx, func(ctx context.Context) error {
		s.mu.Lock()
		current := s.item
		s.mu.Unlock()

		updated, err := fn(ctx, current)
		if err != nil {
			return err
		}
		s.Set(updated)
		return nil
	})
}

func (s *DetailScreen[T]) RequestDelete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.remove != nil && s.phase == Loaded {
		s.confirming = true
	}
}

func (s *DetailScreen[T]) CancelDelete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirming = false
}

// ConfirmDelete deletes the record if a delete was requested.
func (s *DetailScreen[T]) ConfirmDelete(ctx context.Context) error {
	s.mu.Lock()
	if !s.confirming {
		s.mu.Unlock()
		return ErrNotConfirmed
	}
	s.mu.Unlock()

	err := s.submit.Submit(ctx, func(ctx context.Context) error {
		return s.remove(ctx, s.id)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if errors.Is(err, ErrPending) {
		return err
	}
	s.confirming = false
	if err != nil {
		s.notice = core.UserMessage(err)
		return err
	}
	s.deleted = true
	return nil
}

// Pending reports whether a write is in flight; controls are disabled while
// it is.
func (s *DetailScreen[T]) Pending() bool { return s.submit.Pending() }

func (s *DetailScreen[T]) State() DetailState[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	notice := s.notice
	if n := s.submit.Notice(); n != "" {
		notice = n
	}
	return DetailState[T]{
		Phase:      s.phase,
		Item:       s.item,
		Notice:     notice,
		Confirming: s.confirming,
		Deleted:    s.deleted,
	}
}
