package screen

import (
	"context"
	"sync"

	"fieldops.service/internal/core"
)

// View is the local filter state of a list screen. Changing it never
// reaches the backend.
type View struct {
	Query string
	Tab   string
	// Only narrows the list to its primary kind, such as check-ins only.
	Only bool
}

// ListState is a snapshot of a list screen.
type ListState[T any] struct {
	Phase Phase
	// Items are the loaded items after the view filter. They stay populated
	// while a refresh is loading or after it failed.
	Items  []T
	Total  int
	Notice string
	View   View
}

// ListScreen loads a collection and filters it locally.
type ListScreen[T any] struct {
	name   string
	load   func(ctx context.Context) ([]T, error)
	filter func(items []T, v View) []T

	mu     sync.Mutex
	loader loader
	phase  Phase
	items  []T
	notice string
	view   View
}

// NewListScreen builds a list screen. filter may be nil when the screen has
// no search.
func NewListScreen[T any](name string, load func(ctx context.Context) ([]T, error), filter func(items []T, v View) []T) *ListScreen[T] {
	return &ListScreen[T]{name: name, load: load, filter: filter}
}

// Load fetches the list. It is used both on mount and on refresh; items from
// an earlier load stay visible until the new result arrives.
func (s *ListScreen[T]) Load(ctx context.Context) error {
	s.mu.Lock()
	ctx, gen, err := s.loader.begin(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.phase = Loading
	s.mu.Unlock()

	items, err := s.load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loader.current(gen) {
		logDiscarded(ctx, s.name, err)
		return ErrStale
	}
	if err != nil {
		s.phase = Failed
		s.notice = core.UserMessage(err)
		return err
	}
	s.phase = Loaded
	s.items = items
	s.notice = ""
	return nil
}

// Unmount cancels an in-flight load and makes the screen inert.
func (s *ListScreen[T]) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loader.unmount()
}

func (s *ListScreen[T]) SetQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Query = q
}

func (s *ListScreen[T]) SetTab(tab string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Tab = tab
}

func (s *ListScreen[T]) SetOnly(only bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Only = only
}

// Replace swaps the first loaded item matching match with item, keeping the
// list in sync after a successful update.
func (s *ListScreen[T]) Replace(match func(T) bool, item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if match(s.items[i]) {
			items := append([]T(nil), s.items...)
			items[i] = item
			s.items = items
			return
		}
	}
}

// Remove drops every loaded item matching match.
func (s *ListScreen[T]) Remove(match func(T) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]T, 0, len(s.items))
	for _, it := range s.items {
		if !match(it) {
			items = append(items, it)
		}
	}
	s.items = items
}

func (s *ListScreen[T]) State() ListState[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.items
	if s.filter != nil {
		items = s.filter(items, s.view)
	} else {
		items = append([]T(nil), items...)
	}
	return ListState[T]{
		Phase:  s.phase,
		Items:  items,
		Total:  len(s.items),
		Notice: s.notice,
		View:   s.view,
	}
}
