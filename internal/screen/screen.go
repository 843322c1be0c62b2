// Package screen holds the view state of the client screens: the data-fetch
// phase of each screen, its search and filter state, open dialogs and the
// guards around writes. Screens are driven by the terminal client and the
// HTTP gateway; they never render anything themselves.
package screen

import (
	"context"
	"errors"
	"sync"

	"fieldops.service/internal/core"
	"github.com/rs/zerolog/log"
)

// Phase is where a screen is in loading its data.
type Phase int

const (
	Idle Phase = iota
	Loading
	Loaded
	Failed
	NotFound
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "error"
	case NotFound:
		return "not found"
	}
	return "unknown"
}

var (
	// ErrStale is returned by a load whose result was discarded because a
	// newer load started or the screen was unmounted.
	ErrStale = errors.New("screen: stale load discarded")
	// ErrUnmounted is returned by any operation on an unmounted screen.
	ErrUnmounted = errors.New("screen: unmounted")
	// ErrPending rejects a write while another one is in flight.
	ErrPending = errors.New("screen: a submission is already in progress")
	// ErrNotConfirmed rejects a destructive action that was not requested first.
	ErrNotConfirmed = errors.New("screen: action was not confirmed")
)

// loader tracks the in-flight load of a screen. Every load gets a new
// generation; results from older generations are dropped.
type loader struct {
	gen       uint64
	cancel    context.CancelFunc
	unmounted bool
}

// begin starts a load generation. The caller must hold the screen lock.
func (l *loader) begin(ctx context.Context) (context.Context, uint64, error) {
	if l.unmounted {
		return nil, 0, ErrUnmounted
	}
	if l.cancel != nil {
		l.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	l.gen++
	l.cancel = cancel
	return ctx, l.gen, nil
}

// current reports whether gen is still the latest load and releases its
// context. The caller must hold the screen lock.
func (l *loader) current(gen uint64) bool {
	if gen != l.gen || l.unmounted {
		return false
	}
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	return true
}

func (l *loader) unmount() {
	l.unmounted = true
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

// Submitter guards a form against duplicate submits.
type Submitter struct {
	mu      sync.Mutex
	pending bool
	notice  string
}

// Submit runs fn unless a previous submit is still running. A failure is
// kept as a user-facing notice and returned.
func (s *Submitter) Submit(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return ErrPending
	}
	s.pending = true
	s.notice = ""
	s.mu.Unlock()

	err := fn(ctx)

	s.mu.Lock()
	s.pending = false
	if err != nil {
		s.notice = core.UserMessage(err)
	}
	s.mu.Unlock()
	return err
}

func (s *Submitter) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Notice is the message of the last failed submit, if any.
func (s *Submitter) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

// Modals tracks which dialogs of a screen are open.
type Modals struct {
	mu   sync.Mutex
	open map[string]bool
}

func (m *Modals) Open(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open == nil {
		m.open = make(map[string]bool)
	}
	m.open[name] = true
}

func (m *Modals) Close(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.open, name)
}

func (m *Modals) IsOpen(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open[name]
}

func logDiscarded(ctx context.Context, screen string, err error) {
	log.Ctx(ctx).Debug().Err(err).Str("screen", screen).Msg("Discarding stale load result")
}
