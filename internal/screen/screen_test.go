package screen

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"fieldops.service/internal/adapters/memory"
	"fieldops.service/internal/core"
	"fieldops.service/internal/core/model"
	"fieldops.service/internal/ports/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.NewStore()
	require.NoError(t, memory.SeedDemo(context.Background(), s, time.Date(2024, 4, 18, 18, 0, 0, 0, time.UTC)))
	return s
}

func TestListScreenPhases(t *testing.T) {
	ctx := context.Background()
	store := seeded(t)
	s := NewCustomersScreen(core.NewCustomerService(store))

	assert.Equal(t, Idle, s.State().Phase)

	require.NoError(t, s.Load(ctx))
	st := s.State()
	assert.Equal(t, Loaded, st.Phase)
	assert.Len(t, st.Items, 4)

	store.SetFailure(errors.New("network down"))
	require.Error(t, s.Load(ctx))
	st = s.State()
	assert.Equal(t, Failed, st.Phase)
	assert.Equal(t, "Failed to load customers. Please try again.", st.Notice)
	assert.Len(t, st.Items, 4, "previous items stay visible")

	store.SetFailure(nil)
	require.NoError(t, s.Load(ctx))
	assert.Empty(t, s.State().Notice)
}

func TestSearchNeverCallsBackend(t *testing.T) {
	ctx := context.Background()
	store := seeded(t)
	s := NewCustomersScreen(core.NewCustomerService(store))
	require.NoError(t, s.Load(ctx))
	calls := store.Calls("ListDocuments")

	s.SetQuery("acm")
	st := s.State()
	require.Len(t, st.Items, 1)
	assert.Equal(t, "Acme Corporation", st.Items[0].Name)
	assert.Equal(t, 4, st.Total)

	s.SetQuery("xyz")
	assert.Empty(t, s.State().Items)
	s.SetQuery("")
	assert.Len(t, s.State().Items, 4)

	assert.Equal(t, calls, store.Calls("ListDocuments"))
}

func TestCheckInsOnlyAndSurveyTabs(t *testing.T) {
	ctx := context.Background()
	store := seeded(t)

	checkIns := NewCheckInsScreen(core.NewCheckInService(store, nil, 0), core.CheckInFilter{})
	require.NoError(t, checkIns.Load(ctx))
	assert.Len(t, checkIns.State().Items, 7)
	checkIns.SetOnly(true)
	assert.Len(t, checkIns.State().Items, 5)

	surveys := NewSurveysScreen(core.NewSurveyService(store, ""))
	require.NoError(t, surveys.Load(ctx))
	surveys.SetTab(TabDraft)
	st := surveys.State()
	require.Len(t, st.Items, 1)
	assert.Equal(t, "s4", st.Items[0].ID)
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	var n atomic.Int32
	s := NewListScreen("items", func(ctx context.Context) ([]string, error) {
		if n.Add(1) == 1 {
			<-release
			return []string{"stale"}, nil
		}
		return []string{"fresh"}, nil
	}, nil)

	done := make(chan error, 1)
	go func() { done <- s.Load(context.Background()) }()
	require.Eventually(t, func() bool { return n.Load() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, s.Load(context.Background()))
	close(release)
	assert.ErrorIs(t, <-done, ErrStale)
	assert.Equal(t, []string{"fresh"}, s.State().Items)
}

func TestUnmountCancelsLoad(t *testing.T) {
	started := make(chan struct{})
	s := NewListScreen("items", func(ctx context.Context) ([]string, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}, nil)

	done := make(chan error, 1)
	go func() { done <- s.Load(context.Background()) }()
	<-started
	s.Unmount()

	assert.ErrorIs(t, <-done, ErrStale)
	assert.Equal(t, Loading, s.State().Phase, "state is not touched after unmount")
	assert.ErrorIs(t, s.Load(context.Background()), ErrUnmounted)
}

func TestDetailScreenNotFound(t *testing.T) {
	s := NewWorkerDetailScreen(core.NewWorkerService(seeded(t)), "missing")
	err := s.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, NotFound, s.State().Phase)

	require.NoError(t, s.Load(context.Background()), "not found is terminal")
	assert.Equal(t, NotFound, s.State().Phase)
}

func TestTwoStepDelete(t *testing.T) {
	ctx := context.Background()
	store := seeded(t)
	svc := core.NewWorkerService(store)
	s := NewWorkerDetailScreen(svc, "w1")
	require.NoError(t, s.Load(ctx))

	assert.ErrorIs(t, s.ConfirmDelete(ctx), ErrNotConfirmed)
	assert.Zero(t, store.Calls("DeleteDocument"))

	s.RequestDelete()
	assert.True(t, s.State().Confirming)
	s.CancelDelete()
	assert.False(t, s.State().Confirming)

	s.RequestDelete()
	require.NoError(t, s.ConfirmDelete(ctx))
	st := s.State()
	assert.True(t, st.Deleted)
	assert.False(t, st.Confirming)

	_, err := store.GetDocument(ctx, backend.Workers, "w1")
	assert.ErrorIs(t, err, backend.ErrNotFound)
}

func TestDetailUpdateMergesResult(t *testing.T) {
	ctx := context.Background()
	svc := core.NewWorkerService(seeded(t))
	s := NewWorkerDetailScreen(svc, "w1")
	require.NoError(t, s.Load(ctx))

	err := s.Update(ctx, func(ctx context.Context, d core.WorkerDetail) (core.WorkerDetail, error) {
		w, err := svc.ToggleStatus(ctx, d.Worker)
		d.Worker = w
		return d, err
	})
	require.NoError(t, err)
	assert.Equal(t, model.WorkerInactive, s.State().Item.Worker.Status)
}

func TestSubmitterRejectsDuplicateSubmit(t *testing.T) {
	var sub Submitter
	release := make(chan struct{})
	started := make(chan struct{})

	done := make(chan error, 1)
	go func() {
		done <- sub.Submit(context.Background(), func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	assert.True(t, sub.Pending())
	assert.ErrorIs(t, sub.Submit(context.Background(), func(ctx context.Context) error { return nil }), ErrPending)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, sub.Pending())

	err := sub.Submit(context.Background(), func(ctx context.Context) error {
		return &core.OperationError{Action: "add worker", Err: fmt.Errorf("boom")}
	})
	require.Error(t, err)
	assert.Equal(t, "Failed to add worker. Please try again.", sub.Notice())
}

func TestModals(t *testing.T) {
	var m Modals
	assert.False(t, m.IsOpen("add"))
	m.Open("add")
	assert.True(t, m.IsOpen("add"))
	m.Close("add")
	assert.False(t, m.IsOpen("add"))
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "not found", NotFound.String())
	assert.Equal(t, "error", Failed.String())
}
