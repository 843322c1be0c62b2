package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"fieldops.service/internal/adapters/memory"
	"fieldops.service/internal/core/model"
	"fieldops.service/internal/ports/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTogglesBetweenCheckInAndCheckOut(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	producer := &recordingProducer{}
	svc := NewCheckInService(store, producer, 0)

	site := model.Location{Latitude: 1, Longitude: 2, Address: "Depot"}

	// w2 checked in at 09:00 on the seeded day.
	svc.now = fixedClock
	res, err := svc.Record(ctx, "w2", site)
	require.NoError(t, err)
	assert.Equal(t, model.TypeCheckOut, res.CheckIn.Type)
	assert.Equal(t, "Sarah Johnson", res.CheckIn.WorkerName)
	assert.InDelta(t, 9.0, res.HoursWorked, 0.001)

	require.Len(t, producer.checkOut, 1)
	event := producer.checkOut[0]
	assert.Equal(t, "w2", event.WorkerID)
	assert.Equal(t, res.CheckIn.ID, event.CheckInID)
	assert.Equal(t, testNow, event.ClockOutTime)

	svc.now = func() time.Time { return testNow.Add(time.Hour) }
	res, err = svc.Record(ctx, "w2", site)
	require.NoError(t, err)
	assert.Equal(t, model.TypeCheckIn, res.CheckIn.Type)
	assert.Zero(t, res.HoursWorked)
	assert.Len(t, producer.checkOut, 1)

	w, err := NewWorkerService(store).Get(ctx, "w2")
	require.NoError(t, err)
	require.NotNil(t, w.Worker.LastActive)
	assert.Equal(t, testNow.Add(time.Hour), *w.Worker.LastActive)
}

func TestRecordTogglesWithinOneSecond(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.SetClock(fixedClock)
	_, err := store.CreateDocument(ctx, backend.Workers, "w9", model.Worker{Name: "Nina Park", Status: model.WorkerActive})
	require.NoError(t, err)

	producer := &recordingProducer{}
	svc := NewCheckInService(store, producer, 0)
	svc.now = fixedClock

	var types []model.CheckInType
	for i := 0; i < 3; i++ {
		res, err := svc.Record(ctx, "w9", model.Location{Address: "Depot"})
		require.NoError(t, err)
		types = append(types, res.CheckIn.Type)
	}
	assert.Equal(t, []model.CheckInType{model.TypeCheckIn, model.TypeCheckOut, model.TypeCheckIn}, types)
	assert.Len(t, producer.checkOut, 1)

	page, err := svc.List(ctx, CheckInFilter{WorkerID: "w9"})
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, model.TypeCheckIn, page[0].Type)
	assert.Equal(t, 1, ActiveWorkerCount(page))

	_, err = svc.Record(ctx, "w9", model.Location{Address: "Depot"})
	require.NoError(t, err)
	page, err = svc.List(ctx, CheckInFilter{WorkerID: "w9"})
	require.NoError(t, err)
	assert.Equal(t, model.TypeCheckOut, page[0].Type)
	assert.Zero(t, ActiveWorkerCount(page))
	assert.Len(t, producer.checkOut, 2)
}

func TestRecordRejectsInactiveWorkerCheckIn(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	svc := NewCheckInService(store, nil, 0)
	svc.now = fixedClock

	// w7 is inactive but still has an open shift, which may be closed.
	res, err := svc.Record(ctx, "w7", model.Location{})
	require.NoError(t, err)
	assert.Equal(t, model.TypeCheckOut, res.CheckIn.Type)

	_, err = svc.Record(ctx, "w7", model.Location{})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Robert Taylor is inactive and cannot check in", ve.Message)
}

func TestRecordUnknownWorker(t *testing.T) {
	svc := NewCheckInService(seededStore(t), nil, 0)
	_, err := svc.Record(context.Background(), "nobody", model.Location{})
	assert.True(t, IsNotFound(err))
}

func TestRecordPublishFailureIsNotReturned(t *testing.T) {
	producer := &recordingProducer{err: errors.New("queue down")}
	svc := NewCheckInService(seededStore(t), producer, 0)
	svc.now = fixedClock

	res, err := svc.Record(context.Background(), "w5", model.Location{})
	require.NoError(t, err)
	assert.Equal(t, model.TypeCheckOut, res.CheckIn.Type)
}

func TestCheckInListFilters(t *testing.T) {
	ctx := context.Background()
	svc := NewCheckInService(seededStore(t), nil, 3)

	page, err := svc.List(ctx, CheckInFilter{})
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, model.TypeCheckOut, page[0].Type)
	assert.True(t, !page[0].Timestamp.Before(page[1].Timestamp))

	outs, err := svc.List(ctx, CheckInFilter{Type: model.TypeCheckOut, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, outs, 2)

	mine, err := svc.List(ctx, CheckInFilter{WorkerID: "w1", Limit: 10})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	assert.Len(t, FilterCheckIns(mine, "", true), 1)
	assert.Len(t, FilterCheckIns(mine, "main site", false), 2)
}
