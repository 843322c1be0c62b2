package core

import (
	"context"
	"errors"
	"time"

	"fieldops.service/internal/core/model"
	"fieldops.service/internal/ports/backend"
	"fieldops.service/internal/ports/messaging"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultCheckInPageSize is how many records a check-in list loads.
const DefaultCheckInPageSize = 50

// CheckInFilter narrows a check-in list. Zero fields do not filter.
type CheckInFilter struct {
	WorkerID string
	Type     model.CheckInType
	Limit    int
}

// RecordResult is the outcome of Record. HoursWorked is set on check-out.
type RecordResult struct {
	CheckIn     model.CheckIn `json:"checkIn"`
	HoursWorked float64       `json:"hoursWorked,omitempty"`
}

type CheckInService struct {
	docs     backend.Documents
	producer messaging.EventProducer
	pageSize int
	now      func() time.Time
}

// NewCheckInService wires the document backend and the producer used to
// announce closed shifts.
func NewCheckInService(docs backend.Documents, p messaging.EventProducer, pageSize int) *CheckInService {
	if pageSize <= 0 {
		pageSize = DefaultCheckInPageSize
	}
	if p == nil {
		p = messaging.NewProducer(nil, "", "")
	}
	return &CheckInService{docs: docs, producer: p, pageSize: pageSize, now: now}
}

// List returns the most recent check-ins, newest first.
func (s *CheckInService) List(ctx context.Context, f CheckInFilter) ([]model.CheckIn, error) {
	records, _, err := s.page(ctx, f)
	if err != nil {
		return nil, fail(ctx, "load check-ins", err)
	}
	return records, nil
}

func (s *CheckInService) page(ctx context.Context, f CheckInFilter) ([]model.CheckIn, int, error) {
	q := backend.NewQuery()
	if f.WorkerID != "" {
		q = q.Equal("workerId", f.WorkerID)
	}
	if f.Type != "" {
		q = q.Equal("type", f.Type)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = s.pageSize
	}
	return list[model.CheckIn](ctx, s.docs, backend.CheckIns, newestFirst(q).WithLimit(limit))
}

// newestFirst orders check-ins by timestamp, falling back to creation time
// for records stamped within the same second.
func newestFirst(q backend.Query) backend.Query {
	return q.OrderDesc("timestamp").OrderDesc(backend.FieldCreatedAt)
}

// Record figures out if a worker is checking in or out by looking at their
// latest record, and appends the opposite one.
func (s *CheckInService) Record(ctx context.Context, workerID string, loc model.Location) (RecordResult, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.workerId", workerID))
	currentTime := s.now()

	worker, err := get[model.Worker](ctx, s.docs, backend.Workers, workerID)
	if err != nil {
		return RecordResult{}, fail(ctx, "record check-in", err)
	}

	latest, _, err := s.page(ctx, CheckInFilter{WorkerID: workerID, Limit: 1})
	if err != nil {
		return RecordResult{}, fail(ctx, "record check-in", err)
	}

	if len(latest) == 0 || latest[0].Type == model.TypeCheckOut {
		if worker.Status == model.WorkerInactive {
			return RecordResult{}, invalid("workerId", "%s is inactive and cannot check in", worker.Name)
		}
		return s.handleCheckIn(ctx, worker, loc, currentTime)
	}
	return s.handleCheckOut(ctx, worker, latest[0], loc, currentTime)
}

// handleCheckIn opens a shift and marks the worker as recently active.
func (s *CheckInService) handleCheckIn(ctx context.Context, w model.Worker, loc model.Location, at time.Time) (RecordResult, error) {
	record, err := create(ctx, s.docs, backend.CheckIns, model.CheckIn{
		WorkerID:   w.ID,
		WorkerName: w.Name,
		Type:       model.TypeCheckIn,
		Timestamp:  at,
		Location:   loc,
	})
	if err != nil {
		return RecordResult{}, fail(ctx, "record check-in", err)
	}

	if _, err := s.docs.UpdateDocument(ctx, backend.Workers, w.ID, map[string]any{"lastActive": at}); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("workerId", w.ID).Msg("Failed to update last active time")
	}
	return RecordResult{CheckIn: record}, nil
}

// handleCheckOut closes the open shift and announces it. The record is the
// source of truth, so a failed publish is logged rather than returned.
func (s *CheckInService) handleCheckOut(ctx context.Context, w model.Worker, open model.CheckIn, loc model.Location, at time.Time) (RecordResult, error) {
	record, err := create(ctx, s.docs, backend.CheckIns, model.CheckIn{
		WorkerID:   w.ID,
		WorkerName: w.Name,
		Type:       model.TypeCheckOut,
		Timestamp:  at,
		Location:   loc,
	})
	if err != nil {
		return RecordResult{}, fail(ctx, "record check-out", err)
	}

	hoursWorked := at.Sub(open.Timestamp).Hours()
	event := messaging.CheckOutEvent{
		CheckInID:    record.ID,
		WorkerID:     w.ID,
		WorkerName:   w.Name,
		HoursWorked:  hoursWorked,
		ClockInTime:  open.Timestamp,
		ClockOutTime: at,
	}
	if err := s.producer.PublishCheckOut(ctx, event); err != nil && !errors.Is(err, messaging.ErrQueueNotConfigured) {
		log.Ctx(ctx).Error().Err(err).Str("workerId", w.ID).Msg("Failed to publish check-out event to queue")
	}
	return RecordResult{CheckIn: record, HoursWorked: hoursWorked}, nil
}
