package reportgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fieldops.service/internal/core"
	"fieldops.service/internal/core/model"
	"fieldops.service/internal/export"
	"fieldops.service/internal/ports/messaging"
	"fieldops.service/internal/worker"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// MaxAttempts is how many times a report is tried before it is marked
// failed.
const MaxAttempts = 5

// Generator is the part of the report service the processor drives.
type Generator interface {
	Get(ctx context.Context, id string) (model.Report, error)
	Process(ctx context.Context, id string) (model.Report, error)
	RecordRetry(ctx context.Context, id string, retryCount int) error
	MarkFailed(ctx context.Context, id string, retryCount int) (model.Report, error)
}

// ReportProcessor handles jobs from the report queue. Generation reads the
// whole data set and uploads to S3, so it runs behind a circuit breaker that
// stops hammering the backend while it is failing.
type ReportProcessor struct {
	reports Generator
	cb      *gobreaker.CircuitBreaker
}

func NewProcessor(reports Generator) *ReportProcessor {
	settings := gobreaker.Settings{
		Name:        "report-generation",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Trip if the failure rate is at least 50% after at least 10 requests.
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
		IsSuccessful: func(err error) bool {
			// Bad reports say nothing about the health of the backend.
			return err == nil || unrecoverable(err)
		},
	}

	return &ReportProcessor{
		reports: reports,
		cb:      gobreaker.NewCircuitBreaker(settings),
	}
}

// Process generates the requested report. Failures are retried with
// exponential backoff; after MaxAttempts the report is marked failed.
func (p *ReportProcessor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	if msg.Body == nil {
		return false, 0, errors.New("report message has no body")
	}
	var event messaging.ReportRequestedEvent
	if err := json.Unmarshal([]byte(*msg.Body), &event); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal report event")
		return false, 0, err
	}
	ctx = log.Ctx(ctx).With().Str("reportId", event.ReportID).Logger().WithContext(ctx)

	report, err := p.reports.Get(ctx, event.ReportID)
	if core.IsNotFound(err) {
		log.Ctx(ctx).Warn().Msg("Report no longer exists. Skipping.")
		return false, 0, nil
	}
	if err != nil {
		return true, 10, fmt.Errorf("failed to load report: %w", err)
	}

	switch report.Status {
	case model.ReportCompleted, model.ReportFailed:
		log.Ctx(ctx).Info().Str("status", string(report.Status)).Msg("Report already finished. Skipping.")
		return false, 0, nil
	}

	_, err = p.cb.Execute(func() (interface{}, error) {
		return p.reports.Process(ctx, event.ReportID)
	})
	if err == nil {
		return false, 0, nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		log.Ctx(ctx).Warn().Msg("Circuit breaker is open; postponing report generation")
		return true, worker.CalculateBackoff(report.RetryCount + 1), err
	}

	newCount := report.RetryCount + 1
	if unrecoverable(err) || newCount >= MaxAttempts {
		if _, merr := p.reports.MarkFailed(ctx, event.ReportID, newCount); merr != nil {
			log.Ctx(ctx).Error().Err(merr).Msg("Failed to mark report as failed")
		}
		return false, 0, fmt.Errorf("report generation failed permanently: %w", err)
	}

	if rerr := p.reports.RecordRetry(ctx, event.ReportID, newCount); rerr != nil {
		log.Ctx(ctx).Error().Err(rerr).Msg("Failed to record report retry")
	}
	return true, worker.CalculateBackoff(newCount), err
}

func unrecoverable(err error) bool {
	var ve *core.ValidationError
	return errors.As(err, &ve) || errors.Is(err, export.ErrUnsupportedFormat)
}
