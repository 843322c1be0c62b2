package email

import (
	"context"
	"encoding/json"
	"fmt"

	"fieldops.service/internal/core"
	"fieldops.service/internal/core/model"
	"fieldops.service/internal/ports/messaging"
	"fieldops.service/internal/worker"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"
)

// maxAttempts is how many deliveries of one event are tried before it is
// left to the queue's dead-letter policy.
const maxAttempts = 5

// WorkerDirectory finds the worker a shift summary is sent to.
type WorkerDirectory interface {
	Find(ctx context.Context, id string) (model.Worker, error)
}

type EmailProcessor struct {
	emailService core.EmailService
	workers      WorkerDirectory
}

// NewProcessor sets up the processor for check-out summaries.
func NewProcessor(emailService core.EmailService, workers WorkerDirectory) *EmailProcessor {
	return &EmailProcessor{
		emailService: emailService,
		workers:      workers,
	}
}

// Process sends the shift summary of one check-out to the worker's email
// address, asking for a retry with backoff when sending fails.
func (p *EmailProcessor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	if msg.Body == nil {
		return false, 0, fmt.Errorf("message %s has no body", valueOf(msg.MessageId))
	}
	var event messaging.CheckOutEvent
	if err := json.Unmarshal([]byte(*msg.Body), &event); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal check-out event")
		return false, 0, err
	}

	w, err := p.workers.Find(ctx, event.WorkerID)
	if core.IsNotFound(err) {
		log.Ctx(ctx).Warn().Str("workerId", event.WorkerID).Msg("Worker no longer exists. Skipping email.")
		return false, 0, nil
	}
	if err != nil {
		return true, 10, fmt.Errorf("failed to look up worker for email processing: %w", err)
	}
	if !core.ValidEmail(w.ContactInfo.Email) {
		log.Ctx(ctx).Warn().Str("workerId", w.ID).Msg("Worker has no usable email address. Skipping email.")
		return false, 0, nil
	}

	if err := p.emailService.SendCheckOutSummary(ctx, w.ContactInfo.Email, event); err != nil {
		attempt := worker.ReceiveCount(msg)
		if attempt >= maxAttempts {
			return false, 0, fmt.Errorf("giving up after %d attempts: %w", attempt, err)
		}
		return true, worker.CalculateBackoff(attempt), err
	}

	log.Ctx(ctx).Info().Str("checkInId", event.CheckInID).Msg("Shift summary sent")
	return false, 0, nil
}

func valueOf(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
