package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Producer struct {
	sender         MessageSender
	emailQueueURL  string
	reportQueueURL string
}

func NewProducer(sender MessageSender, emailQueueURL, reportQueueURL string) *Producer {
	return &Producer{
		sender:         sender,
		emailQueueURL:  emailQueueURL,
		reportQueueURL: reportQueueURL,
	}
}

func NewSQSProducer(client SQSClient, emailQueueURL, reportQueueURL string) *Producer {
	return NewProducer(NewSQSSender(client), emailQueueURL, reportQueueURL)
}

func (p *Producer) PublishCheckOut(ctx context.Context, event CheckOutEvent) error {
	return p.publish(ctx, p.emailQueueURL, EventCheckOut, event)
}

func (p *Producer) PublishReport(ctx context.Context, event ReportRequestedEvent) error {
	return p.publish(ctx, p.reportQueueURL, EventReportRequested, event)
}

func (p *Producer) publish(ctx context.Context, destination, event string, body interface{}) error {
	if p == nil || p.sender == nil || destination == "" {
		return ErrQueueNotConfigured
	}

	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal body: %w", err)
	}

	// Enrich the current span with the worker id if the payload carries one
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		var payload struct {
			WorkerID string `json:"workerId"`
		}
		if err := json.Unmarshal(b, &payload); err == nil && payload.WorkerID != "" {
			span.SetAttributes(attribute.String("app.workerId", payload.WorkerID))
		}
	}

	if err := p.sender.SendMessage(ctx, Message{QueueURL: destination, Event: event, Body: b}); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
