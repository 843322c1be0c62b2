package core

import (
	"context"
	"fmt"

	"fieldops.service/internal/ports/messaging"
	"fieldops.service/pkg/telemetry"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type EmailService interface {
	SendCheckOutSummary(ctx context.Context, to string, event messaging.CheckOutEvent) error
}

// SESAPI is the subset of the SES client used to send mail.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESEmailService struct {
	client SESAPI
	sender string
}

func NewSESEmailService(client SESAPI, sender string) *SESEmailService {
	return &SESEmailService{client: client, sender: sender}
}

func (s *SESEmailService) SendCheckOutSummary(ctx context.Context, to string, event messaging.CheckOutEvent) error {
	tracer := otel.Tracer("ses-email-service")
	ctx, span := tracer.Start(ctx, "send_email", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if workerID := telemetry.GetWorkerIDFromContext(ctx); workerID != "" {
		span.SetAttributes(attribute.String("app.workerId", workerID))
	}

	input := &ses.SendEmailInput{
		Source: aws.String(s.sender),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String("Work Shift Summary"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(ShiftSummaryText(event)),
				},
			},
		},
	}

	_, err := s.client.SendEmail(ctx, input)
	return err
}

// ShiftSummaryText is the body of the check-out email.
func ShiftSummaryText(event messaging.CheckOutEvent) string {
	return fmt.Sprintf("Hello %s,\n\nYou have successfully checked out.\nClocked in: %s\nClocked out: %s\nTotal hours worked: %.2f hours.",
		event.WorkerName,
		event.ClockInTime.Format("Jan 2, 2006 15:04 MST"),
		event.ClockOutTime.Format("Jan 2, 2006 15:04 MST"),
		event.HoursWorked)
}
