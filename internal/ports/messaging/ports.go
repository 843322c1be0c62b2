package messaging

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// ErrQueueNotConfigured is returned when an event is published to a queue
// whose URL is empty.
var ErrQueueNotConfigured = errors.New("queue not configured")

// EventProducer defines the output port for publishing domain events.
type EventProducer interface {
	PublishCheckOut(ctx context.Context, event CheckOutEvent) error
	PublishReport(ctx context.Context, event ReportRequestedEvent) error
}

// MessageSender defines the interface for sending serialized events to a messaging system.
type MessageSender interface {
	SendMessage(ctx context.Context, msg Message) error
}

// SQSClient defines the interface for the AWS SQS client.
type SQSClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}
