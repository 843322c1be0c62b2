package messaging

import (
	"context"
	"fmt"

	"fieldops.service/pkg/telemetry"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// EventAttribute is the message attribute naming the event a message carries.
const EventAttribute = "event"

// Event names carried in EventAttribute.
const (
	EventCheckOut        = "checkout.completed"
	EventReportRequested = "report.requested"
)

// Message is one serialized event bound for a queue.
type Message struct {
	QueueURL string
	Event    string
	Body     []byte
}

// SQSSender delivers messages to SQS with the trace context and event name
// attached as message attributes.
type SQSSender struct {
	client SQSClient
}

func NewSQSSender(client SQSClient) *SQSSender {
	return &SQSSender{client: client}
}

func (s *SQSSender) SendMessage(ctx context.Context, msg Message) error {
	attributes := telemetry.InjectTraceContext(ctx)
	if msg.Event != "" {
		attributes[EventAttribute] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(msg.Event),
		}
	}

	_, err := s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(msg.QueueURL),
		MessageBody:       aws.String(string(msg.Body)),
		MessageAttributes: attributes,
	})
	if err != nil {
		return fmt.Errorf("send %s to %s: %w", msg.Event, msg.QueueURL, err)
	}
	return nil
}
