package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSQS struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (f *fakeSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("m1")}, nil
}

func TestPublishRoutesEventsToTheirQueues(t *testing.T) {
	client := &fakeSQS{}
	p := NewSQSProducer(client, "https://sqs/email", "https://sqs/report")
	ctx := context.Background()
	out := time.Date(2024, 4, 18, 17, 0, 0, 0, time.UTC)

	require.NoError(t, p.PublishCheckOut(ctx, CheckOutEvent{WorkerID: "w1", HoursWorked: 8.5, ClockOutTime: out}))
	require.NoError(t, p.PublishReport(ctx, ReportRequestedEvent{ReportID: "r1"}))
	require.Len(t, client.inputs, 2)

	assert.Equal(t, "https://sqs/email", aws.ToString(client.inputs[0].QueueUrl))
	assert.Equal(t, EventCheckOut, aws.ToString(client.inputs[0].MessageAttributes[EventAttribute].StringValue))
	var got CheckOutEvent
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(client.inputs[0].MessageBody)), &got))
	assert.Equal(t, "w1", got.WorkerID)
	assert.Equal(t, 8.5, got.HoursWorked)
	assert.True(t, out.Equal(got.ClockOutTime))

	assert.Equal(t, "https://sqs/report", aws.ToString(client.inputs[1].QueueUrl))
	assert.Contains(t, aws.ToString(client.inputs[1].MessageBody), `"reportId":"r1"`)
	assert.Equal(t, EventReportRequested, aws.ToString(client.inputs[1].MessageAttributes[EventAttribute].StringValue))
}

func TestPublishWithoutQueue(t *testing.T) {
	client := &fakeSQS{}
	p := NewSQSProducer(client, "https://sqs/email", "")

	err := p.PublishReport(context.Background(), ReportRequestedEvent{ReportID: "r1"})
	assert.ErrorIs(t, err, ErrQueueNotConfigured)
	assert.Empty(t, client.inputs)

	var nilProducer *Producer
	assert.ErrorIs(t, nilProducer.PublishCheckOut(context.Background(), CheckOutEvent{}), ErrQueueNotConfigured)
}

func TestPublishWrapsSendFailure(t *testing.T) {
	boom := errors.New("throttled")
	p := NewSQSProducer(&fakeSQS{err: boom}, "https://sqs/email", "")

	err := p.PublishCheckOut(context.Background(), CheckOutEvent{WorkerID: "w1"})
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "send checkout.completed to https://sqs/email")
}
