package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"fieldops.service/internal/core"
	"fieldops.service/internal/core/model"
	"fieldops.service/internal/ports/backend"
	"fieldops.service/internal/ports/messaging"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmail struct {
	err  error
	sent map[string]messaging.CheckOutEvent
}

func (f *fakeEmail) SendCheckOutSummary(ctx context.Context, to string, event messaging.CheckOutEvent) error {
	if f.err != nil {
		return f.err
	}
	if f.sent == nil {
		f.sent = make(map[string]messaging.CheckOutEvent)
	}
	f.sent[to] = event
	return nil
}

type directory map[string]model.Worker

func (d directory) Find(ctx context.Context, id string) (model.Worker, error) {
	w, ok := d[id]
	if !ok {
		return model.Worker{}, &core.OperationError{Action: "load worker", Err: fmt.Errorf("%s: %w", id, backend.ErrNotFound)}
	}
	return w, nil
}

func eventMessage(t *testing.T, event messaging.CheckOutEvent, receiveCount string) types.Message {
	t.Helper()
	body, err := json.Marshal(event)
	require.NoError(t, err)
	return types.Message{
		Body:       aws.String(string(body)),
		Attributes: map[string]string{"ApproximateReceiveCount": receiveCount},
	}
}

var workers = directory{
	"w1": {ID: "w1", Name: "John Smith", ContactInfo: model.ContactInfo{Email: "john@example.com"}},
	"w2": {ID: "w2", Name: "No Mail"},
}

func TestProcessSendsSummaryToWorker(t *testing.T) {
	mail := &fakeEmail{}
	p := NewProcessor(mail, workers)

	retry, _, err := p.Process(context.Background(), eventMessage(t, messaging.CheckOutEvent{WorkerID: "w1", HoursWorked: 7.5}, "1"))
	require.NoError(t, err)
	assert.False(t, retry)
	assert.InDelta(t, 7.5, mail.sent["john@example.com"].HoursWorked, 0.001)
}

func TestProcessSkipsUnreachableWorkers(t *testing.T) {
	mail := &fakeEmail{}
	p := NewProcessor(mail, workers)

	for _, id := range []string{"w2", "gone"} {
		retry, _, err := p.Process(context.Background(), eventMessage(t, messaging.CheckOutEvent{WorkerID: id}, "1"))
		assert.NoError(t, err, id)
		assert.False(t, retry, id)
	}
	assert.Empty(t, mail.sent)
}

func TestProcessRetriesSendFailures(t *testing.T) {
	p := NewProcessor(&fakeEmail{err: errors.New("throttled")}, workers)
	event := messaging.CheckOutEvent{WorkerID: "w1"}

	retry, delay, err := p.Process(context.Background(), eventMessage(t, event, "2"))
	assert.Error(t, err)
	assert.True(t, retry)
	assert.Equal(t, int32(40), delay)

	retry, _, err = p.Process(context.Background(), eventMessage(t, event, "5"))
	assert.Error(t, err)
	assert.False(t, retry, "gives up after the last attempt")
}

func TestProcessRejectsMalformedMessage(t *testing.T) {
	p := NewProcessor(&fakeEmail{}, workers)
	retry, _, err := p.Process(context.Background(), types.Message{Body: aws.String("{")})
	assert.Error(t, err)
	assert.False(t, retry)
}
