package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"fieldops.service/internal/adapters/memory"
	"fieldops.service/internal/ports/messaging"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 4, 18, 18, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.NewStore()
	require.NoError(t, memory.SeedDemo(context.Background(), s, testNow))
	return s
}

// recordingProducer keeps every published event. A non-nil err is returned
// from every publish.
type recordingProducer struct {
	mu       sync.Mutex
	err      error
	checkOut []messaging.CheckOutEvent
	reports  []messaging.ReportRequestedEvent
}

func (p *recordingProducer) PublishCheckOut(ctx context.Context, event messaging.CheckOutEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.checkOut = append(p.checkOut, event)
	return nil
}

func (p *recordingProducer) PublishReport(ctx context.Context, event messaging.ReportRequestedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.reports = append(p.reports, event)
	return nil
}
