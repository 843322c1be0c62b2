package telemetry

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestTraceContextSurvivesSQSRoundTrip(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, parent := tp.Tracer("test").Start(context.Background(), "publish")
	attrs := InjectTraceContext(ctx)
	parent.End()
	require.Contains(t, attrs, "traceparent")

	msg := types.Message{
		MessageId:         aws.String("m1"),
		Body:              aws.String(`{"workerId":"w7","hoursWorked":8}`),
		MessageAttributes: attrs,
	}
	ctx, span := StartSpanFromSQSMessage(context.Background(), msg)
	span.End()

	assert.Equal(t, parent.SpanContext().TraceID(), trace.SpanFromContext(ctx).SpanContext().TraceID())
	assert.Equal(t, "w7", GetWorkerIDFromContext(ctx))
	assert.Len(t, recorder.Ended(), 2)
}

func TestWorkerIDMissing(t *testing.T) {
	ctx, span := StartSpanFromSQSMessage(context.Background(), types.Message{Body: aws.String(`{"reportId":"r1"}`)})
	defer span.End()
	assert.Empty(t, GetWorkerIDFromContext(ctx))
}
