package observability

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilObservabilityIsSafe(t *testing.T) {
	var o *Observability

	ctx, span := o.StartSpan(context.Background(), "turn")
	assert.NotNil(t, ctx)
	assert.NotPanics(t, func() {
		EndSpan(span, errors.New("boom"))
		o.RecordTurn(ctx, "ok", time.Second)
		o.Shutdown()
	})
	assert.Empty(t, TraceID(ctx))
}

func TestStartSpan_CarriesTraceID(t *testing.T) {
	o := NewWithRegisterer("chat-intake-test", prometheus.NewRegistry())
	defer o.Shutdown()

	ctx, parent := o.StartSpan(context.Background(), "turn")
	traceID := TraceID(ctx)
	require.NotEmpty(t, traceID)

	childCtx, child := o.StartSpan(ctx, "generate")
	assert.Equal(t, traceID, TraceID(childCtx))

	EndSpan(child, nil)
	EndSpan(parent, nil)
}

func TestRecordTurn_ExportsToRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := NewWithRegisterer("chat-intake-test", reg)
	defer o.Shutdown()

	o.RecordTurn(context.Background(), "ok", 120*time.Millisecond)
	o.RecordTurn(context.Background(), "generation_failed", 40*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	joined := strings.Join(names, ",")
	assert.Contains(t, joined, "turns_processed")
	assert.Contains(t, joined, "turns_duration")
}
