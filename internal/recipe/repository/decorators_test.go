package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gogotex/cocktails/internal/document"
	"github.com/gogotex/cocktails/internal/pipeline"
	"github.com/gogotex/cocktails/pkg/metrics"
)

type failingSource struct{ err error }

func (f failingSource) Fetch(context.Context, string, pipeline.Predicate) (pipeline.Stream, error) {
	return nil, f.err
}

func TestInstrumented_CountsFetchesAndDocuments(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryRepo()
	require.NoError(t, inner.Insert(ctx, "instr_recipes",
		document.New("name", "a"), document.New("name", "b"), document.New("name", "c")))

	core, logs := observer.New(zapcore.DebugLevel)
	s := NewInstrumented(inner, zap.New(core))

	st, err := s.Fetch(ctx, "instr_recipes", pipeline.Predicate{})
	require.NoError(t, err)
	docs, err := pipeline.Collect(ctx, st)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	require.Equal(t, 1.0, testutil.ToFloat64(metrics.StoreFetches.WithLabelValues("instr_recipes", "ok")))
	require.Equal(t, 3.0, testutil.ToFloat64(metrics.DocumentsStreamed.WithLabelValues("instr_recipes")))
	require.Equal(t, 1, logs.FilterMessage("Store stream closed").Len())
}

func TestInstrumented_FetchError(t *testing.T) {
	boom := errors.New("no reachable servers")
	core, logs := observer.New(zapcore.DebugLevel)
	s := NewInstrumented(failingSource{err: boom}, zap.New(core))

	_, err := s.Fetch(context.Background(), "instr_broken", pipeline.Predicate{})
	require.Same(t, boom, err)
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.StoreFetches.WithLabelValues("instr_broken", "error")))
	require.Equal(t, 1, logs.FilterMessage("Store fetch failed").Len())
}

func TestInstrumented_PassThrough(t *testing.T) {
	ctx := context.Background()
	ro := NewInstrumented(failingSource{}, nil)
	require.ErrorIs(t, ro.Insert(ctx, "recipes", document.New("name", "x")), ErrReadOnly)
	require.ErrorIs(t, ro.Drop(ctx, "recipes"), ErrReadOnly)
	_, err := ro.Aggregate(ctx, "recipes", nil)
	require.ErrorIs(t, err, pipeline.ErrNativeUnsupported)

	mem := NewMemoryRepo()
	rw := NewInstrumented(mem, nil)
	require.NoError(t, rw.Insert(ctx, "recipes", document.New("name", "x")))
	require.Equal(t, 1, mem.Count("recipes"))
}

func TestThrottled_WaitsForTokens(t *testing.T) {
	ctx := context.Background()
	s := NewThrottled(NewMemoryRepo(), 20, 1)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := s.Fetch(ctx, "recipes", pipeline.Predicate{})
		require.NoError(t, err)
	}
	// burst 1 at 20/s: the 2nd and 3rd fetch each wait ~50ms
	require.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestThrottled_RespectsContext(t *testing.T) {
	s := NewThrottled(NewMemoryRepo(), 0.001, 1)
	_, err := s.Fetch(context.Background(), "recipes", pipeline.Predicate{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = s.Fetch(ctx, "recipes", pipeline.Predicate{})
	require.Error(t, err)
}

func TestThrottled_Unlimited(t *testing.T) {
	s := NewThrottled(NewMemoryRepo(), 0, 0)
	for i := 0; i < 100; i++ {
		_, err := s.Fetch(context.Background(), "recipes", pipeline.Predicate{})
		require.NoError(t, err)
	}
	_, err := s.Aggregate(context.Background(), "recipes", nil)
	require.ErrorIs(t, err, pipeline.ErrNativeUnsupported)
}
