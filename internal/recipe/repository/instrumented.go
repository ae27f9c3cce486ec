package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/gogotex/cocktails/internal/document"
	"github.com/gogotex/cocktails/internal/pipeline"
	"github.com/gogotex/cocktails/pkg/metrics"
)

// Instrumented wraps a store with fetch metrics and debug logging. Aggregate
// and the Writer methods pass through when the inner store supports them.
type Instrumented struct {
	inner  pipeline.Source
	logger *zap.Logger
}

// NewInstrumented wraps inner. A nil logger disables logging.
func NewInstrumented(inner pipeline.Source, logger *zap.Logger) *Instrumented {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Instrumented{inner: inner, logger: logger}
}

func (s *Instrumented) Fetch(ctx context.Context, collection string, filter pipeline.Predicate) (pipeline.Stream, error) {
	start := time.Now()
	st, err := s.inner.Fetch(ctx, collection, filter)
	metrics.StoreFetchDuration.WithLabelValues(collection).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.StoreFetches.WithLabelValues(collection, "error").Inc()
		s.logger.Error("Store fetch failed",
			zap.String("collection", collection),
			zap.Stringer("filter", filter),
			zap.Error(err),
		)
		return nil, err
	}
	metrics.StoreFetches.WithLabelValues(collection, "ok").Inc()
	s.logger.Debug("Store fetch opened",
		zap.String("collection", collection),
		zap.Stringer("filter", filter),
		zap.Duration("duration", time.Since(start)),
	)
	return &countingStream{Stream: st, collection: collection, logger: s.logger}, nil
}

func (s *Instrumented) Aggregate(ctx context.Context, collection string, p mongo.Pipeline) (pipeline.Stream, error) {
	st, err := aggregate(ctx, s.inner, collection, p)
	if err != nil {
		if !errors.Is(err, pipeline.ErrNativeUnsupported) {
			s.logger.Error("Native aggregation failed", zap.String("collection", collection), zap.Error(err))
		}
		return nil, err
	}
	return &countingStream{Stream: st, collection: collection, logger: s.logger}, nil
}

func (s *Instrumented) Insert(ctx context.Context, collection string, docs ...document.Document) error {
	w, err := writer(s.inner)
	if err != nil {
		return err
	}
	if err := w.Insert(ctx, collection, docs...); err != nil {
		s.logger.Error("Store insert failed", zap.String("collection", collection), zap.Int("count", len(docs)), zap.Error(err))
		return err
	}
	s.logger.Debug("Store insert", zap.String("collection", collection), zap.Int("count", len(docs)))
	return nil
}

func (s *Instrumented) Drop(ctx context.Context, collection string) error {
	w, err := writer(s.inner)
	if err != nil {
		return err
	}
	return w.Drop(ctx, collection)
}

// countingStream records every document it yields.
type countingStream struct {
	pipeline.Stream
	collection string
	logger     *zap.Logger
	n          int
}

func (c *countingStream) Next(ctx context.Context) bool {
	if !c.Stream.Next(ctx) {
		return false
	}
	c.n++
	metrics.DocumentsStreamed.WithLabelValues(c.collection).Inc()
	return true
}

func (c *countingStream) Close(ctx context.Context) error {
	c.logger.Debug("Store stream closed", zap.String("collection", c.collection), zap.Int("documents", c.n))
	return c.Stream.Close(ctx)
}
