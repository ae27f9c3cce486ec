package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/time/rate"

	"github.com/gogotex/cocktails/internal/document"
	"github.com/gogotex/cocktails/internal/pipeline"
)

// Throttled bounds the rate of store round-trips. Each Fetch (including every
// Lookup sub-fetch) and each Aggregate waits for a token first.
type Throttled struct {
	inner pipeline.Source
	lim   *rate.Limiter
}

// NewThrottled allows rps fetches per second with the given burst. rps <= 0
// disables throttling.
func NewThrottled(inner pipeline.Source, rps float64, burst int) *Throttled {
	lim := rate.NewLimiter(rate.Inf, 0)
	if rps > 0 {
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return &Throttled{inner: inner, lim: lim}
}

func (t *Throttled) Fetch(ctx context.Context, collection string, filter pipeline.Predicate) (pipeline.Stream, error) {
	if err := t.lim.Wait(ctx); err != nil {
		return nil, err
	}
	return t.inner.Fetch(ctx, collection, filter)
}

func (t *Throttled) Aggregate(ctx context.Context, collection string, p mongo.Pipeline) (pipeline.Stream, error) {
	if _, ok := t.inner.(pipeline.Aggregator); !ok {
		return nil, pipeline.ErrNativeUnsupported
	}
	if err := t.lim.Wait(ctx); err != nil {
		return nil, err
	}
	return aggregate(ctx, t.inner, collection, p)
}

func (t *Throttled) Insert(ctx context.Context, collection string, docs ...document.Document) error {
	w, err := writer(t.inner)
	if err != nil {
		return err
	}
	return w.Insert(ctx, collection, docs...)
}

func (t *Throttled) Drop(ctx context.Context, collection string) error {
	w, err := writer(t.inner)
	if err != nil {
		return err
	}
	return w.Drop(ctx, collection)
}
