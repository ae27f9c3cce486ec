package pipeline

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"

	"github.com/gogotex/cocktails/internal/document"
)

// lookupStream joins each upstream document with its matches in another
// collection. It reads up to window documents ahead, runs their sub-fetches
// concurrently and emits them in upstream order. With window 1 it issues
// exactly one sub-fetch per document pulled by the consumer.
type lookupStream struct {
	src    Stream
	source Source
	stage  Lookup
	window int

	buf     []document.Document
	pos     int
	cur     document.Document
	err     error
	pending error // upstream failure seen while filling buf
	closed  bool
}

func newLookupStream(src Stream, source Source, stage Lookup, window int) *lookupStream {
	if window < 1 {
		window = 1
	}
	return &lookupStream{src: src, source: source, stage: stage, window: window}
}

func (s *lookupStream) Next(ctx context.Context) bool {
	for {
		if s.pos < len(s.buf) {
			s.cur = s.buf[s.pos]
			s.pos++
			return true
		}
		if s.closed || s.err != nil {
			return false
		}
		if s.pending != nil {
			s.err = s.pending
			return false
		}
		if !s.fill(ctx) {
			return false
		}
	}
}

// fill pulls the next batch from upstream and joins it. It returns false when
// there is nothing left to emit.
func (s *lookupStream) fill(ctx context.Context) bool {
	batch := make([]document.Document, 0, s.window)
	for len(batch) < s.window && s.src.Next(ctx) {
		batch = append(batch, s.src.Document())
	}
	if err := s.src.Err(); err != nil {
		s.pending = err
	}
	if len(batch) == 0 {
		return s.pending != nil
	}

	joined := make([]document.Document, len(batch))
	if len(batch) == 1 {
		d, err := s.join(ctx, batch[0])
		if err != nil {
			s.err = err
			return false
		}
		joined[0] = d
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.window)
		for i, d := range batch {
			g.Go(func() error {
				out, err := s.join(gctx, d)
				if err != nil {
					return err
				}
				joined[i] = out
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			s.err = err
			return false
		}
	}
	s.buf, s.pos = joined, 0
	return true
}

func (s *lookupStream) join(ctx context.Context, d document.Document) (document.Document, error) {
	local := d.Path(s.stage.LocalField)
	filter := Eq(s.stage.ForeignField, local.Raw())
	if items, ok := local.AsArray(); ok {
		values := make([]interface{}, len(items))
		for i, it := range items {
			values[i] = it.Raw()
		}
		filter = In(s.stage.ForeignField, values...)
	}
	matches, err := s.source.Fetch(ctx, s.stage.From, filter)
	if err != nil {
		return nil, err
	}
	docs, err := Collect(ctx, matches)
	if err != nil {
		return nil, err
	}
	arr := make(bson.A, len(docs))
	for i, m := range docs {
		arr[i] = m.D()
	}
	return d.With(s.stage.As, arr), nil
}

func (s *lookupStream) Document() document.Document { return s.cur }
func (s *lookupStream) Err() error                  { return s.err }

func (s *lookupStream) Close(ctx context.Context) error {
	s.closed = true
	s.buf, s.pos = nil, 0
	return s.src.Close(ctx)
}
