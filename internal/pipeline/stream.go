package pipeline

import (
	"context"
	"sort"

	"github.com/gogotex/cocktails/internal/document"
)

// Stream is a forward-only, pull-based cursor over documents, shaped like
// mongo.Cursor. Next returns false both when the stream is exhausted and when
// it failed; Err tells the two apart.
type Stream interface {
	Next(ctx context.Context) bool
	Document() document.Document
	Err() error
	Close(ctx context.Context) error
}

// Collect drains s into a slice and closes it.
func Collect(ctx context.Context, s Stream) ([]document.Document, error) {
	defer s.Close(ctx)
	out := []document.Document{}
	for s.Next(ctx) {
		out = append(out, s.Document())
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// sliceStream iterates a snapshot slice.
type sliceStream struct {
	docs []document.Document
	pos  int
	cur  document.Document
	err  error
}

// FromSlice returns a Stream over docs. The slice is not copied.
func FromSlice(docs []document.Document) Stream {
	return &sliceStream{docs: docs}
}

func (s *sliceStream) Next(ctx context.Context) bool {
	if err := ctx.Err(); err != nil {
		s.err = err
		return false
	}
	if s.pos >= len(s.docs) {
		return false
	}
	s.cur = s.docs[s.pos]
	s.pos++
	return true
}

func (s *sliceStream) Document() document.Document { return s.cur }
func (s *sliceStream) Err() error                  { return s.err }

func (s *sliceStream) Close(ctx context.Context) error {
	s.pos = len(s.docs)
	return nil
}

// filterStream drops documents not matching a predicate.
type filterStream struct {
	src  Stream
	pred Predicate
	cur  document.Document
}

// Filter lazily applies p to src.
func Filter(src Stream, p Predicate) Stream {
	if p.IsZero() {
		return src
	}
	return &filterStream{src: src, pred: p}
}

func (s *filterStream) Next(ctx context.Context) bool {
	for s.src.Next(ctx) {
		d := s.src.Document()
		if s.pred.Matches(d) {
			s.cur = d
			return true
		}
	}
	return false
}

func (s *filterStream) Document() document.Document     { return s.cur }
func (s *filterStream) Err() error                      { return s.src.Err() }
func (s *filterStream) Close(ctx context.Context) error { return s.src.Close(ctx) }

// sortStream buffers its whole input on the first Next, then sorts it.
type sortStream struct {
	src      Stream
	stage    Sort
	docs     []document.Document
	pos      int
	cur      document.Document
	err      error
	prepared bool
}

func (s *sortStream) Next(ctx context.Context) bool {
	if !s.prepared {
		s.prepared = true
		for s.src.Next(ctx) {
			s.docs = append(s.docs, s.src.Document())
		}
		if err := s.src.Err(); err != nil {
			s.err = err
			s.docs = nil
			return false
		}
		keys := make([]document.Value, len(s.docs))
		for i, d := range s.docs {
			keys[i] = d.Path(s.stage.Field)
		}
		idx := make([]int, len(s.docs))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			c := document.Compare(keys[idx[a]], keys[idx[b]])
			if s.stage.Direction == Descending {
				return c > 0
			}
			return c < 0
		})
		sorted := make([]document.Document, len(idx))
		for i, j := range idx {
			sorted[i] = s.docs[j]
		}
		s.docs = sorted
	}
	if s.err != nil || s.pos >= len(s.docs) {
		return false
	}
	s.cur = s.docs[s.pos]
	s.pos++
	return true
}

func (s *sortStream) Document() document.Document { return s.cur }
func (s *sortStream) Err() error                  { return s.err }
func (s *sortStream) Close(ctx context.Context) error {
	s.docs = nil
	s.prepared = true
	return s.src.Close(ctx)
}

// addFieldStream computes one field per document.
type addFieldStream struct {
	src   Stream
	stage AddField
	cur   document.Document
}

func (s *addFieldStream) Next(ctx context.Context) bool {
	if !s.src.Next(ctx) {
		return false
	}
	d := s.src.Document()
	s.cur = d.With(s.stage.Name, s.stage.Expr.Eval(d))
	return true
}

func (s *addFieldStream) Document() document.Document     { return s.cur }
func (s *addFieldStream) Err() error                      { return s.src.Err() }
func (s *addFieldStream) Close(ctx context.Context) error { return s.src.Close(ctx) }

// limitStream stops pulling from upstream once n documents were produced.
type limitStream struct {
	src   Stream
	n     int
	count int
	done  bool
}

func (s *limitStream) Next(ctx context.Context) bool {
	if s.done {
		return false
	}
	if s.count >= s.n {
		// release upstream now so no further store work happens
		s.done = true
		_ = s.src.Close(ctx)
		return false
	}
	if !s.src.Next(ctx) {
		return false
	}
	s.count++
	return true
}

func (s *limitStream) Document() document.Document { return s.src.Document() }
func (s *limitStream) Err() error {
	if s.done {
		return nil
	}
	return s.src.Err()
}
func (s *limitStream) Close(ctx context.Context) error {
	if s.done {
		return nil
	}
	s.done = true
	return s.src.Close(ctx)
}
