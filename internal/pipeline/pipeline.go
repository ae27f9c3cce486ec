// Package pipeline implements the aggregation model used to query the
// cocktails collections: a validated, ordered list of stages executed as a
// chain of lazy streams over documents fetched from a Source.
package pipeline

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// Source is the store collaborator. Fetch returns the documents of collection
// matching filter (the zero Predicate selects all) in the store's natural
// order. Errors are returned to callers unchanged.
type Source interface {
	Fetch(ctx context.Context, collection string, filter Predicate) (Stream, error)
}

// Aggregator is implemented by stores able to run a rendered pipeline
// themselves. It may return ErrNativeUnsupported.
type Aggregator interface {
	Aggregate(ctx context.Context, collection string, p mongo.Pipeline) (Stream, error)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLookupConcurrency lets each Lookup stage run up to n sub-fetches at once.
// Output order is unchanged. n <= 1 keeps sub-fetches sequential.
func WithLookupConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 1 {
			p.lookupWindow = n
		}
	}
}

// Pipeline is an immutable, validated sequence of stages.
type Pipeline struct {
	stages       []Stage
	lookupWindow int
}

// New validates stages and returns the pipeline. Any unsupported stage
// configuration is reported as a *ConfigurationError.
func New(stages []Stage, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{stages: make([]Stage, len(stages)), lookupWindow: 1}
	copy(p.stages, stages)
	for i, st := range p.stages {
		switch st.(type) {
		case Match, Sort, Lookup, AddField, Limit:
		default:
			return nil, &ConfigurationError{Index: i, Stage: fmt.Sprintf("%T", st), Reason: "unsupported stage type"}
		}
		if err := st.validate(); err != nil {
			return nil, &ConfigurationError{Index: i, Stage: st.Operator(), Reason: err.Error()}
		}
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// MustNew is New for pipelines built from constants.
func MustNew(stages ...Stage) *Pipeline {
	p, err := New(stages)
	if err != nil {
		panic(err)
	}
	return p
}

// Run executes the pipeline against collection. A leading Match is handed to
// the source as the fetch filter; all other stages run in process, in order.
// Nothing is fetched until the returned stream's first Next, except for the
// initial Fetch call itself.
func (p *Pipeline) Run(ctx context.Context, src Source, collection string) (Stream, error) {
	stages := p.stages
	var filter Predicate
	if len(stages) > 0 {
		if m, ok := stages[0].(Match); ok {
			filter = m.Filter
			stages = stages[1:]
		}
	}

	s, err := src.Fetch(ctx, collection, filter)
	if err != nil {
		return nil, err
	}
	for _, st := range stages {
		s = p.wrap(s, src, st)
	}
	return s, nil
}

func (p *Pipeline) wrap(s Stream, src Source, st Stage) Stream {
	switch x := st.(type) {
	case Match:
		return Filter(s, x.Filter)
	case Sort:
		return &sortStream{src: s, stage: x}
	case Lookup:
		return newLookupStream(s, src, x, p.lookupWindow)
	case AddField:
		return &addFieldStream{src: s, stage: x}
	case Limit:
		return &limitStream{src: s, n: x.N}
	}
	// New admits only the five stage types above
	return s
}
