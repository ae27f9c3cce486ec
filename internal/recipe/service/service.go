package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gogotex/cocktails/internal/pipeline"
	"github.com/gogotex/cocktails/internal/recipe"
	"github.com/gogotex/cocktails/internal/recipe/repository"
	"github.com/gogotex/cocktails/pkg/logger"
	"github.com/gogotex/cocktails/pkg/metrics"
)

const (
	RecipesCollection = "recipes"
	ReviewsCollection = "reviews"
)

var (
	ErrNotFound = errors.New("recipe not found")
)

// Service is the query facade used by the CLI and the HTTP handlers.
// Find and Aggregate return raw document streams; projection into recipes is
// a separate, explicit step (Recipes) so callers choose the failure policy.
type Service interface {
	Find(ctx context.Context, filter pipeline.Predicate, sort *pipeline.Sort) (pipeline.Stream, error)
	Aggregate(ctx context.Context, stages ...pipeline.Stage) (pipeline.Stream, error)
	Recipes(ctx context.Context, s pipeline.Stream, policy recipe.Policy) ([]*recipe.Recipe, error)

	All(ctx context.Context) ([]*recipe.Recipe, error)
	ByName(ctx context.Context, name string) (*recipe.Recipe, error)
	WithIngredient(ctx context.Context, ingredient string) ([]*recipe.Recipe, error)
	TopRated(ctx context.Context, n int, rounded bool) ([]*recipe.Recipe, error)
	AddReview(ctx context.Context, name string, rating uint8, when time.Time) (*recipe.Review, error)
}

// Option configures the service.
type Option func(*queryService)

// WithNativeAggregation runs pipelines inside the store when it implements
// pipeline.Aggregator, falling back to in-process execution when the store
// or the pipeline has no native form.
func WithNativeAggregation(enabled bool) Option {
	return func(s *queryService) { s.native = enabled }
}

// WithLookupConcurrency sets the Lookup prefetch window.
func WithLookupConcurrency(n int) Option {
	return func(s *queryService) { s.lookupWindow = n }
}

// WithCollection overrides the collection Find and Aggregate query.
func WithCollection(name string) Option {
	return func(s *queryService) { s.collection = name }
}

// New returns a Service over src.
func New(src pipeline.Source, opts ...Option) Service {
	s := &queryService{src: src, collection: RecipesCollection, lookupWindow: 1}
	for _, o := range opts {
		o(s)
	}
	return s
}

type queryService struct {
	src          pipeline.Source
	collection   string
	native       bool
	lookupWindow int
}

func (s *queryService) Find(ctx context.Context, filter pipeline.Predicate, sort *pipeline.Sort) (pipeline.Stream, error) {
	stages := []pipeline.Stage{pipeline.Match{Filter: filter}}
	if sort != nil {
		stages = append(stages, *sort)
	}
	return s.Aggregate(ctx, stages...)
}

func (s *queryService) Aggregate(ctx context.Context, stages ...pipeline.Stage) (pipeline.Stream, error) {
	p, err := pipeline.New(stages, pipeline.WithLookupConcurrency(s.lookupWindow))
	if err != nil {
		return nil, err
	}
	if s.native {
		if agg, ok := s.src.(pipeline.Aggregator); ok {
			st, err := s.runNative(ctx, agg, p)
			if !errors.Is(err, pipeline.ErrNativeUnsupported) {
				return st, err
			}
			logger.Debugf("native aggregation unavailable, running in process: %v", err)
		}
	}
	metrics.Aggregations.WithLabelValues("local").Inc()
	return p.Run(ctx, s.src, s.collection)
}

func (s *queryService) runNative(ctx context.Context, agg pipeline.Aggregator, p *pipeline.Pipeline) (pipeline.Stream, error) {
	rendered, err := p.Render()
	if err != nil {
		return nil, err
	}
	st, err := agg.Aggregate(ctx, s.collection, rendered)
	if err != nil {
		return nil, err
	}
	metrics.Aggregations.WithLabelValues("native").Inc()
	return st, nil
}

func (s *queryService) Recipes(ctx context.Context, st pipeline.Stream, policy recipe.Policy) ([]*recipe.Recipe, error) {
	defer st.Close(ctx)
	out := []*recipe.Recipe{}
	for st.Next(ctx) {
		r, err := recipe.Project(st.Document())
		if err != nil {
			metrics.ProjectionFailures.WithLabelValues(policy.String()).Inc()
			if policy == recipe.AbortOnInvalid {
				return nil, err
			}
			logger.Warnf("skipping document %v: %v", st.Document().Get("_id").Raw(), err)
			continue
		}
		out = append(out, r)
	}
	if err := st.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *queryService) query(ctx context.Context, stages ...pipeline.Stage) ([]*recipe.Recipe, error) {
	st, err := s.Aggregate(ctx, stages...)
	if err != nil {
		return nil, err
	}
	return s.Recipes(ctx, st, recipe.SkipInvalid)
}

func (s *queryService) All(ctx context.Context) ([]*recipe.Recipe, error) {
	return s.query(ctx, AllStages()...)
}

func (s *queryService) ByName(ctx context.Context, name string) (*recipe.Recipe, error) {
	list, err := s.query(ctx, ByNameStages(name)...)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return list[0], nil
}

func (s *queryService) WithIngredient(ctx context.Context, ingredient string) ([]*recipe.Recipe, error) {
	return s.query(ctx, WithIngredientStages(ingredient)...)
}

func (s *queryService) TopRated(ctx context.Context, n int, rounded bool) ([]*recipe.Recipe, error) {
	return s.query(ctx, TopRatedStages(n, rounded)...)
}

// AddReview stores a review for the recipe called name in the reviews
// collection, linked by the recipe's _id.
func (s *queryService) AddReview(ctx context.Context, name string, rating uint8, when time.Time) (*recipe.Review, error) {
	w, ok := s.src.(repository.Writer)
	if !ok {
		return nil, repository.ErrReadOnly
	}
	st, err := s.src.Fetch(ctx, s.collection, pipeline.Eq("name", name))
	if err != nil {
		return nil, err
	}
	docs, err := pipeline.Collect(ctx, st)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	id := docs[0].Get("_id")
	if id.IsAbsent() || id.IsNull() {
		return nil, fmt.Errorf("recipe %q has no _id", name)
	}

	// stored timestamps keep millisecond precision
	rv := recipe.Review{RecipeID: id.Raw(), When: when.UTC().Truncate(time.Millisecond), Rating: rating}
	d, err := rv.Document()
	if err != nil {
		return nil, err
	}
	if err := w.Insert(ctx, ReviewsCollection, d); err != nil {
		return nil, err
	}
	logger.Infof("review %d added to %q", rating, name)
	return &rv, nil
}
