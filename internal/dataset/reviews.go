package dataset

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/gogotex/cocktails/internal/document"
	"github.com/gogotex/cocktails/internal/pipeline"
	"github.com/gogotex/cocktails/internal/recipe/repository"
	"github.com/gogotex/cocktails/pkg/logger"
)

const (
	maxReviewsPerRecipe = 20
	reviewWindow        = 365 * 24 * time.Hour
)

// GenerateReviews returns between 0 and 20 reviews for recipeID. Each recipe
// gets its own mean (1..5) and spread (0..2); ratings are drawn from that
// normal distribution, rounded and clamped to 0..5. Timestamps fall within
// the year before now.
func GenerateReviews(rng *rand.Rand, recipeID interface{}, now time.Time) []document.Document {
	count := rng.Intn(maxReviewsPerRecipe + 1)
	mean := float64(1 + rng.Intn(5))
	stdDev := rng.Float64() * 2

	out := make([]document.Document, 0, count)
	for i := 0; i < count; i++ {
		back := time.Duration(rng.Float64() * float64(reviewWindow))
		rating := math.RoundToEven(rng.NormFloat64()*stdDev + mean)
		rating = math.Max(0, math.Min(5, rating))
		out = append(out, document.New(
			"when", now.Add(-back).UTC().Truncate(time.Millisecond),
			"rating", int32(rating),
			"recipe_id", recipeID,
		))
	}
	return out
}

// SeedReviews generates reviews for every recipe in src and writes them to the
// reviews collection. It returns the number of reviews written.
func SeedReviews(ctx context.Context, src pipeline.Source, w repository.Writer, rng *rand.Rand, now time.Time) (int, error) {
	st, err := src.Fetch(ctx, "recipes", pipeline.Predicate{})
	if err != nil {
		return 0, err
	}
	recipes, err := pipeline.Collect(ctx, st)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, r := range recipes {
		id := r.Get("_id")
		if id.IsAbsent() {
			name, _ := r.Get("name").AsString()
			logger.Warnf("recipe %q has no _id, no reviews generated", name)
			continue
		}
		reviews := GenerateReviews(rng, id.Raw(), now)
		if len(reviews) == 0 {
			continue
		}
		if err := w.Insert(ctx, "reviews", reviews...); err != nil {
			return total, fmt.Errorf("insert reviews: %w", err)
		}
		total += len(reviews)
	}
	logger.Infof("generated %d reviews for %d recipes", total, len(recipes))
	return total, nil
}
