package service

import (
	"github.com/gogotex/cocktails/internal/pipeline"
)

// ReviewsLookup joins every recipe with its reviews under "reviews".
func ReviewsLookup() pipeline.Lookup {
	return pipeline.Lookup{From: ReviewsCollection, LocalField: "_id", ForeignField: "recipe_id", As: "reviews"}
}

// AllStages lists every recipe by name.
func AllStages() []pipeline.Stage {
	return []pipeline.Stage{pipeline.Sort{Field: "name", Direction: pipeline.Ascending}}
}

// ByNameStages selects the recipe with the exact name.
func ByNameStages(name string) []pipeline.Stage {
	return []pipeline.Stage{pipeline.Match{Filter: pipeline.Eq("name", name)}}
}

// WithIngredientStages selects recipes using ingredient, sorted by name.
func WithIngredientStages(ingredient string) []pipeline.Stage {
	return []pipeline.Stage{
		pipeline.Match{Filter: pipeline.ElemMatch("ingredients", pipeline.Eq("name", ingredient))},
		pipeline.Sort{Field: "name", Direction: pipeline.Ascending},
	}
}

// TopRatedStages ranks recipes by average review rating, best first, keeping
// n. Recipes are pre-sorted by name so ties come out alphabetically. With
// rounded the rating is rounded to the nearest half star before ranking.
func TopRatedStages(n int, rounded bool) []pipeline.Stage {
	expr := pipeline.AverageRating()
	if rounded {
		expr = pipeline.DisplayRating()
	}
	return []pipeline.Stage{
		pipeline.Sort{Field: "name", Direction: pipeline.Ascending},
		ReviewsLookup(),
		pipeline.AddField{Name: "rating", Expr: expr},
		pipeline.Sort{Field: "rating", Direction: pipeline.Descending},
		pipeline.Limit{N: n},
	}
}
