// Package recipe holds the typed cocktail model and the projection from
// loosely-typed store documents into it.
package recipe

import (
	"strconv"
	"strings"
	"time"
)

// Recipe is a cocktail with its ingredients and, when joined, its reviews.
type Recipe struct {
	ID          interface{}  `json:"id,omitempty" bson:"_id,omitempty"`
	Name        string       `json:"name" bson:"name"`
	Ingredients []Ingredient `json:"ingredients" bson:"ingredients"`
	Rating      float64      `json:"rating" bson:"rating"`
	Reviews     []Review     `json:"reviews" bson:"reviews"`
}

// Ingredient is one entry of a recipe's ingredient list.
type Ingredient struct {
	Name string `json:"name" bson:"name"`
}

// Review is a single rating left for a recipe.
type Review struct {
	RecipeID interface{} `json:"recipeId,omitempty" bson:"recipe_id,omitempty"`
	When     time.Time   `json:"when" bson:"when"`
	Rating   uint8       `json:"rating" bson:"rating"`
}

// String renders the recipe as "Recipe: <name>, Rating: <rating> (<r1>, <r2>)".
func (r *Recipe) String() string {
	ratings := make([]string, len(r.Reviews))
	for i, rv := range r.Reviews {
		ratings[i] = rv.String()
	}
	return "Recipe: " + r.Name +
		", Rating: " + strconv.FormatFloat(r.Rating, 'f', -1, 64) +
		" (" + strings.Join(ratings, ", ") + ")"
}

func (rv Review) String() string { return strconv.Itoa(int(rv.Rating)) }
