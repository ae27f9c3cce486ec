package recipe

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/gogotex/cocktails/internal/document"
)

// ProjectionError reports a document that does not satisfy the Recipe
// contract. Field is a path such as "ingredients[2].name".
type ProjectionError struct {
	Field    string
	Expected string
	Got      document.Kind
}

func (e *ProjectionError) Error() string {
	if e.Got == document.KindAbsent {
		return fmt.Sprintf("projection: missing field %q (expected %s)", e.Field, e.Expected)
	}
	return fmt.Sprintf("projection: field %q: expected %s, got %s", e.Field, e.Expected, e.Got)
}

// IsProjectionError reports whether err is, or wraps, a *ProjectionError.
func IsProjectionError(err error) bool {
	var pe *ProjectionError
	return errors.As(err, &pe)
}

// Policy decides what a consumer does with a record that fails projection.
type Policy int

const (
	// AbortOnInvalid stops at the first invalid record and returns its error.
	AbortOnInvalid Policy = iota
	// SkipInvalid drops invalid records and keeps going.
	SkipInvalid
)

func (p Policy) String() string {
	if p == SkipInvalid {
		return "skip"
	}
	return "abort"
}

// Project converts d into a Recipe. name, the ingredients array (possibly
// empty) and every ingredient name and review when/rating are required. A
// missing or null rating becomes 0 and missing reviews become an empty list;
// optional fields present with the wrong type are still an error. Review
// times are truncated to milliseconds, the precision the store keeps.
func Project(d document.Document) (*Recipe, error) {
	r := &Recipe{Ingredients: []Ingredient{}, Reviews: []Review{}}

	if id := d.Get("_id"); !id.IsAbsent() && !id.IsNull() {
		r.ID = id.Raw()
	}

	name, err := requireString(d.Get("name"), "name")
	if err != nil {
		return nil, err
	}
	r.Name = name

	ingredients, err := requireArray(d.Get("ingredients"), "ingredients")
	if err != nil {
		return nil, err
	}
	for i, it := range ingredients {
		field := fmt.Sprintf("ingredients[%d]", i)
		sub, err := requireDocument(it, field)
		if err != nil {
			return nil, err
		}
		n, err := requireString(sub.Get("name"), field+".name")
		if err != nil {
			return nil, err
		}
		r.Ingredients = append(r.Ingredients, Ingredient{Name: n})
	}

	if v := d.Get("rating"); !v.IsAbsent() && !v.IsNull() {
		f, ok := v.AsNumber()
		if !ok {
			return nil, &ProjectionError{Field: "rating", Expected: "number", Got: v.Kind()}
		}
		r.Rating = f
	}

	reviews, err := optionalArray(d.Get("reviews"), "reviews")
	if err != nil {
		return nil, err
	}
	for i, it := range reviews {
		rv, err := projectReview(it, fmt.Sprintf("reviews[%d]", i))
		if err != nil {
			return nil, err
		}
		r.Reviews = append(r.Reviews, rv)
	}
	return r, nil
}

// ProjectReview converts a stored review document.
func ProjectReview(d document.Document) (Review, error) {
	return projectReview(document.ValueOf(d), "")
}

func projectReview(v document.Value, field string) (Review, error) {
	prefix := field
	if prefix != "" {
		prefix += "."
	}
	sub, err := requireDocument(v, fieldOr(field, "review"))
	if err != nil {
		return Review{}, err
	}

	when := sub.Get("when")
	t, ok := when.AsTime()
	if !ok {
		return Review{}, &ProjectionError{Field: prefix + "when", Expected: "timestamp", Got: when.Kind()}
	}

	rating := sub.Get("rating")
	n, ok := rating.AsInt()
	if !ok || n < 0 || n > math.MaxUint8 {
		return Review{}, &ProjectionError{Field: prefix + "rating", Expected: "integer in [0,255]", Got: rating.Kind()}
	}

	rv := Review{When: t.Truncate(time.Millisecond), Rating: uint8(n)}
	if id := sub.Get("recipe_id"); !id.IsAbsent() && !id.IsNull() {
		rv.RecipeID = id.Raw()
	}
	return rv, nil
}

// Document serializes r back into a store document.
func (r *Recipe) Document() (document.Document, error) {
	raw, err := bson.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal recipe %q: %w", r.Name, err)
	}
	var d bson.D
	if err := bson.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("unmarshal recipe %q: %w", r.Name, err)
	}
	return document.Document(d), nil
}

// Document serializes rv into a store document.
func (rv Review) Document() (document.Document, error) {
	raw, err := bson.Marshal(rv)
	if err != nil {
		return nil, fmt.Errorf("marshal review: %w", err)
	}
	var d bson.D
	if err := bson.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("unmarshal review: %w", err)
	}
	return document.Document(d), nil
}

func requireString(v document.Value, field string) (string, error) {
	s, ok := v.AsString()
	if !ok {
		return "", &ProjectionError{Field: field, Expected: "string", Got: v.Kind()}
	}
	return s, nil
}

func requireDocument(v document.Value, field string) (document.Document, error) {
	d, ok := v.AsDocument()
	if !ok {
		return nil, &ProjectionError{Field: field, Expected: "document", Got: v.Kind()}
	}
	return d, nil
}

func requireArray(v document.Value, field string) ([]document.Value, error) {
	items, ok := v.AsArray()
	if !ok {
		return nil, &ProjectionError{Field: field, Expected: "array", Got: v.Kind()}
	}
	return items, nil
}

func optionalArray(v document.Value, field string) ([]document.Value, error) {
	if v.IsAbsent() || v.IsNull() {
		return nil, nil
	}
	items, ok := v.AsArray()
	if !ok {
		return nil, &ProjectionError{Field: field, Expected: "array", Got: v.Kind()}
	}
	return items, nil
}

func fieldOr(field, fallback string) string {
	if field == "" {
		return fallback
	}
	return field
}
