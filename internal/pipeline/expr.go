package pipeline

import (
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/gogotex/cocktails/internal/document"
)

// Expression computes the value an AddField stage stores. A nil result is the
// "no value" marker and is stored as null.
type Expression interface {
	Eval(d document.Document) interface{}
	validate() error
	render() interface{}
}

// Avg is the arithmetic mean of the numeric values found at Path. When Path
// resolves to an array (e.g. "reviews.rating") its numeric elements are
// averaged; non-numeric values are ignored. With no numeric input the result
// is nil, never 0.
type Avg struct {
	Path string
}

func (a Avg) Eval(d document.Document) interface{} {
	v := d.Path(a.Path)
	items, ok := v.AsArray()
	if !ok {
		items = []document.Value{v}
	}
	var sum float64
	var n int
	for _, it := range items {
		if f, ok := it.AsNumber(); ok {
			sum += f
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return sum / float64(n)
}

func (a Avg) validate() error {
	if err := checkField(a.Path); err != nil {
		return fmt.Errorf("$avg: %w", err)
	}
	return nil
}

func (a Avg) render() interface{} {
	return bson.D{{Key: "$avg", Value: "$" + a.Path}}
}

// RoundHalf rounds the result of Of to the nearest half: multiply by 2, round
// to the nearest integer (ties to even, as the store's $round does), divide by
// 2. A nil input stays nil.
type RoundHalf struct {
	Of Expression
}

func (r RoundHalf) Eval(d document.Document) interface{} {
	f, ok := document.ValueOf(r.Of.Eval(d)).AsNumber()
	if !ok {
		return nil
	}
	return math.RoundToEven(f*2) / 2
}

func (r RoundHalf) validate() error {
	if r.Of == nil {
		return fmt.Errorf("round-half needs an input expression")
	}
	return r.Of.validate()
}

func (r RoundHalf) render() interface{} {
	doubled := bson.D{{Key: "$multiply", Value: bson.A{2, r.Of.render()}}}
	rounded := bson.D{{Key: "$round", Value: bson.A{doubled, 0}}}
	return bson.D{{Key: "$divide", Value: bson.A{rounded, 2}}}
}

// AverageRating is the mean of the looked-up review ratings.
func AverageRating() Expression { return Avg{Path: "reviews.rating"} }

// DisplayRating is AverageRating rounded to the nearest half star.
func DisplayRating() Expression { return RoundHalf{Of: AverageRating()} }

func describe(e Expression) string {
	switch x := e.(type) {
	case Avg:
		return "avg(" + x.Path + ")"
	case RoundHalf:
		return "roundHalf(" + describe(x.Of) + ")"
	}
	return fmt.Sprintf("%T", e)
}
