package pipeline

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Render translates the pipeline into the store's aggregation syntax, e.g.
//
//	[{$lookup: {from: "reviews", localField: "_id", foreignField: "recipe_id", as: "reviews"}},
//	 {$addFields: {rating: {$avg: "$reviews.rating"}}},
//	 {$sort: {rating: -1}}, {$limit: 10}]
//
// Limit 0 has no native form ($limit must be positive) and is reported as
// ErrNativeUnsupported.
func (p *Pipeline) Render() (mongo.Pipeline, error) {
	out := make(mongo.Pipeline, 0, len(p.stages))
	for i, st := range p.stages {
		var body interface{}
		switch x := st.(type) {
		case Match:
			body = x.Filter.BSON()
		case Sort:
			body = bson.D{{Key: x.Field, Value: int(x.Direction)}}
		case Lookup:
			body = bson.D{
				{Key: "from", Value: x.From},
				{Key: "localField", Value: x.LocalField},
				{Key: "foreignField", Value: x.ForeignField},
				{Key: "as", Value: x.As},
			}
		case AddField:
			body = bson.D{{Key: x.Name, Value: x.Expr.render()}}
		case Limit:
			if x.N == 0 {
				return nil, fmt.Errorf("stage %d: $limit 0: %w", i, ErrNativeUnsupported)
			}
			body = x.N
		}
		out = append(out, bson.D{{Key: st.Operator(), Value: body}})
	}
	return out, nil
}
