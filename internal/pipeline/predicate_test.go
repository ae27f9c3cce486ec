package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/gogotex/cocktails/internal/document"
)

func TestPredicateMatches(t *testing.T) {
	negroni := document.New(
		"name", "Negroni Sbagliato",
		"ingredients", bson.A{
			bson.D{{Key: "name", Value: "Campari"}},
			bson.D{{Key: "name", Value: "Sweet Vermouth"}},
			bson.D{{Key: "name", Value: "Prosecco"}},
		},
		"tags", bson.A{"bitter", "sparkling"},
		"abv", 12.5,
	)

	cases := []struct {
		name string
		p    Predicate
		want bool
	}{
		{"zero matches all", Predicate{}, true},
		{"eq string", Eq("name", "Negroni Sbagliato"), true},
		{"eq other string", Eq("name", "Negroni"), false},
		{"eq number widening", Eq("abv", int32(12)), false},
		{"eq against array element", Eq("tags", "bitter"), true},
		{"eq dotted through array", Eq("ingredients.name", "Prosecco"), true},
		{"lte string", Lte("name", "Negroni Sbagliato"), true},
		{"lt string", Lt("name", "Negroni Sbagliato"), false},
		{"gt number", Gt("abv", 10), true},
		{"gte number", Gte("abv", 12.5), true},
		{"ordered never crosses types", Lt("name", 5), false},
		{"ordered never matches missing", Lt("missing", "z"), false},
		{"eq null matches missing", Eq("missing", nil), true},
		{"elemMatch hit", ElemMatch("ingredients", Eq("name", "Campari")), true},
		{"elemMatch miss", ElemMatch("ingredients", Eq("name", "Vodka")), false},
		{"elemMatch on scalar", ElemMatch("name", Eq("name", "x")), false},
		{"and all", And(Gt("abv", 10), Eq("tags", "sparkling")), true},
		{"and one fails", And(Gt("abv", 10), Eq("tags", "sweet")), false},
		{"in hit", In("name", "Negroni", "Negroni Sbagliato"), true},
		{"in miss", In("name", "Negroni", "Americano"), false},
		{"in empty", In("name"), false},
		{"in through array", In("tags", "sweet", "bitter"), true},
	}
	for _, c := range cases {
		require.Equal(t, c.want, c.p.Matches(negroni), c.name)
	}
}

func TestPredicateValidate(t *testing.T) {
	require.NoError(t, Predicate{}.Validate())
	require.NoError(t, ElemMatch("ingredients", Eq("name", "Vodka")).Validate())
	require.NoError(t, And(Eq("a", 1), Lt("b", "x")).Validate())

	require.Error(t, And().Validate())
	require.Error(t, And(Predicate{}).Validate())
	require.Error(t, Eq("$where", 1).Validate())
	require.Error(t, Eq("a", struct{}{}).Validate())
	require.Error(t, Gt("a", nil).Validate())
	require.Error(t, ElemMatch("a", And(Eq("b", 1))).Validate())
	require.Error(t, Predicate{Op: "$regex", Field: "name", Value: "^N"}.Validate())
	require.NoError(t, In("recipe_id", 1, 2).Validate())
	require.Error(t, Predicate{Op: OpIn, Field: "recipe_id", Value: 1}.Validate())
	require.Error(t, In("recipe_id", struct{}{}).Validate())
}

func TestPredicateBSON(t *testing.T) {
	require.Equal(t, bson.D{}, Predicate{}.BSON())
	require.Equal(t, bson.D{{Key: "name", Value: "Negroni Sbagliato"}}, Eq("name", "Negroni Sbagliato").BSON())
	require.Equal(t,
		bson.D{{Key: "name", Value: bson.D{{Key: "$lte", Value: "Addison"}}}},
		Lte("name", "Addison").BSON())
	require.Equal(t,
		bson.D{{Key: "ingredients", Value: bson.D{{Key: "$elemMatch", Value: bson.D{{Key: "name", Value: "Vodka"}}}}}},
		ElemMatch("ingredients", Eq("name", "Vodka")).BSON())
	require.Equal(t,
		bson.D{{Key: "recipe_id", Value: bson.D{{Key: "$in", Value: bson.A{int32(1), int32(2)}}}}},
		In("recipe_id", document.ValueOf(int32(1)), int32(2)).BSON())
}

func TestPredicateUnwrapsValues(t *testing.T) {
	p := Eq("recipe_id", document.ValueOf(int32(7)))
	require.Equal(t, int32(7), p.Value)
	require.True(t, p.Matches(document.New("recipe_id", int64(7))))
}

func TestRender(t *testing.T) {
	p := MustNew(
		Sort{Field: "name", Direction: Ascending},
		Lookup{From: "reviews", LocalField: "_id", ForeignField: "recipe_id", As: "reviews"},
		AddField{Name: "rating", Expr: AverageRating()},
		Sort{Field: "rating", Direction: Descending},
		Limit{N: 10},
	)
	out, err := p.Render()
	require.NoError(t, err)
	require.Len(t, out, 5)
	require.Equal(t, bson.D{{Key: "$sort", Value: bson.D{{Key: "name", Value: 1}}}}, out[0])
	require.Equal(t, bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: "reviews"},
		{Key: "localField", Value: "_id"},
		{Key: "foreignField", Value: "recipe_id"},
		{Key: "as", Value: "reviews"},
	}}}, out[1])
	require.Equal(t, bson.D{{Key: "$addFields", Value: bson.D{
		{Key: "rating", Value: bson.D{{Key: "$avg", Value: "$reviews.rating"}}},
	}}}, out[2])
	require.Equal(t, bson.D{{Key: "$sort", Value: bson.D{{Key: "rating", Value: -1}}}}, out[3])
	require.Equal(t, bson.D{{Key: "$limit", Value: 10}}, out[4])
}

func TestRenderRejectsLimitZero(t *testing.T) {
	_, err := MustNew(Limit{N: 0}).Render()
	require.ErrorIs(t, err, ErrNativeUnsupported)
}

func TestStageOperators(t *testing.T) {
	require.Equal(t, "$match", Match{}.Operator())
	require.Equal(t, "$sort", Sort{}.Operator())
	require.Equal(t, "$lookup", Lookup{}.Operator())
	require.Equal(t, "$addFields", AddField{}.Operator())
	require.Equal(t, "$limit", Limit{N: 1}.Operator())
}

func TestStageStrings(t *testing.T) {
	require.Equal(t, "$sort rating desc", Sort{Field: "rating", Direction: Descending}.String())
	require.Equal(t, "$addFields rating = roundHalf(avg(reviews.rating))", AddField{Name: "rating", Expr: DisplayRating()}.String())
	require.Equal(t, "$match {name: {$lte: Addison}}", Match{Filter: Lte("name", "Addison")}.String())
}
