package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAccessorsReportWrongType(t *testing.T) {
	d := New("name", "Negroni", "rating", "five", "count", int32(3), "ratio", 2.5)

	name, ok := d.Get("name").AsString()
	require.True(t, ok)
	require.Equal(t, "Negroni", name)

	_, ok = d.Get("rating").AsNumber()
	require.False(t, ok, "string must not read as a number")

	n, ok := d.Get("count").AsInt()
	require.True(t, ok)
	require.EqualValues(t, 3, n)

	_, ok = d.Get("ratio").AsInt()
	require.False(t, ok, "fractional float is not an integer")

	missing := d.Get("nope")
	require.True(t, missing.IsAbsent())
	require.Equal(t, KindAbsent, missing.Kind())
	_, ok = missing.AsString()
	require.False(t, ok)
}

func TestKinds(t *testing.T) {
	now := time.Now()
	cases := map[Kind]interface{}{
		KindNull:     nil,
		KindNumber:   int64(7),
		KindString:   "x",
		KindDocument: bson.D{{Key: "a", Value: 1}},
		KindArray:    bson.A{1, 2},
		KindObjectID: primitive.NewObjectID(),
		KindBool:     true,
		KindTime:     primitive.NewDateTimeFromTime(now),
	}
	for want, raw := range cases {
		require.Equal(t, want, ValueOf(raw).Kind(), "raw %#v", raw)
	}
	require.Equal(t, KindDocument, ValueOf(bson.M{"a": 1}).Kind())
	require.Equal(t, KindTime, ValueOf(now).Kind())
}

func TestPathThroughArray(t *testing.T) {
	d := New("reviews", bson.A{
		bson.D{{Key: "rating", Value: int32(3)}},
		bson.D{{Key: "when", Value: "yesterday"}},
		bson.D{{Key: "rating", Value: int32(5)}},
	})
	ratings, ok := d.Path("reviews.rating").AsArray()
	require.True(t, ok)
	require.Len(t, ratings, 2)
	n, _ := ratings[1].AsInt()
	require.EqualValues(t, 5, n)

	empty := New("reviews", bson.A{})
	got, ok := empty.Path("reviews.rating").AsArray()
	require.True(t, ok)
	require.Empty(t, got)

	require.True(t, New().Path("reviews.rating").IsAbsent())
}

func TestPathNestedDocument(t *testing.T) {
	d := New("quantity", bson.D{{Key: "unit", Value: "ml"}, {Key: "amount", Value: 30}})
	unit, ok := d.Path("quantity.unit").AsString()
	require.True(t, ok)
	require.Equal(t, "ml", unit)
	require.True(t, d.Path("quantity.unit.deeper").IsAbsent())
}

func TestWithCopiesAndKeepsOrder(t *testing.T) {
	d := New("name", "A", "rating", 1)
	d2 := d.With("rating", 4.5)
	d3 := d2.With("reviews", bson.A{})

	require.Equal(t, []string{"name", "rating"}, d.Keys())
	v, _ := d.Get("rating").AsNumber()
	require.Equal(t, 1.0, v, "source document must stay untouched")

	require.Equal(t, []string{"name", "rating", "reviews"}, d3.Keys())
	v, _ = d3.Get("rating").AsNumber()
	require.Equal(t, 4.5, v)
}

func TestCompareCrossType(t *testing.T) {
	ordered := []Value{
		Absent(),
		ValueOf(int32(-1)),
		ValueOf(2.5),
		ValueOf("Addison"),
		ValueOf("Boulevardier"),
		ValueOf(bson.D{{Key: "a", Value: 1}}),
		ValueOf(bson.A{1}),
		ValueOf(primitive.NewObjectID()),
		ValueOf(false),
		ValueOf(true),
		ValueOf(primitive.NewDateTimeFromTime(time.Unix(0, 0))),
	}
	for i := 0; i+1 < len(ordered); i++ {
		require.Equal(t, -1, Compare(ordered[i], ordered[i+1]), "index %d", i)
		require.Equal(t, 1, Compare(ordered[i+1], ordered[i]), "index %d", i)
	}
	require.True(t, Equal(Absent(), ValueOf(nil)))
	require.True(t, Equal(ValueOf(int32(4)), ValueOf(4.0)))
	require.False(t, Comparable(ValueOf("4"), ValueOf(4)))
}

func TestAsDocumentFromMapIsSorted(t *testing.T) {
	d, ok := ValueOf(map[string]interface{}{"b": 1, "a": 2}).AsDocument()
	require.True(t, ok)
	require.Equal(t, []string{"a", "b"}, d.Keys())
}
