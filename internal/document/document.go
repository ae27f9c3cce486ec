// Package document models the dynamically shaped records exchanged with the
// document store. A Document keeps field order; every read goes through Value
// so callers never assume a field's type without checking it.
package document

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// Document is an ordered key/value record as decoded by the mongo driver.
type Document bson.D

// New builds a Document from key/value pairs: New("name", "Negroni", "rating", 4).
// A trailing key without a value is ignored.
func New(kv ...interface{}) Document {
	d := make(Document, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		k, _ := kv[i].(string)
		d = append(d, bson.E{Key: k, Value: kv[i+1]})
	}
	return d
}

// D returns the document as bson.D for handing to the driver.
func (d Document) D() bson.D { return bson.D(d) }

// Len returns the number of top-level fields.
func (d Document) Len() int { return len(d) }

// Keys returns the top-level field names in order.
func (d Document) Keys() []string {
	keys := make([]string, len(d))
	for i, e := range d {
		keys[i] = e.Key
	}
	return keys
}

// Get returns the top-level field, or an absent Value.
func (d Document) Get(field string) Value {
	for _, e := range d {
		if e.Key == field {
			return ValueOf(e.Value)
		}
	}
	return Absent()
}

// Has reports whether the top-level field is present (null counts as present).
func (d Document) Has(field string) bool {
	return !d.Get(field).IsAbsent()
}

// Path resolves a dotted path such as "reviews.rating". Crossing an array
// collects the path from every embedded document in it, so the result of
// "reviews.rating" is an array of ratings (empty when reviews is empty).
func (d Document) Path(path string) Value {
	if path == "" {
		return Absent()
	}
	return resolve(ValueOf(d), strings.Split(path, "."))
}

func resolve(v Value, parts []string) Value {
	if len(parts) == 0 {
		return v
	}
	switch v.Kind() {
	case KindDocument:
		sub, _ := v.AsDocument()
		return resolve(sub.Get(parts[0]), parts[1:])
	case KindArray:
		items, _ := v.AsArray()
		out := bson.A{}
		for _, it := range items {
			if it.Kind() != KindDocument {
				continue
			}
			r := resolve(it, parts)
			if r.IsAbsent() {
				continue
			}
			out = append(out, r.Raw())
		}
		return ValueOf(out)
	}
	return Absent()
}

// With returns a copy of d with field set to v. An existing field keeps its
// position; a new one is appended. d itself is never modified.
func (d Document) With(field string, v interface{}) Document {
	if dv, ok := v.(Value); ok {
		v = dv.Raw()
	}
	out := make(Document, len(d), len(d)+1)
	copy(out, d)
	for i := range out {
		if out[i].Key == field {
			out[i].Value = v
			return out
		}
	}
	return append(out, bson.E{Key: field, Value: v})
}

// Clone returns a shallow copy of the top-level fields.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	copy(out, d)
	return out
}
