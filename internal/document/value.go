package document

import (
	"math"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind classifies the dynamic type held by a Value. The constants are declared
// in the store's cross-type sort order, so comparing kinds compares brackets.
type Kind int

const (
	KindAbsent Kind = iota
	KindNull
	KindNumber
	KindString
	KindDocument
	KindArray
	KindObjectID
	KindBool
	KindTime
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindDocument:
		return "document"
	case KindArray:
		return "array"
	case KindObjectID:
		return "objectId"
	case KindBool:
		return "bool"
	case KindTime:
		return "timestamp"
	}
	return "other"
}

// Value is one field value of a Document. The zero Value is absent.
type Value struct {
	raw     interface{}
	present bool
}

// Absent returns the marker for a missing field.
func Absent() Value { return Value{} }

// ValueOf wraps a driver value (string, int32, float64, bson.A, bson.D, ...).
func ValueOf(v interface{}) Value {
	if dv, ok := v.(Value); ok {
		return dv
	}
	return Value{raw: v, present: true}
}

// Raw returns the underlying driver value; nil for both absent and null.
func (v Value) Raw() interface{} { return v.raw }

// IsAbsent reports whether the field was missing.
func (v Value) IsAbsent() bool { return !v.present }

// IsNull reports whether the field is present and null.
func (v Value) IsNull() bool { return v.Kind() == KindNull }

// Kind returns the dynamic kind of the value.
func (v Value) Kind() Kind {
	if !v.present {
		return KindAbsent
	}
	switch v.raw.(type) {
	case nil, primitive.Null, primitive.Undefined:
		return KindNull
	case int, int8, int16, int32, int64, uint8, uint16, uint32, float32, float64:
		return KindNumber
	case string:
		return KindString
	case bson.D, bson.M, map[string]interface{}, Document:
		return KindDocument
	case bson.A, []interface{}:
		return KindArray
	case primitive.ObjectID:
		return KindObjectID
	case bool:
		return KindBool
	case primitive.DateTime, time.Time, primitive.Timestamp:
		return KindTime
	}
	return KindOther
}

// AsString returns the value as a string.
func (v Value) AsString() (string, bool) {
	s, ok := v.raw.(string)
	return s, ok && v.present
}

// AsNumber returns any numeric value widened to float64.
func (v Value) AsNumber() (float64, bool) {
	if !v.present {
		return 0, false
	}
	switch n := v.raw.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// AsInt returns integral values. Floats are accepted only when they hold a
// whole number.
func (v Value) AsInt() (int64, bool) {
	if !v.present {
		return 0, false
	}
	switch n := v.raw.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	}
	f, ok := v.AsNumber()
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f {
		return 0, false
	}
	return int64(f), true
}

// AsBool returns the value as a bool.
func (v Value) AsBool() (bool, bool) {
	b, ok := v.raw.(bool)
	return b, ok && v.present
}

// AsTime returns timestamps as UTC time.Time.
func (v Value) AsTime() (time.Time, bool) {
	if !v.present {
		return time.Time{}, false
	}
	switch t := v.raw.(type) {
	case primitive.DateTime:
		return t.Time().UTC(), true
	case time.Time:
		return t.UTC(), true
	case primitive.Timestamp:
		return time.Unix(int64(t.T), 0).UTC(), true
	}
	return time.Time{}, false
}

// AsObjectID returns the value as an ObjectID.
func (v Value) AsObjectID() (primitive.ObjectID, bool) {
	id, ok := v.raw.(primitive.ObjectID)
	return id, ok && v.present
}

// AsArray returns the elements of an array value.
func (v Value) AsArray() ([]Value, bool) {
	if !v.present {
		return nil, false
	}
	var items []interface{}
	switch a := v.raw.(type) {
	case bson.A:
		items = a
	case []interface{}:
		items = a
	default:
		return nil, false
	}
	out := make([]Value, len(items))
	for i, it := range items {
		out[i] = ValueOf(it)
	}
	return out, true
}

// AsDocument returns an embedded document. Unordered maps are converted with
// their keys sorted so iteration stays deterministic.
func (v Value) AsDocument() (Document, bool) {
	if !v.present {
		return nil, false
	}
	switch d := v.raw.(type) {
	case Document:
		return d, true
	case bson.D:
		return Document(d), true
	case bson.M:
		return fromMap(d), true
	case map[string]interface{}:
		return fromMap(d), true
	}
	return nil, false
}

func fromMap(m map[string]interface{}) Document {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	d := make(Document, 0, len(keys))
	for _, k := range keys {
		d = append(d, bson.E{Key: k, Value: m[k]})
	}
	return d
}
