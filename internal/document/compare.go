package document

import (
	"bytes"
	"strings"
)

// rank maps a kind onto its cross-type bracket. Absent sorts together with null.
func rank(k Kind) int {
	if k == KindAbsent {
		return int(KindNull)
	}
	return int(k)
}

// Comparable reports whether a and b fall in the same type bracket, which is
// what ordered filter operators require.
func Comparable(a, b Value) bool {
	return rank(a.Kind()) == rank(b.Kind())
}

// Compare orders two values: null/absent < numbers < strings < documents <
// arrays < objectIds < bools < timestamps. It returns -1, 0 or +1.
func Compare(a, b Value) int {
	ra, rb := rank(a.Kind()), rank(b.Kind())
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch Kind(ra) {
	case KindNumber:
		x, _ := a.AsNumber()
		y, _ := b.AsNumber()
		return cmpFloat(x, y)
	case KindString:
		x, _ := a.AsString()
		y, _ := b.AsString()
		return strings.Compare(x, y)
	case KindDocument:
		x, _ := a.AsDocument()
		y, _ := b.AsDocument()
		return compareDocuments(x, y)
	case KindArray:
		x, _ := a.AsArray()
		y, _ := b.AsArray()
		return compareArrays(x, y)
	case KindObjectID:
		x, _ := a.AsObjectID()
		y, _ := b.AsObjectID()
		return bytes.Compare(x[:], y[:])
	case KindBool:
		x, _ := a.AsBool()
		y, _ := b.AsBool()
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	case KindTime:
		x, _ := a.AsTime()
		y, _ := b.AsTime()
		return x.Compare(y)
	}
	return 0
}

// Equal reports whether a and b hold the same value. Absent equals null.
func Equal(a, b Value) bool {
	return Compare(a, b) == 0
}

func cmpFloat(x, y float64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func compareArrays(x, y []Value) int {
	for i := 0; i < len(x) && i < len(y); i++ {
		if c := Compare(x[i], y[i]); c != 0 {
			return c
		}
	}
	return cmpFloat(float64(len(x)), float64(len(y)))
}

func compareDocuments(x, y Document) int {
	for i := 0; i < len(x) && i < len(y); i++ {
		if c := strings.Compare(x[i].Key, y[i].Key); c != 0 {
			return c
		}
		if c := Compare(ValueOf(x[i].Value), ValueOf(y[i].Value)); c != 0 {
			return c
		}
	}
	return cmpFloat(float64(len(x)), float64(len(y)))
}
