package pipeline

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/gogotex/cocktails/internal/document"
)

// Op is a filter operator.
type Op string

const (
	OpEq        Op = "$eq"
	OpLt        Op = "$lt"
	OpLte       Op = "$lte"
	OpGt        Op = "$gt"
	OpGte       Op = "$gte"
	OpIn        Op = "$in"
	OpElemMatch Op = "$elemMatch"
	OpAnd       Op = "$and"
)

// Predicate is a comparison over one field, an element match over an array
// field, or a conjunction of predicates. The zero Predicate matches everything.
type Predicate struct {
	Op    Op
	Field string
	Value interface{}
	Inner *Predicate
	All   []Predicate
}

func Eq(field string, v interface{}) Predicate  { return cmp(OpEq, field, v) }
func Lt(field string, v interface{}) Predicate  { return cmp(OpLt, field, v) }
func Lte(field string, v interface{}) Predicate { return cmp(OpLte, field, v) }
func Gt(field string, v interface{}) Predicate  { return cmp(OpGt, field, v) }
func Gte(field string, v interface{}) Predicate { return cmp(OpGte, field, v) }

func cmp(op Op, field string, v interface{}) Predicate {
	if dv, ok := v.(document.Value); ok {
		v = dv.Raw()
	}
	return Predicate{Op: op, Field: field, Value: v}
}

// In matches documents whose field equals any of values. No values matches
// nothing.
func In(field string, values ...interface{}) Predicate {
	operands := make(bson.A, len(values))
	for i, v := range values {
		if dv, ok := v.(document.Value); ok {
			v = dv.Raw()
		}
		operands[i] = v
	}
	return Predicate{Op: OpIn, Field: field, Value: operands}
}

// ElemMatch matches documents whose array field holds at least one embedded
// document satisfying inner, e.g. ElemMatch("ingredients", Eq("name", "Vodka")).
func ElemMatch(field string, inner Predicate) Predicate {
	return Predicate{Op: OpElemMatch, Field: field, Inner: &inner}
}

// And matches documents satisfying every predicate.
func And(preds ...Predicate) Predicate {
	return Predicate{Op: OpAnd, All: preds}
}

// IsZero reports whether p is the match-all filter.
func (p Predicate) IsZero() bool {
	return p.Op == "" && p.Field == "" && p.Inner == nil && len(p.All) == 0
}

func (p Predicate) String() string {
	switch p.Op {
	case "":
		return "{}"
	case OpElemMatch:
		return fmt.Sprintf("{%s: {$elemMatch: %s}}", p.Field, p.Inner)
	case OpAnd:
		parts := make([]string, len(p.All))
		for i, c := range p.All {
			parts[i] = c.String()
		}
		return "{$and: [" + strings.Join(parts, ", ") + "]}"
	}
	return fmt.Sprintf("{%s: {%s: %v}}", p.Field, p.Op, p.Value)
}

// Validate checks the field/operator/operand combination.
func (p Predicate) Validate() error {
	return p.validate(false)
}

func (p Predicate) validate(nested bool) error {
	if p.IsZero() {
		if nested {
			return fmt.Errorf("empty predicate")
		}
		return nil
	}
	switch p.Op {
	case OpAnd:
		if len(p.All) == 0 {
			return fmt.Errorf("$and needs at least one predicate")
		}
		for _, c := range p.All {
			if err := c.validate(true); err != nil {
				return err
			}
		}
		return nil
	case OpElemMatch:
		if err := checkField(p.Field); err != nil {
			return err
		}
		if p.Inner == nil {
			return fmt.Errorf("$elemMatch on %q needs an inner predicate", p.Field)
		}
		switch p.Inner.Op {
		case OpElemMatch, OpAnd, "":
			return fmt.Errorf("$elemMatch on %q supports a single comparison, got %s", p.Field, p.Inner.Op)
		}
		return p.Inner.validate(true)
	case OpEq:
		if err := checkField(p.Field); err != nil {
			return err
		}
		if document.ValueOf(p.Value).Kind() == document.KindOther {
			return fmt.Errorf("%s on %q: unsupported operand type %T", p.Op, p.Field, p.Value)
		}
		return nil
	case OpIn:
		if err := checkField(p.Field); err != nil {
			return err
		}
		operands, ok := p.Value.(bson.A)
		if !ok {
			return fmt.Errorf("$in on %q needs a list operand, got %T", p.Field, p.Value)
		}
		for _, v := range operands {
			if document.ValueOf(v).Kind() == document.KindOther {
				return fmt.Errorf("$in on %q: unsupported operand type %T", p.Field, v)
			}
		}
		return nil
	case OpLt, OpLte, OpGt, OpGte:
		if err := checkField(p.Field); err != nil {
			return err
		}
		switch k := document.ValueOf(p.Value).Kind(); k {
		case document.KindString, document.KindNumber, document.KindTime:
			return nil
		default:
			return fmt.Errorf("%s on %q needs a string, number or timestamp operand, got %s", p.Op, p.Field, k)
		}
	}
	return fmt.Errorf("unknown operator %q", p.Op)
}

func checkField(field string) error {
	if field == "" {
		return fmt.Errorf("empty field name")
	}
	if strings.HasPrefix(field, "$") {
		return fmt.Errorf("field %q must not start with '$'", field)
	}
	return nil
}

// Matches evaluates p against d the way the store evaluates a find filter:
// a comparison against an array field matches when any element matches.
func (p Predicate) Matches(d document.Document) bool {
	switch p.Op {
	case "":
		return true
	case OpAnd:
		for _, c := range p.All {
			if !c.Matches(d) {
				return false
			}
		}
		return true
	case OpElemMatch:
		items, ok := d.Path(p.Field).AsArray()
		if !ok {
			return false
		}
		for _, it := range items {
			sub, ok := it.AsDocument()
			if ok && p.Inner.Matches(sub) {
				return true
			}
		}
		return false
	case OpIn:
		v := d.Path(p.Field)
		operands, _ := p.Value.(bson.A)
		for _, o := range operands {
			if matchValue(v, OpEq, document.ValueOf(o)) {
				return true
			}
		}
		return false
	}
	return matchValue(d.Path(p.Field), p.Op, document.ValueOf(p.Value))
}

func matchValue(v document.Value, op Op, operand document.Value) bool {
	if compareOp(v, op, operand) {
		return true
	}
	items, ok := v.AsArray()
	if !ok {
		return false
	}
	for _, it := range items {
		if compareOp(it, op, operand) {
			return true
		}
	}
	return false
}

func compareOp(v document.Value, op Op, operand document.Value) bool {
	if op == OpEq {
		return document.Comparable(v, operand) && document.Equal(v, operand)
	}
	// ordered operators never cross type brackets and never match a missing field
	if v.IsAbsent() || !document.Comparable(v, operand) {
		return false
	}
	c := document.Compare(v, operand)
	switch op {
	case OpLt:
		return c < 0
	case OpLte:
		return c <= 0
	case OpGt:
		return c > 0
	case OpGte:
		return c >= 0
	}
	return false
}

// BSON renders p as a find filter document.
func (p Predicate) BSON() bson.D {
	switch p.Op {
	case "":
		return bson.D{}
	case OpAnd:
		all := make(bson.A, len(p.All))
		for i, c := range p.All {
			all[i] = c.BSON()
		}
		return bson.D{{Key: string(OpAnd), Value: all}}
	case OpElemMatch:
		return bson.D{{Key: p.Field, Value: bson.D{{Key: string(OpElemMatch), Value: p.Inner.BSON()}}}}
	case OpEq:
		return bson.D{{Key: p.Field, Value: p.Value}}
	}
	return bson.D{{Key: p.Field, Value: bson.D{{Key: string(p.Op), Value: p.Value}}}}
}
