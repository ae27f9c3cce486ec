package pipeline

import (
	"fmt"
	"strings"
)

// Stage is one pipeline step. The set of stages is closed: Match, Sort,
// Lookup, AddField and Limit.
type Stage interface {
	// Operator is the store's operator name for the stage, e.g. "$lookup".
	Operator() string
	validate() error
}

// Match keeps documents satisfying Filter.
type Match struct {
	Filter Predicate
}

// Direction is a sort order.
type Direction int

const (
	Ascending  Direction = 1
	Descending Direction = -1
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Sort orders the stream by Field. The sort is stable; documents lacking the
// field sort as null, i.e. before every other value when ascending.
type Sort struct {
	Field     string
	Direction Direction
}

// Lookup attaches to every document the records of collection From whose
// ForeignField equals the document's LocalField, as an array under As. An
// array LocalField matches records equal to any of its elements. As must be
// a top-level field. The number of documents in the stream never changes.
type Lookup struct {
	From         string
	LocalField   string
	ForeignField string
	As           string
}

// AddField stores the result of Expr under the top-level field Name,
// replacing any existing field.
type AddField struct {
	Name string
	Expr Expression
}

// Limit passes through at most N documents.
type Limit struct {
	N int
}

func (Match) Operator() string    { return "$match" }
func (Sort) Operator() string     { return "$sort" }
func (Lookup) Operator() string   { return "$lookup" }
func (AddField) Operator() string { return "$addFields" }
func (Limit) Operator() string    { return "$limit" }

func (m Match) validate() error {
	if m.Filter.IsZero() {
		return nil
	}
	return m.Filter.Validate()
}

func (s Sort) validate() error {
	if err := checkField(s.Field); err != nil {
		return err
	}
	if s.Direction != Ascending && s.Direction != Descending {
		return fmt.Errorf("direction must be 1 or -1, got %d", s.Direction)
	}
	return nil
}

func (l Lookup) validate() error {
	if l.From == "" {
		return fmt.Errorf("missing foreign collection")
	}
	for _, f := range []string{l.LocalField, l.ForeignField, l.As} {
		if err := checkField(f); err != nil {
			return err
		}
	}
	return checkTopLevel(l.As)
}

func (a AddField) validate() error {
	if err := checkField(a.Name); err != nil {
		return err
	}
	if err := checkTopLevel(a.Name); err != nil {
		return err
	}
	if a.Expr == nil {
		return fmt.Errorf("missing expression for %q", a.Name)
	}
	return a.Expr.validate()
}

// checkTopLevel rejects dotted output fields; stages only write top-level
// fields.
func checkTopLevel(field string) error {
	if strings.Contains(field, ".") {
		return fmt.Errorf("output field %q must be top-level", field)
	}
	return nil
}

func (l Limit) validate() error {
	if l.N < 0 {
		return fmt.Errorf("limit must be non-negative, got %d", l.N)
	}
	return nil
}

func (m Match) String() string { return "$match " + m.Filter.String() }
func (s Sort) String() string  { return fmt.Sprintf("$sort %s %s", s.Field, s.Direction) }
func (l Lookup) String() string {
	return fmt.Sprintf("$lookup %s.%s = %s as %s", l.From, l.ForeignField, l.LocalField, l.As)
}
func (a AddField) String() string { return fmt.Sprintf("$addFields %s = %s", a.Name, describe(a.Expr)) }
func (l Limit) String() string    { return fmt.Sprintf("$limit %d", l.N) }
