package dataset

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/gogotex/cocktails/internal/document"
)

var ErrUnparsableMeasure = errors.New("unparsable measure")

var measureRE = regexp.MustCompile(`^(?:Juice of )?([\d/]*\d(?: [\d/.]*\d)?)(?: (ozs?|parts?|mls?|cls?|shots?|tsps?|tbl?sps?|cups?|pinch(?:es)?|splash(?:es)?|dash(?:es)?|scoops?|drops?))?$`)

// Measure is a parsed CocktailDB measurement such as "1 1/2 oz".
type Measure struct {
	Quantity string
	Unit     string
}

// ParseMeasure parses quantities like "2 oz", "1 1/2 parts", "Juice of 1".
func ParseMeasure(s string) (Measure, error) {
	s = strings.TrimSpace(s)
	m := measureRE.FindStringSubmatch(s)
	if m == nil {
		return Measure{}, fmt.Errorf("%w: %q", ErrUnparsableMeasure, s)
	}
	return Measure{Quantity: m[1], Unit: m[2]}, nil
}

// ConvertDrink turns one CocktailDB drink (strDrink, strInstructions,
// strIngredientN/strMeasureN) into a recipe document:
//
//	{name, instructions: [...], ingredients: [{name, quantity: {quantity, unit}}]}
func ConvertDrink(raw bson.M) (document.Document, error) {
	name, _ := raw["strDrink"].(string)
	if name == "" {
		return nil, errors.New("missing strDrink")
	}
	instructions := bson.A{}
	if s, ok := raw["strInstructions"].(string); ok && s != "" {
		for _, step := range strings.Split(s, ". ") {
			instructions = append(instructions, step)
		}
	}

	ingredients := bson.A{}
	for i := 1; ; i++ {
		ing, ok := raw[fmt.Sprintf("strIngredient%d", i)].(string)
		if !ok {
			break
		}
		entry := bson.D{{Key: "name", Value: ing}}
		if ms, ok := raw[fmt.Sprintf("strMeasure%d", i)].(string); ok {
			m, err := ParseMeasure(ms)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			q := bson.D{{Key: "quantity", Value: m.Quantity}, {Key: "unit", Value: nil}}
			if m.Unit != "" {
				q[1].Value = m.Unit
			}
			entry = append(entry, bson.E{Key: "quantity", Value: q})
		}
		ingredients = append(ingredients, entry)
	}

	return document.New(
		"name", name,
		"instructions", instructions,
		"ingredients", ingredients,
	), nil
}
