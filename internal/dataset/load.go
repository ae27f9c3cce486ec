// Package dataset loads cocktail datasets into a store and generates the
// random reviews used by the demo.
package dataset

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/gogotex/cocktails/internal/document"
)

const maxLine = 1 << 20

// Load reads one Extended JSON document per line (the mongoexport format).
// Blank lines are skipped.
func Load(r io.Reader) ([]document.Document, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	out := []document.Document{}
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var d bson.D
		if err := bson.UnmarshalExtJSON(b, false, &d); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, document.Document(d))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return out, nil
}

// Dump writes docs as canonical Extended JSON, one per line, in the format
// Load reads.
func Dump(w io.Writer, docs []document.Document) error {
	bw := bufio.NewWriter(w)
	for i, d := range docs {
		b, err := bson.MarshalExtJSON(d.D(), true, false)
		if err != nil {
			return fmt.Errorf("encode document %d: %w", i, err)
		}
		if _, err := bw.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// LoadDrinks reads a CocktailDB response ({"drinks": [...]}) and converts
// every drink. Drinks that cannot be converted are reported in skipped and
// left out.
func LoadDrinks(r io.Reader) (docs []document.Document, skipped []error, err error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read drinks: %w", err)
	}
	var resp struct {
		Drinks []bson.M `bson:"drinks"`
	}
	if err := bson.UnmarshalExtJSON(raw, false, &resp); err != nil {
		return nil, nil, fmt.Errorf("decode drinks: %w", err)
	}
	docs = []document.Document{}
	for i, drink := range resp.Drinks {
		d, err := ConvertDrink(drink)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("drink %d: %w", i, err))
			continue
		}
		docs = append(docs, d)
	}
	return docs, skipped, nil
}
