package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gogotex/cocktails/internal/pipeline"
	"github.com/gogotex/cocktails/internal/recipe"
	"github.com/gogotex/cocktails/internal/recipe/service"
	"github.com/gogotex/cocktails/pkg/logger"
)

const demoRecipe = "Negroni Sbagliato"

func newDemoCmd() *cobra.Command {
	var (
		file   string
		format string
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Walk through the example queries and add a review",
		Long: "Runs find, filter, sort, lookup and top-rated queries against the recipes " +
			"collection, printing each result, then adds a 4 star review to " + demoRecipe + ".",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := openBackend(ctx, cfg)
			if err != nil {
				return err
			}
			defer b.Close(context.Background())

			if file != "" {
				r, err := openDataset(ctx, file, "")
				if err != nil {
					return err
				}
				_, err = seed(ctx, b, r, format, false)
				r.Close()
				if err != nil {
					return err
				}
			}
			return runDemo(ctx, cmd.OutOrStdout(), newService(cfg, b), time.Now())
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "load this dataset before running (useful with the memory backend)")
	cmd.Flags().StringVar(&format, "format", formatLines, "dataset format: lines or cocktaildb")
	return cmd
}

func heading(w io.Writer, s string) {
	fmt.Fprintf(w, "\n%s\n%s\n", s, strings.Repeat("-", len(s)))
}

// demoStep is one titled query of the walk-through. Steps with recipes set
// print projected recipes, the others print names only.
type demoStep struct {
	title   string
	query   func(ctx context.Context) (pipeline.Stream, error)
	recipes bool
}

// runDemo prints the query walk-through to w.
func runDemo(ctx context.Context, w io.Writer, svc service.Service, now time.Time) error {
	byName := pipeline.Sort{Field: "name", Direction: pipeline.Ascending}
	upToAddison := pipeline.Match{Filter: pipeline.Lte("name", "Addison")}
	vodka := pipeline.ElemMatch("ingredients", pipeline.Eq("name", "Vodka"))
	aggregate := func(stages ...pipeline.Stage) func(context.Context) (pipeline.Stream, error) {
		return func(ctx context.Context) (pipeline.Stream, error) { return svc.Aggregate(ctx, stages...) }
	}
	find := func(filter pipeline.Predicate) func(context.Context) (pipeline.Stream, error) {
		return func(ctx context.Context) (pipeline.Stream, error) { return svc.Find(ctx, filter, &byName) }
	}

	steps := []demoStep{
		{title: "All Cocktails", query: find(pipeline.Predicate{})},
		{title: demoRecipe, query: find(pipeline.Eq("name", demoRecipe))},
		{title: "Vodka Cocktails", query: find(vodka)},
		{title: "Empty Aggregation Pipeline", query: aggregate()},
		{title: "Sorting", query: aggregate(byName)},
		{title: "Filtering", query: aggregate(upToAddison, byName)},
		{title: "Deserialization", query: aggregate(upToAddison, byName), recipes: true},
		{title: "Lookup", query: aggregate(upToAddison, byName, service.ReviewsLookup()), recipes: true},
		{title: "10 Highest Reviewed", query: aggregate(service.TopRatedStages(10, false)...), recipes: true},
	}
	for _, step := range steps {
		heading(w, step.title)
		st, err := step.query(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", step.title, err)
		}
		if step.recipes {
			err = printRecipes(ctx, w, svc, st)
		} else {
			err = printNames(ctx, w, st)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", step.title, err)
		}
	}

	_, err := svc.AddReview(ctx, demoRecipe, 4, now)
	if errors.Is(err, service.ErrNotFound) {
		logger.Warnf("no recipe named %q, review not added", demoRecipe)
		return nil
	}
	return err
}

// printNames prints the name of every document in st. A document without a
// string name stops the walk-through.
func printNames(ctx context.Context, w io.Writer, st pipeline.Stream) error {
	defer st.Close(ctx)
	for st.Next(ctx) {
		v := st.Document().Get("name")
		name, ok := v.AsString()
		if !ok {
			return &recipe.ProjectionError{Field: "name", Expected: "string", Got: v.Kind()}
		}
		fmt.Fprintf(w, "Cocktail: %s\n", name)
	}
	return st.Err()
}

func printRecipes(ctx context.Context, w io.Writer, svc service.Service, st pipeline.Stream) error {
	list, err := svc.Recipes(ctx, st, recipe.AbortOnInvalid)
	if err != nil {
		return err
	}
	for _, r := range list {
		fmt.Fprintln(w, r)
	}
	return nil
}
