package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gogotex/cocktails/internal/dataset"
	"github.com/gogotex/cocktails/internal/document"
	"github.com/gogotex/cocktails/internal/pipeline"
	"github.com/gogotex/cocktails/internal/recipe/service"
	"github.com/gogotex/cocktails/internal/storage"
	"github.com/gogotex/cocktails/pkg/logger"
)

const (
	formatLines      = "lines"
	formatCocktailDB = "cocktaildb"
	ndjsonType       = "application/x-ndjson"
)

func newSeedCmd() *cobra.Command {
	var (
		file, object, format string
		drop                 bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load recipes from a dataset file or a MinIO object",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := openBackend(ctx, cfg)
			if err != nil {
				return err
			}
			defer b.Close(context.Background())

			r, err := openDataset(ctx, file, object)
			if err != nil {
				return err
			}
			defer r.Close()
			n, err := seed(ctx, b, r, format, drop)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d recipes\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "dataset file to load (- for stdin)")
	cmd.Flags().StringVar(&object, "object", "", "dataset object key in the MinIO bucket")
	cmd.Flags().StringVar(&format, "format", formatLines, "dataset format: lines (Extended JSON per line) or cocktaildb")
	cmd.Flags().BoolVar(&drop, "drop", false, "drop recipes and reviews before loading")
	return cmd
}

func newReviewCmd() *cobra.Command {
	var (
		seedValue int64
		drop      bool
	)
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Generate random reviews for every recipe",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := openBackend(ctx, cfg)
			if err != nil {
				return err
			}
			defer b.Close(context.Background())

			if drop {
				if err := b.store.Drop(ctx, service.ReviewsCollection); err != nil {
					return err
				}
			}
			if seedValue == 0 {
				seedValue = time.Now().UnixNano()
			}
			logger.Debugf("review seed %d", seedValue)
			n, err := dataset.SeedReviews(ctx, b.store, b.store, rand.New(rand.NewSource(seedValue)), time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "generated %d reviews\n", n)
			return nil
		},
	}
	cmd.Flags().Int64Var(&seedValue, "seed", 0, "random seed (0 picks one from the clock)")
	cmd.Flags().BoolVar(&drop, "drop", false, "drop existing reviews first")
	return cmd
}

func newExportCmd() *cobra.Command {
	var (
		out, object, collection string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a collection as Extended JSON lines to a file or MinIO object",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := openBackend(ctx, cfg)
			if err != nil {
				return err
			}
			defer b.Close(context.Background())

			var buf bytes.Buffer
			n, err := export(ctx, b.store, collection, &buf)
			if err != nil {
				return err
			}
			switch {
			case object != "":
				st, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
				if err != nil {
					return err
				}
				if err := st.UploadFile(ctx, object, &buf, int64(buf.Len()), ndjsonType); err != nil {
					return err
				}
			case out == "" || out == "-":
				_, err = buf.WriteTo(cmd.OutOrStdout())
				return err
			default:
				if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
					return err
				}
			}
			logger.Infof("exported %d documents from %s", n, collection)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "-", "output file (- for stdout)")
	cmd.Flags().StringVar(&object, "object", "", "upload to this object key in the MinIO bucket instead")
	cmd.Flags().StringVar(&collection, "collection", service.RecipesCollection, "collection to export")
	return cmd
}

// openDataset opens a local file, stdin ("-") or, when object is set, an
// object in the configured MinIO bucket.
func openDataset(ctx context.Context, file, object string) (io.ReadCloser, error) {
	switch {
	case object != "":
		st, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			return nil, err
		}
		return st.DownloadFile(ctx, object)
	case file == "-":
		return io.NopCloser(os.Stdin), nil
	case file != "":
		return os.Open(file)
	default:
		return nil, fmt.Errorf("one of --file or --object is required")
	}
}

// seed parses r in the given format and inserts the recipes. The mongo
// backend also gets its lookup indexes.
func seed(ctx context.Context, b *backend, r io.Reader, format string, drop bool) (int, error) {
	var docs []document.Document
	switch format {
	case formatLines:
		var err error
		if docs, err = dataset.Load(r); err != nil {
			return 0, err
		}
	case formatCocktailDB:
		loaded, skipped, err := dataset.LoadDrinks(r)
		if err != nil {
			return 0, err
		}
		for _, s := range skipped {
			logger.Warnf("skipped: %v", s)
		}
		docs = loaded
	default:
		return 0, fmt.Errorf("unknown dataset format %q (want %s or %s)", format, formatLines, formatCocktailDB)
	}

	if drop {
		for _, c := range []string{service.RecipesCollection, service.ReviewsCollection} {
			if err := b.store.Drop(ctx, c); err != nil {
				return 0, fmt.Errorf("drop %s: %w", c, err)
			}
		}
	}
	if len(docs) > 0 {
		if err := b.store.Insert(ctx, service.RecipesCollection, docs...); err != nil {
			return 0, err
		}
	}
	if b.mongo != nil {
		if err := b.mongo.EnsureIndexes(ctx); err != nil {
			return 0, err
		}
	}
	return len(docs), nil
}

// export writes every document of collection to w and returns the count.
func export(ctx context.Context, src pipeline.Source, collection string, w io.Writer) (int, error) {
	st, err := src.Fetch(ctx, collection, pipeline.Predicate{})
	if err != nil {
		return 0, err
	}
	docs, err := pipeline.Collect(ctx, st)
	if err != nil {
		return 0, err
	}
	return len(docs), dataset.Dump(w, docs)
}
