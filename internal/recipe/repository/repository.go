// Package repository provides the document stores the query pipeline runs
// against. Every store implements pipeline.Source; stores that accept writes
// implement Writer, and stores able to run a rendered pipeline themselves
// implement pipeline.Aggregator.
package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gogotex/cocktails/internal/document"
	"github.com/gogotex/cocktails/internal/pipeline"
)

var (
	ErrNotFound = errors.New("document not found")
	ErrReadOnly = errors.New("store does not accept writes")
)

// Writer is implemented by stores that accept writes. Inserted documents
// without an _id get a fresh ObjectID. Drop is idempotent.
type Writer interface {
	Insert(ctx context.Context, collection string, docs ...document.Document) error
	Drop(ctx context.Context, collection string) error
}

// Store is the full capability set a concrete repository offers.
type Store interface {
	pipeline.Source
	Writer
}

// withID returns d with an _id, generating an ObjectID when d has none.
func withID(d document.Document) document.Document {
	if d.Has("_id") {
		return d.Clone()
	}
	out := make(document.Document, 0, len(d)+1)
	out = append(out, primitive.E{Key: "_id", Value: primitive.NewObjectID()})
	return append(out, d...)
}

// aggregate forwards to inner when it runs pipelines natively.
func aggregate(ctx context.Context, inner pipeline.Source, collection string, p mongo.Pipeline) (pipeline.Stream, error) {
	a, ok := inner.(pipeline.Aggregator)
	if !ok {
		return nil, pipeline.ErrNativeUnsupported
	}
	return a.Aggregate(ctx, collection, p)
}

// writer returns inner as a Writer, or ErrReadOnly.
func writer(inner pipeline.Source) (Writer, error) {
	w, ok := inner.(Writer)
	if !ok {
		return nil, ErrReadOnly
	}
	return w, nil
}
