package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gogotex/cocktails/internal/document"
	"github.com/gogotex/cocktails/internal/pipeline"
)

// MongoRepo runs fetches and aggregations against a MongoDB database.
// Documents are decoded as ordered bson.D so field order survives.
type MongoRepo struct {
	db *mongo.Database
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{db: db}
}

// EnsureIndexes creates the indexes the canned queries rely on: recipes by
// name and reviews by recipe_id (the Lookup foreign field).
func (m *MongoRepo) EnsureIndexes(ctx context.Context) error {
	idx := map[string]mongo.IndexModel{
		"recipes": {Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetName("name_1")},
		"reviews": {Keys: bson.D{{Key: "recipe_id", Value: 1}}, Options: options.Index().SetName("recipe_id_1")},
	}
	for col, model := range idx {
		if _, err := m.db.Collection(col).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create index on %s: %w", col, err)
		}
	}
	return nil
}

func (m *MongoRepo) Fetch(ctx context.Context, collection string, filter pipeline.Predicate) (pipeline.Stream, error) {
	cur, err := m.db.Collection(collection).Find(ctx, filter.BSON())
	if err != nil {
		return nil, err
	}
	return &cursorStream{cur: cur}, nil
}

func (m *MongoRepo) Aggregate(ctx context.Context, collection string, p mongo.Pipeline) (pipeline.Stream, error) {
	cur, err := m.db.Collection(collection).Aggregate(ctx, p)
	if err != nil {
		return nil, err
	}
	return &cursorStream{cur: cur}, nil
}

func (m *MongoRepo) Insert(ctx context.Context, collection string, docs ...document.Document) error {
	if len(docs) == 0 {
		return nil
	}
	batch := make([]interface{}, len(docs))
	for i, d := range docs {
		batch[i] = withID(d).D()
	}
	_, err := m.db.Collection(collection).InsertMany(ctx, batch)
	return err
}

func (m *MongoRepo) Drop(ctx context.Context, collection string) error {
	return m.db.Collection(collection).Drop(ctx)
}

// cursorStream adapts a driver cursor to pipeline.Stream.
type cursorStream struct {
	cur *mongo.Cursor
	doc document.Document
	err error
}

func (s *cursorStream) Next(ctx context.Context) bool {
	if s.err != nil || !s.cur.Next(ctx) {
		return false
	}
	var d bson.D
	if err := s.cur.Decode(&d); err != nil {
		s.err = fmt.Errorf("decode document: %w", err)
		return false
	}
	s.doc = document.Document(d)
	return true
}

func (s *cursorStream) Document() document.Document { return s.doc }

func (s *cursorStream) Err() error {
	if s.err != nil {
		return s.err
	}
	return s.cur.Err()
}

func (s *cursorStream) Close(ctx context.Context) error { return s.cur.Close(ctx) }
