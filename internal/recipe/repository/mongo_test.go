package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/gogotex/cocktails/internal/document"
	"github.com/gogotex/cocktails/internal/pipeline"
)

func TestMongoRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("fetch pushes the filter and keeps field order", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "cocktails.recipes", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: int32(1)}, {Key: "name", Value: "Addison"}, {Key: "abv", Value: 20.5}},
		))
		repo := NewMongoRepo(mt.DB)

		st, err := repo.Fetch(ctx, "recipes", pipeline.Lte("name", "Addison"))
		require.NoError(t, err)
		docs, err := pipeline.Collect(ctx, st)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		require.Equal(t, []string{"_id", "name", "abv"}, docs[0].Keys())

		ev := mt.GetStartedEvent()
		require.NotNil(t, ev)
		require.Equal(t, "find", ev.CommandName)
		filter := ev.Command.Lookup("filter").Document()
		require.Equal(t, "Addison", filter.Lookup("name", "$lte").StringValue())
	})

	mt.Run("aggregate sends the rendered pipeline", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "cocktails.recipes", mtest.FirstBatch,
			bson.D{{Key: "name", Value: "Negroni Sbagliato"}, {Key: "rating", Value: 4.5}},
		))
		repo := NewMongoRepo(mt.DB)
		rendered, err := pipeline.MustNew(
			pipeline.Sort{Field: "rating", Direction: pipeline.Descending},
			pipeline.Limit{N: 1},
		).Render()
		require.NoError(t, err)

		st, err := repo.Aggregate(ctx, "recipes", rendered)
		require.NoError(t, err)
		docs, err := pipeline.Collect(ctx, st)
		require.NoError(t, err)
		require.Len(t, docs, 1)

		ev := mt.GetStartedEvent()
		require.Equal(t, "aggregate", ev.CommandName)
		stages, err := ev.Command.Lookup("pipeline").Array().Values()
		require.NoError(t, err)
		require.Len(t, stages, 2)
		require.Equal(t, int64(-1), stages[0].Document().Lookup("$sort", "rating").AsInt64())
	})

	mt.Run("store errors come back unchanged", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 13, Name: "Unauthorized", Message: "not authorized on cocktails",
		}))
		repo := NewMongoRepo(mt.DB)
		_, err := repo.Fetch(ctx, "recipes", pipeline.Predicate{})
		var ce mongo.CommandError
		require.ErrorAs(t, err, &ce)
		require.Equal(t, int32(13), ce.Code)
	})

	mt.Run("insert assigns ids", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewMongoRepo(mt.DB)
		require.NoError(t, repo.Insert(ctx, "reviews", document.New("rating", int32(4))))

		ev := mt.GetStartedEvent()
		require.Equal(t, "insert", ev.CommandName)
		docs, err := ev.Command.Lookup("documents").Array().Values()
		require.NoError(t, err)
		require.Len(t, docs, 1)
		_, ok := docs[0].Document().Lookup("_id").ObjectIDOK()
		require.True(t, ok)
	})

	mt.Run("insert nothing is a no-op", func(mt *mtest.T) {
		repo := NewMongoRepo(mt.DB)
		require.NoError(t, repo.Insert(ctx, "reviews"))
		require.Nil(t, mt.GetStartedEvent())
	})
}
