package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/simppl/reddify/internal/config"
	"github.com/simppl/reddify/internal/model"
)

func memDoc(id string, embedding []float32) model.Document {
	return model.Document{
		ID:        id,
		Title:     "title " + id,
		Subreddit: "golang",
		Embedding: embedding,
	}
}

func TestMemoryIndex_QueryOrdersByDistance(t *testing.T) {
	idx := NewMemory(2)
	ctx := context.Background()
	require.NoError(t, idx.Upsert(ctx, []model.Document{
		memDoc("far", []float32{0, 1}),
		memDoc("near", []float32{1, 0}),
		memDoc("mid", []float32{1, 1}),
	}))

	got, err := idx.Query(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "near", got[0].ID)
	require.Equal(t, "mid", got[1].ID)
	require.Equal(t, "far", got[2].ID)
	require.LessOrEqual(t, got[0].Score, got[1].Score)
	require.LessOrEqual(t, got[1].Score, got[2].Score)
}

func TestMemoryIndex_KLargerThanCorpus(t *testing.T) {
	idx := NewMemory(2)
	ctx := context.Background()
	require.NoError(t, idx.Upsert(ctx, []model.Document{memDoc("only", []float32{1, 0})}))

	got, err := idx.Query(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestMemoryIndex_EmptyCorpus(t *testing.T) {
	idx := NewMemory(2)
	got, err := idx.Query(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestMemoryIndex_UpsertReplacesByID(t *testing.T) {
	idx := NewMemory(2)
	ctx := context.Background()
	require.NoError(t, idx.Upsert(ctx, []model.Document{memDoc("a", []float32{1, 0})}))

	updated := memDoc("a", []float32{0, 1})
	updated.Title = "updated"
	require.NoError(t, idx.Upsert(ctx, []model.Document{updated}))

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	got, err := idx.Query(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Equal(t, "updated", got[0].Title)
}

func TestMemoryIndex_DimensionMismatch(t *testing.T) {
	idx := NewMemory(0)
	ctx := context.Background()
	require.NoError(t, idx.Upsert(ctx, []model.Document{memDoc("a", []float32{1, 0, 0})}))

	err := idx.Upsert(ctx, []model.Document{memDoc("b", []float32{1, 0})})
	require.Error(t, err)

	_, err = idx.Query(ctx, []float32{1, 0}, 1)
	require.Error(t, err)
}

func TestMemoryIndex_RegistryFactory(t *testing.T) {
	idx, err := New(config.IndexConfig{Type: "memory", Data: map[string]interface{}{"dimension": 3}})
	require.NoError(t, err)
	defer idx.Close()

	count, err := idx.Count(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 0, count)

	_, err = New(config.IndexConfig{Type: "no-such-backend"})
	require.Error(t, err)
}
