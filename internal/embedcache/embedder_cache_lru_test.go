package embedcache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	calls int
	err   error
}

func (f *countingEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 2, 3}, nil
}

func (f *countingEmbedder) ModelName() string { return "test-model" }

func TestWrapLRU_CachesRepeatedText(t *testing.T) {
	next := &countingEmbedder{}
	cached := WrapLRU(next, 16, time.Minute)

	first, err := cached.Embed(context.Background(), "same text", "RETRIEVAL_QUERY")
	require.NoError(t, err)
	second, err := cached.Embed(context.Background(), "same text", "RETRIEVAL_QUERY")
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, 1, next.calls)
}

func TestWrapLRU_TaskTypeIsPartOfKey(t *testing.T) {
	next := &countingEmbedder{}
	cached := WrapLRU(next, 16, time.Minute)

	_, err := cached.Embed(context.Background(), "text", "RETRIEVAL_QUERY")
	require.NoError(t, err)
	_, err = cached.Embed(context.Background(), "text", "RETRIEVAL_DOCUMENT")
	require.NoError(t, err)

	require.Equal(t, 2, next.calls)
}

func TestWrapLRU_ErrorsAreNotCached(t *testing.T) {
	next := &countingEmbedder{err: fmt.Errorf("backend down")}
	cached := WrapLRU(next, 16, time.Minute)

	_, err := cached.Embed(context.Background(), "text", "RETRIEVAL_QUERY")
	require.Error(t, err)
	_, err = cached.Embed(context.Background(), "text", "RETRIEVAL_QUERY")
	require.Error(t, err)

	require.Equal(t, 2, next.calls)
}

func TestWrapLRU_CallerCannotCorruptCache(t *testing.T) {
	next := &countingEmbedder{}
	cached := WrapLRU(next, 16, time.Minute)

	first, err := cached.Embed(context.Background(), "text", "RETRIEVAL_QUERY")
	require.NoError(t, err)
	first[0] = 99

	second, err := cached.Embed(context.Background(), "text", "RETRIEVAL_QUERY")
	require.NoError(t, err)
	require.Equal(t, float32(1), second[0])
}

func TestWrapLRU_DisabledPassthrough(t *testing.T) {
	next := &countingEmbedder{}
	require.Equal(t, next, WrapLRU(next, 0, time.Minute))
	require.Equal(t, next, WrapLRU(next, 16, 0))
}
