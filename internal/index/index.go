package index

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/simppl/reddify/internal/config"
	"github.com/simppl/reddify/internal/model"
)

// Index is the nearest-neighbor store over document embeddings. Query
// returns up to k documents ordered best match first; asking for more
// than the corpus holds returns fewer results, and an empty corpus
// returns an empty slice, never an error.
type Index interface {
	Upsert(ctx context.Context, docs []model.Document) error
	Query(ctx context.Context, vector []float32, k int) ([]model.RetrievedDocument, error)
	Count(ctx context.Context) (int64, error)
	Close() error
}

type Factory func(args interface{}) (Index, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func Register(name string, factory Factory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registryMu.Lock()
	registry[key] = factory
	registryMu.Unlock()
}

func New(cfg config.IndexConfig) (Index, error) {
	key := strings.ToLower(strings.TrimSpace(cfg.Type))
	if key == "" {
		return nil, fmt.Errorf("index.type is required")
	}
	registryMu.RLock()
	factory := registry[key]
	registryMu.RUnlock()
	if factory == nil {
		return nil, fmt.Errorf("unsupported index type: %s", cfg.Type)
	}
	return factory(cfg.Data)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("index config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode index config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode index config: %w", err)
	}
	return nil
}
