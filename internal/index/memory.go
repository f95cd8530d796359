package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/simppl/reddify/internal/model"
)

type memoryConfig struct {
	Dimension int `json:"dimension"`
}

// memoryIndex is a brute-force cosine-distance store. It exists for tests
// and tiny corpora; the serving backends are pgvector and milvus.
type memoryIndex struct {
	mu        sync.RWMutex
	dimension int
	docs      []model.Document
}

func init() {
	Register("memory", createMemoryIndex)
}

func createMemoryIndex(args interface{}) (Index, error) {
	cfg := &memoryConfig{}
	if args != nil {
		if err := decodeConfig(args, cfg); err != nil {
			return nil, err
		}
	}
	return &memoryIndex{dimension: cfg.Dimension}, nil
}

func NewMemory(dimension int) Index {
	return &memoryIndex{dimension: dimension}
}

func (m *memoryIndex) Upsert(ctx context.Context, docs []model.Document) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range docs {
		if m.dimension == 0 {
			m.dimension = len(doc.Embedding)
		}
		if len(doc.Embedding) != m.dimension {
			return fmt.Errorf("document %s: embedding dimension %d, index expects %d", doc.ID, len(doc.Embedding), m.dimension)
		}
	}
	for _, doc := range docs {
		replaced := false
		for i := range m.docs {
			if m.docs[i].ID == doc.ID {
				m.docs[i] = doc
				replaced = true
				break
			}
		}
		if !replaced {
			m.docs = append(m.docs, doc)
		}
	}
	return nil
}

func (m *memoryIndex) Query(ctx context.Context, vector []float32, k int) ([]model.RetrievedDocument, error) {
	_ = ctx
	m.mu.RLock()
	defer m.mu.RUnlock()
	if k <= 0 || len(m.docs) == 0 {
		return []model.RetrievedDocument{}, nil
	}
	if m.dimension > 0 && len(vector) != m.dimension {
		return nil, fmt.Errorf("query dimension %d, index expects %d", len(vector), m.dimension)
	}
	results := make([]model.RetrievedDocument, 0, len(m.docs))
	for _, doc := range m.docs {
		results = append(results, model.RetrievedDocument{
			Document: doc,
			Score:    cosineDistance(vector, doc.Embedding),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score < results[j].Score
	})
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

func (m *memoryIndex) Count(ctx context.Context) (int64, error) {
	_ = ctx
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.docs)), nil
}

func (m *memoryIndex) Close() error {
	return nil
}

func cosineDistance(a, b []float32) float32 {
	if len(a) != len(b) {
		return 1
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return float32(1 - dot/(math.Sqrt(normA)*math.Sqrt(normB)))
}
