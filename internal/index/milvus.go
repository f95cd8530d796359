package index

import (
	"context"
	"fmt"
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/simppl/reddify/internal/model"
)

type milvusConfig struct {
	Address    string `json:"address"`
	Collection string `json:"collection"`
	Dimension  int    `json:"dimension"`
}

type milvusIndex struct {
	client     client.Client
	collection string
	dimension  int
}

func init() {
	Register("milvus", createMilvusIndex)
}

func createMilvusIndex(args interface{}) (Index, error) {
	cfg := &milvusConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("index.address is required for milvus")
	}
	if cfg.Collection == "" {
		cfg.Collection = "reddit_posts"
	}
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("index.dimension is required for milvus")
	}
	c, err := client.NewGrpcClient(context.Background(), cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("connect milvus: %w", err)
	}
	idx := &milvusIndex{client: c, collection: cfg.Collection, dimension: cfg.Dimension}
	if err := idx.ensureCollection(context.Background()); err != nil {
		c.Close()
		return nil, err
	}
	return idx, nil
}

func (m *milvusIndex) ensureCollection(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, m.collection)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if has {
		return nil
	}
	varchar := func(name string, maxLength int) *entity.Field {
		return &entity.Field{
			Name:     name,
			DataType: entity.FieldTypeVarChar,
			TypeParams: map[string]string{
				"max_length": strconv.Itoa(maxLength),
			},
		}
	}
	idField := varchar("id", 64)
	idField.PrimaryKey = true
	schema := &entity.Schema{
		CollectionName: m.collection,
		Fields: []*entity.Field{
			idField,
			varchar("title", 1024),
			varchar("body", 65535),
			varchar("subreddit", 128),
			varchar("author", 256),
			varchar("url", 2048),
			varchar("created_utc", 64),
			{
				Name:     "embedding",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": strconv.Itoa(m.dimension),
				},
			},
		},
	}
	if err := m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	idx, err := entity.NewIndexHNSW(entity.COSINE, 16, 256)
	if err != nil {
		return fmt.Errorf("build index config: %w", err)
	}
	if err := m.client.CreateIndex(ctx, m.collection, "embedding", idx, false); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	if err := m.client.LoadCollection(ctx, m.collection, false); err != nil {
		return fmt.Errorf("load collection: %w", err)
	}
	return nil
}

func (m *milvusIndex) Upsert(ctx context.Context, docs []model.Document) error {
	if len(docs) == 0 {
		return nil
	}
	ids := make([]string, len(docs))
	titles := make([]string, len(docs))
	bodies := make([]string, len(docs))
	subreddits := make([]string, len(docs))
	authors := make([]string, len(docs))
	urls := make([]string, len(docs))
	created := make([]string, len(docs))
	embeddings := make([][]float32, len(docs))
	for i, doc := range docs {
		if len(doc.Embedding) != m.dimension {
			return fmt.Errorf("document %s: embedding dimension %d, index expects %d", doc.ID, len(doc.Embedding), m.dimension)
		}
		ids[i] = doc.ID
		titles[i] = doc.Title
		bodies[i] = doc.Body
		subreddits[i] = doc.Subreddit
		authors[i] = doc.Author
		urls[i] = doc.URL
		created[i] = doc.CreatedUTC
		embeddings[i] = doc.Embedding
	}
	columns := []entity.Column{
		entity.NewColumnVarChar("id", ids),
		entity.NewColumnVarChar("title", titles),
		entity.NewColumnVarChar("body", bodies),
		entity.NewColumnVarChar("subreddit", subreddits),
		entity.NewColumnVarChar("author", authors),
		entity.NewColumnVarChar("url", urls),
		entity.NewColumnVarChar("created_utc", created),
		entity.NewColumnFloatVector("embedding", m.dimension, embeddings),
	}
	if _, err := m.client.Upsert(ctx, m.collection, "", columns...); err != nil {
		return fmt.Errorf("milvus upsert: %w", err)
	}
	if err := m.client.Flush(ctx, m.collection, false); err != nil {
		return fmt.Errorf("milvus flush: %w", err)
	}
	return nil
}

func (m *milvusIndex) Query(ctx context.Context, vector []float32, k int) ([]model.RetrievedDocument, error) {
	if k <= 0 {
		return []model.RetrievedDocument{}, nil
	}
	if len(vector) != m.dimension {
		return nil, fmt.Errorf("query dimension %d, index expects %d", len(vector), m.dimension)
	}
	sp, err := entity.NewIndexHNSWSearchParam(64)
	if err != nil {
		return nil, fmt.Errorf("build search params: %w", err)
	}
	outputFields := []string{"id", "title", "body", "subreddit", "author", "url", "created_utc"}
	results, err := m.client.Search(
		ctx,
		m.collection,
		nil,
		"",
		outputFields,
		[]entity.Vector{entity.FloatVector(vector)},
		"embedding",
		entity.COSINE,
		k,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("milvus search: %w", err)
	}
	if len(results) == 0 {
		return []model.RetrievedDocument{}, nil
	}
	res := results[0]
	docs := make([]model.RetrievedDocument, 0, res.ResultCount)
	for i := 0; i < res.ResultCount; i++ {
		var item model.RetrievedDocument
		item.Score = res.Scores[i]
		for _, field := range res.Fields {
			col, ok := field.(*entity.ColumnVarChar)
			if !ok {
				continue
			}
			value := col.Data()[i]
			switch field.Name() {
			case "id":
				item.ID = value
			case "title":
				item.Title = value
			case "body":
				item.Body = value
			case "subreddit":
				item.Subreddit = value
			case "author":
				item.Author = value
			case "url":
				item.URL = value
			case "created_utc":
				item.CreatedUTC = value
			}
		}
		docs = append(docs, item)
	}
	return docs, nil
}

func (m *milvusIndex) Count(ctx context.Context) (int64, error) {
	stats, err := m.client.GetCollectionStatistics(ctx, m.collection)
	if err != nil {
		return 0, fmt.Errorf("collection stats: %w", err)
	}
	count, err := strconv.ParseInt(stats["row_count"], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse row_count: %w", err)
	}
	return count, nil
}

func (m *milvusIndex) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}
