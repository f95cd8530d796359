package ingest

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/simppl/reddify/internal/ai"
	"github.com/simppl/reddify/internal/index"
	"github.com/simppl/reddify/internal/model"
)

// Posts shorter than this after merging title and body carry too little
// signal to embed.
const minTextLen = 10

const defaultBatchSize = 64

// Ingester streams a Reddit JSONL dump into the vector index. It runs
// offline; the serving path treats the index as read-mostly.
type Ingester struct {
	embedder  ai.IEmbedder
	idx       index.Index
	batchSize int
}

type Stats struct {
	Ingested int
	Skipped  int
	Failed   int
}

func New(embedder ai.IEmbedder, idx index.Index, batchSize int) *Ingester {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Ingester{embedder: embedder, idx: idx, batchSize: batchSize}
}

// redditPost matches one line of a Reddit export. Listings wrap the post
// in a {"data": {...}} envelope; flat dumps do not.
type redditPost struct {
	Data       *redditPost `json:"data"`
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Title      string      `json:"title"`
	Selftext   string      `json:"selftext"`
	Body       string      `json:"body"`
	URL        string      `json:"url"`
	Permalink  string      `json:"permalink"`
	Subreddit  string      `json:"subreddit"`
	Author     string      `json:"author"`
	CreatedUTC json.Number `json:"created_utc"`
}

func (i *Ingester) Run(ctx context.Context, r io.Reader) (Stats, error) {
	logger := logutil.GetLogger(ctx)
	var stats Stats
	batch := make([]model.Document, 0, i.batchSize)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 8*1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var post redditPost
		if err := json.Unmarshal([]byte(line), &post); err != nil {
			logger.Warn("skipping unparseable line", zap.Error(err))
			stats.Skipped++
			continue
		}
		doc, ok := normalizePost(post)
		if !ok {
			stats.Skipped++
			continue
		}
		vector, err := i.embedder.Embed(ctx, doc.Title+"\n"+doc.Body, "RETRIEVAL_DOCUMENT")
		if err != nil {
			logger.Error("embed failed", zap.String("id", doc.ID), zap.Error(err))
			stats.Failed++
			continue
		}
		doc.Embedding = vector
		batch = append(batch, doc)
		if len(batch) >= i.batchSize {
			if err := i.flush(ctx, batch, &stats); err != nil {
				return stats, err
			}
			batch = batch[:0]
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, err
	}
	if len(batch) > 0 {
		if err := i.flush(ctx, batch, &stats); err != nil {
			return stats, err
		}
	}
	logger.Info("ingestion finished",
		zap.Int("ingested", stats.Ingested),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
	)
	return stats, nil
}

func (i *Ingester) flush(ctx context.Context, batch []model.Document, stats *Stats) error {
	if err := i.idx.Upsert(ctx, batch); err != nil {
		return err
	}
	stats.Ingested += len(batch)
	return nil
}

// normalizePost flattens a raw post into a Document. It returns false
// for posts that would violate the index invariant (no usable text).
func normalizePost(post redditPost) (model.Document, bool) {
	if post.Data != nil {
		post = *post.Data
	}

	id := post.ID
	if id == "" {
		id = strings.TrimPrefix(post.Name, "t3_")
	}
	if id == "" {
		id = newPostID()
	}

	body := post.Selftext
	if body == "" {
		body = post.Body
	}

	text := strings.TrimSpace(post.Title + " " + body)
	if len(text) < minTextLen {
		return model.Document{}, false
	}

	url := post.URL
	if url == "" {
		url = post.Permalink
	}
	if strings.HasPrefix(url, "/r/") {
		url = "https://www.reddit.com" + url
	}

	return model.Document{
		ID:         id,
		Title:      post.Title,
		Body:       body,
		Subreddit:  post.Subreddit,
		Author:     post.Author,
		URL:        url,
		CreatedUTC: post.CreatedUTC.String(),
	}, true
}

func newPostID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
