package service

import (
	"context"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/simppl/reddify/internal/ai"
	"github.com/simppl/reddify/internal/index"
	"github.com/simppl/reddify/internal/model"
	appErr "github.com/simppl/reddify/internal/pkg/errors"
)

const (
	defaultTopK = 5
	maxTopK     = 20

	noInformationAnswer = "No relevant information found in the database."
	generationErrPrefix = "Error generating response: "
)

// RAGService is the per-request pipeline: embed the query, fetch nearest
// neighbors, assemble a bounded context, generate, shape the result. It
// holds no per-request state; concurrent requests share only the
// read-mostly index and the stateless providers.
type RAGService struct {
	embedder  ai.IEmbedder
	index     index.Index
	generator ai.IGenerator
	timeout   time.Duration
}

func NewRAGService(embedder ai.IEmbedder, idx index.Index, generator ai.IGenerator, timeout time.Duration) *RAGService {
	return &RAGService{
		embedder:  embedder,
		index:     idx,
		generator: generator,
		timeout:   timeout,
	}
}

// AnswerQuestion runs the full retrieval-and-answer pipeline. The only
// error exit is bad input or a broken embedding/index collaborator;
// generation failures are folded into the answer text so the caller
// always gets something displayable.
func (s *RAGService) AnswerQuestion(ctx context.Context, query string, nResults int) (*model.AnswerResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, appErr.ErrInvalid
	}
	k := nResults
	if k <= 0 {
		k = defaultTopK
	}
	if k > maxTopK {
		k = maxTopK
	}
	logger := logutil.GetLogger(ctx).With(zap.String("query", query), zap.Int("k", k))

	docs, err := s.retrieve(ctx, query, k)
	if err != nil {
		logger.Error("retrieval failed", zap.Error(err))
		return nil, err
	}
	if len(docs) == 0 {
		logger.Info("retrieval empty, skipping generation")
		return &model.AnswerResult{
			Answer:  noInformationAnswer,
			Sources: []model.Source{},
		}, nil
	}
	for _, doc := range docs {
		logger.Debug("retrieved document", zap.String("id", doc.ID), zap.Float32("score", doc.Score))
	}

	contextBlock, ok := BuildContext(docs)
	if !ok {
		return &model.AnswerResult{
			Answer:  noInformationAnswer,
			Sources: []model.Source{},
		}, nil
	}

	answer := s.generate(ctx, BuildPrompt(query, contextBlock))
	return &model.AnswerResult{
		Answer:  answer,
		Sources: shapeSources(docs),
	}, nil
}

func (s *RAGService) retrieve(ctx context.Context, query string, k int) ([]model.RetrievedDocument, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	vector, err := s.embedder.Embed(ctx, query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, err
	}
	return s.index.Query(ctx, vector, k)
}

// generate never fails the request. Timeouts, bad statuses and contract
// violations from the generation service all degrade into a visible
// error string; the chat caller is interactive and must see why no good
// answer was produced.
func (s *RAGService) generate(ctx context.Context, prompt string) string {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		logutil.GetLogger(ctx).Error("generation failed", zap.Error(err))
		return generationErrPrefix + err.Error()
	}
	return answer
}

func (s *RAGService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func shapeSources(docs []model.RetrievedDocument) []model.Source {
	sources := make([]model.Source, 0, len(docs))
	for _, doc := range docs {
		sources = append(sources, model.Source{
			ID:        doc.ID,
			Title:     doc.Title,
			Subreddit: doc.Subreddit,
			URL:       doc.URL,
		})
	}
	return sources
}
