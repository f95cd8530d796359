package service

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/simppl/reddify/internal/classifier"
	appErr "github.com/simppl/reddify/internal/pkg/errors"
)

// ClassifierService fronts the two black-box predictors. Availability is
// probed once at startup (and re-probed by a cron job) and cached in
// flags, so the per-request check is a plain atomic read instead of a
// network call.
type ClassifierService struct {
	subreddit *classifier.Client
	sentiment *classifier.Client

	subredditUp atomic.Bool
	sentimentUp atomic.Bool
}

func NewClassifierService(subreddit, sentiment *classifier.Client) *ClassifierService {
	return &ClassifierService{subreddit: subreddit, sentiment: sentiment}
}

// CheckAvailability probes both predict services and refreshes the flags.
func (s *ClassifierService) CheckAvailability(ctx context.Context) {
	logger := logutil.GetLogger(ctx)
	if s.subreddit != nil {
		err := s.subreddit.Ping(ctx)
		s.subredditUp.Store(err == nil)
		if err != nil {
			logger.Warn("subreddit classifier unavailable", zap.Error(err))
		}
	}
	if s.sentiment != nil {
		err := s.sentiment.Ping(ctx)
		s.sentimentUp.Store(err == nil)
		if err != nil {
			logger.Warn("sentiment classifier unavailable", zap.Error(err))
		}
	}
}

func (s *ClassifierService) PredictSubreddit(ctx context.Context, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", appErr.ErrInvalid
	}
	if s.subreddit == nil || !s.subredditUp.Load() {
		return "", appErr.ErrModelUnavailable
	}
	label, err := s.subreddit.Predict(ctx, title)
	if err != nil {
		logutil.GetLogger(ctx).Error("subreddit predict failed", zap.Error(err))
		return "", err
	}
	return label, nil
}

func (s *ClassifierService) PredictSentiment(ctx context.Context, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", appErr.ErrInvalid
	}
	if s.sentiment == nil || !s.sentimentUp.Load() {
		return "", appErr.ErrModelUnavailable
	}
	label, err := s.sentiment.Predict(ctx, title)
	if err != nil {
		logutil.GetLogger(ctx).Error("sentiment predict failed", zap.Error(err))
		return "", err
	}
	return label, nil
}
