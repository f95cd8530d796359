package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/simppl/reddify/internal/index"
)

// IndexStatsJob logs the corpus size periodically. A count that drops to
// zero in production is the usual sign of a botched re-ingestion.
type IndexStatsJob struct {
	idx index.Index
}

func NewIndexStatsJob(idx index.Index) *IndexStatsJob {
	return &IndexStatsJob{idx: idx}
}

func (j *IndexStatsJob) Name() string {
	return "index_stats"
}

func (j *IndexStatsJob) Run(ctx context.Context) error {
	count, err := j.idx.Count(ctx)
	if err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("vector index stats", zap.Int64("documents", count))
	return nil
}
