package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docforge-ai/docforge/internal/filestore"
	"github.com/docforge-ai/docforge/internal/repo"
)

// RetentionJob removes jobs older than maxAge together with their stored
// source and artifacts.
type RetentionJob struct {
	jobs   *repo.JobsRepo
	store  filestore.Store
	maxAge time.Duration
}

func NewRetentionJob(jobs *repo.JobsRepo, store filestore.Store, maxAge time.Duration) *RetentionJob {
	return &RetentionJob{jobs: jobs, store: store, maxAge: maxAge}
}

func (j *RetentionJob) Name() string {
	return "job_retention"
}

func (j *RetentionJob) Run(ctx context.Context) error {
	if j.jobs == nil {
		return nil
	}
	maxAge := j.maxAge
	if maxAge <= 0 {
		maxAge = 30 * 24 * time.Hour
	}
	cutoff := time.Now().Add(-maxAge).UnixMilli()
	logger := logutil.GetLogger(ctx)

	expired, err := j.jobs.ListBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	for _, old := range expired {
		keys, err := j.store.List(ctx, old.OutputPrefix)
		if err != nil {
			logger.Warn("list artifacts failed", zap.String("job_id", old.ID), zap.Error(err))
			continue
		}
		keys = append(keys, old.SourceKey)
		for _, key := range keys {
			if err := j.store.Delete(ctx, key); err != nil {
				logger.Warn("delete object failed", zap.String("key", key), zap.Error(err))
			}
		}
	}

	deleted, err := j.jobs.DeleteBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		logger.Info("expired jobs removed", zap.Int64("count", deleted))
	}
	return nil
}
