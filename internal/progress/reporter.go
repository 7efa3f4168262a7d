package progress

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docforge-ai/docforge/internal/repo"
)

// Reporter publishes job lifecycle updates. Reporting is advisory: a failed
// update is logged and never fails the pipeline that emitted it.
type Reporter interface {
	Status(ctx context.Context, jobID string, status string, message string)
	Progress(ctx context.Context, jobID string, processed int, total int)
}

type repoReporter struct {
	jobs *repo.JobsRepo
}

func NewRepoReporter(jobs *repo.JobsRepo) Reporter {
	return &repoReporter{jobs: jobs}
}

func (r *repoReporter) Status(ctx context.Context, jobID string, status string, message string) {
	if err := r.jobs.UpdateStatus(ctx, jobID, status, message, time.Now().UnixMilli()); err != nil {
		logutil.GetLogger(ctx).Warn("update job status failed",
			zap.String("job_id", jobID), zap.String("status", status), zap.Error(err))
	}
}

func (r *repoReporter) Progress(ctx context.Context, jobID string, processed int, total int) {
	if err := r.jobs.UpdateProgress(ctx, jobID, processed, total, time.Now().UnixMilli()); err != nil {
		logutil.GetLogger(ctx).Warn("update job progress failed",
			zap.String("job_id", jobID), zap.Int("processed", processed), zap.Error(err))
	}
}

// Noop returns a reporter that discards all updates, for one-shot CLI runs.
func Noop() Reporter {
	return noopReporter{}
}

type noopReporter struct{}

func (noopReporter) Status(ctx context.Context, jobID string, status string, message string) {}

func (noopReporter) Progress(ctx context.Context, jobID string, processed int, total int) {}
