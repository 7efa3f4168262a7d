package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/didi/gendry/builder"

	"github.com/docforge-ai/docforge/internal/model"
	"github.com/docforge-ai/docforge/internal/pkg/dbutil"
	"github.com/docforge-ai/docforge/internal/pkg/errs"
)

const jobsTable = "jobs"

var jobColumns = []string{
	"id", "source_key", "output_prefix", "status", "status_message",
	"processed", "total", "ctime", "mtime",
}

type JobsRepo struct {
	db *sql.DB
}

func NewJobsRepo(db *sql.DB) *JobsRepo {
	return &JobsRepo{db: db}
}

func (r *JobsRepo) Create(ctx context.Context, job *model.Job) error {
	data := map[string]interface{}{
		"id":             job.ID,
		"source_key":     job.SourceKey,
		"output_prefix":  job.OutputPrefix,
		"status":         job.Status,
		"status_message": job.StatusMessage,
		"processed":      job.Processed,
		"total":          job.Total,
		"ctime":          job.Ctime,
		"mtime":          job.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert(jobsTable, []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return fmt.Errorf("job %s: %w", job.ID, errs.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *JobsRepo) Get(ctx context.Context, jobID string) (*model.Job, error) {
	where := map[string]interface{}{"id": jobID}
	sqlStr, args, err := builder.BuildSelect(jobsTable, where, jobColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	var job model.Job
	if err := row.Scan(
		&job.ID,
		&job.SourceKey,
		&job.OutputPrefix,
		&job.Status,
		&job.StatusMessage,
		&job.Processed,
		&job.Total,
		&job.Ctime,
		&job.Mtime,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("job %s: %w", jobID, errs.ErrNotFound)
		}
		return nil, err
	}
	return &job, nil
}

func (r *JobsRepo) List(ctx context.Context, limit uint) ([]model.Job, error) {
	where := map[string]interface{}{
		"_orderby": "ctime desc",
		"_limit":   []uint{0, limit},
	}
	sqlStr, args, err := builder.BuildSelect(jobsTable, where, jobColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	jobs := make([]model.Job, 0)
	for rows.Next() {
		var job model.Job
		if err := rows.Scan(
			&job.ID,
			&job.SourceKey,
			&job.OutputPrefix,
			&job.Status,
			&job.StatusMessage,
			&job.Processed,
			&job.Total,
			&job.Ctime,
			&job.Mtime,
		); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *JobsRepo) UpdateStatus(ctx context.Context, jobID string, status string, message string, mtime int64) error {
	where := map[string]interface{}{"id": jobID}
	update := map[string]interface{}{
		"status":         status,
		"status_message": message,
		"mtime":          mtime,
	}
	sqlStr, args, err := builder.BuildUpdate(jobsTable, where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("job %s: %w", jobID, errs.ErrNotFound)
	}
	return nil
}

func (r *JobsRepo) UpdateProgress(ctx context.Context, jobID string, processed int, total int, mtime int64) error {
	where := map[string]interface{}{"id": jobID}
	update := map[string]interface{}{
		"processed": processed,
		"total":     total,
		"mtime":     mtime,
	}
	sqlStr, args, err := builder.BuildUpdate(jobsTable, where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("job %s: %w", jobID, errs.ErrNotFound)
	}
	return nil
}

func (r *JobsRepo) DeleteBefore(ctx context.Context, cutoff int64) (int64, error) {
	const query = `DELETE FROM jobs WHERE ctime < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *JobsRepo) ListBefore(ctx context.Context, cutoff int64) ([]model.Job, error) {
	where := map[string]interface{}{"ctime <": cutoff}
	sqlStr, args, err := builder.BuildSelect(jobsTable, where, jobColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	jobs := make([]model.Job, 0)
	for rows.Next() {
		var job model.Job
		if err := rows.Scan(
			&job.ID,
			&job.SourceKey,
			&job.OutputPrefix,
			&job.Status,
			&job.StatusMessage,
			&job.Processed,
			&job.Total,
			&job.Ctime,
			&job.Mtime,
		); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
