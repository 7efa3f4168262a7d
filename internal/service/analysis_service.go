package service

import (
	"context"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docforge-ai/docforge/internal/ai"
	"github.com/docforge-ai/docforge/internal/engine"
	"github.com/docforge-ai/docforge/internal/extract"
	"github.com/docforge-ai/docforge/internal/filestore"
	"github.com/docforge-ai/docforge/internal/model"
	"github.com/docforge-ai/docforge/internal/pkg/errs"
	"github.com/docforge-ai/docforge/internal/progress"
	"github.com/docforge-ai/docforge/internal/prompt"
	"github.com/docforge-ai/docforge/internal/repo"
)

type AnalysisConfig struct {
	MaxTokensPerChunk int
	ChunkingThreshold int
	Concurrency       int
}

// AnalysisService runs the full extraction pipeline for one job: load the
// source, split it when it exceeds the chunking threshold, stream each part
// through the model, parse the output into file artifacts and persist them.
type AnalysisService struct {
	store     filestore.Store
	streamer  ai.IStreamer
	prompts   *prompt.Manager
	reporter  progress.Reporter
	jobs      *repo.JobsRepo
	validator *TemplateValidator
	cfg       AnalysisConfig
}

func NewAnalysisService(
	store filestore.Store,
	streamer ai.IStreamer,
	prompts *prompt.Manager,
	reporter progress.Reporter,
	jobs *repo.JobsRepo,
	validator *TemplateValidator,
	cfg AnalysisConfig,
) *AnalysisService {
	if cfg.MaxTokensPerChunk <= 0 {
		cfg.MaxTokensPerChunk = engine.DefaultMaxTokensPerChunk
	}
	if cfg.ChunkingThreshold <= 0 {
		cfg.ChunkingThreshold = engine.DefaultMaxTokensPerChunk
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &AnalysisService{
		store:     store,
		streamer:  streamer,
		prompts:   prompts,
		reporter:  reporter,
		jobs:      jobs,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *AnalysisService) CreateJob(ctx context.Context, sourceKey string, outputPrefix string) (*model.Job, error) {
	if sourceKey == "" {
		return nil, fmt.Errorf("source key is required: %w", errs.ErrInvalid)
	}
	now := time.Now().UnixMilli()
	job := &model.Job{
		ID:           newID(),
		SourceKey:    sourceKey,
		OutputPrefix: outputPrefix,
		Status:       model.JobStatusPending,
		Ctime:        now,
		Mtime:        now,
	}
	if job.OutputPrefix == "" {
		job.OutputPrefix = "output/" + job.ID
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Run executes the pipeline for a previously created job. It owns the job
// status from here on; errors are recorded on the job and also returned.
func (s *AnalysisService) Run(ctx context.Context, job *model.Job) error {
	logger := logutil.GetLogger(ctx).With(zap.String("job_id", job.ID))
	s.reporter.Status(ctx, job.ID, model.JobStatusProcessing, "loading source")

	source, err := s.store.Get(ctx, job.SourceKey)
	if err != nil {
		s.fail(ctx, job.ID, fmt.Sprintf("load source: %v", err))
		return err
	}
	text, err := extract.Text(job.SourceKey, source)
	if err != nil {
		err = fmt.Errorf("extract source text: %w", err)
		s.fail(ctx, job.ID, err.Error())
		return err
	}

	var artifacts []model.FileArtifact
	var sections map[model.SectionID]string
	if engine.EstimateTokens(text) > s.cfg.ChunkingThreshold {
		artifacts, sections, err = s.runChunked(ctx, job, text)
	} else {
		artifacts, sections, err = s.runSingle(ctx, job, text)
	}
	if err != nil {
		s.fail(ctx, job.ID, err.Error())
		return err
	}
	if len(artifacts) == 0 {
		err := fmt.Errorf("no artifacts produced: %w", errs.ErrEmptyResult)
		s.fail(ctx, job.ID, err.Error())
		return err
	}

	if s.validator != nil {
		s.reporter.Status(ctx, job.ID, model.JobStatusValidating, "validating templates")
		artifacts = s.validator.ValidateArtifacts(ctx, artifacts)
	}

	refs, err := s.persist(ctx, job, artifacts, sections)
	if err != nil {
		s.fail(ctx, job.ID, fmt.Sprintf("persist artifacts: %v", err))
		return err
	}
	logger.Info("job completed", zap.Int("artifacts", len(refs)))
	s.reporter.Status(ctx, job.ID, model.JobStatusCompleted, fmt.Sprintf("%d artifacts", len(refs)))
	return nil
}

func (s *AnalysisService) runSingle(ctx context.Context, job *model.Job, text string) ([]model.FileArtifact, map[model.SectionID]string, error) {
	rendered, err := s.prompts.Render(ctx, prompt.AgentAnalysis, text)
	if err != nil {
		return nil, nil, err
	}
	s.reporter.Progress(ctx, job.ID, 0, 1)
	artifacts, err := s.streamArtifacts(ctx, rendered)
	if err != nil {
		return nil, nil, err
	}
	s.reporter.Progress(ctx, job.ID, 1, 1)
	result := model.ChunkResult{ChunkIndex: 1, Artifacts: artifacts}
	sections := engine.Aggregate(ctx, []model.ChunkResult{result})
	return artifacts, sections, nil
}

func (s *AnalysisService) runChunked(ctx context.Context, job *model.Job, text string) ([]model.FileArtifact, map[model.SectionID]string, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("job_id", job.ID))
	s.reporter.Status(ctx, job.ID, model.JobStatusChunking, "splitting source")
	chunks := engine.SplitChunks(ctx, text, s.cfg.MaxTokensPerChunk)
	total := len(chunks)
	logger.Info("source split", zap.Int("chunks", total))

	s.reporter.Status(ctx, job.ID, model.JobStatusProcessingChunks, fmt.Sprintf("%d chunks", total))
	s.reporter.Progress(ctx, job.ID, 0, total)

	results := make([]model.ChunkResult, total)
	var done int
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.cfg.Concurrency)
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk model.Chunk) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = s.processChunk(ctx, chunk)
			mu.Lock()
			done++
			processed := done
			mu.Unlock()
			s.reporter.Progress(ctx, job.ID, processed, total)
		}(i, chunk)
	}
	wg.Wait()

	var failed int
	for _, result := range results {
		if result.Failed() {
			failed++
		}
	}
	if failed == total {
		return nil, nil, fmt.Errorf("all %d chunks failed: %w", total, errs.ErrStreamFailed)
	}
	if failed > 0 {
		logger.Warn("some chunks failed", zap.Int("failed", failed), zap.Int("total", total))
	}

	s.reporter.Status(ctx, job.ID, model.JobStatusAggregating, "merging chunk results")
	sections := engine.Aggregate(ctx, results)
	artifacts := engine.MergeArtifacts(results)
	return artifacts, sections, nil
}

func (s *AnalysisService) processChunk(ctx context.Context, chunk model.Chunk) model.ChunkResult {
	result := model.ChunkResult{ChunkIndex: chunk.Index}
	rendered, err := s.prompts.RenderChunk(ctx, prompt.AgentAnalysis, chunk.Text, chunk.Index, chunk.Total)
	if err != nil {
		result.Err = err
		return result
	}
	artifacts, err := s.streamArtifacts(ctx, rendered)
	if err != nil {
		result.Err = err
		return result
	}
	result.Artifacts = artifacts
	return result
}

func (s *AnalysisService) streamArtifacts(ctx context.Context, renderedPrompt string) ([]model.FileArtifact, error) {
	stream, err := s.streamer.GenerateStream(ctx, renderedPrompt)
	if err != nil {
		return nil, fmt.Errorf("start stream: %w", err)
	}
	parser := engine.NewStreamParser()
	for frag := range stream {
		if frag.Err != nil {
			return nil, fmt.Errorf("stream: %w: %v", errs.ErrStreamFailed, frag.Err)
		}
		parser.Feed(frag.Text)
	}
	return parser.Finalize(), nil
}

func (s *AnalysisService) persist(ctx context.Context, job *model.Job, artifacts []model.FileArtifact, sections map[model.SectionID]string) ([]model.ArtifactRef, error) {
	refs := make([]model.ArtifactRef, 0, len(artifacts))
	for _, artifact := range artifacts {
		key := path.Join(job.OutputPrefix, artifact.Section.Folder(), artifact.Filename)
		if err := s.store.Put(ctx, key, []byte(artifact.Content), artifact.ContentType); err != nil {
			return nil, err
		}
		refs = append(refs, model.ArtifactRef{
			Filename:    artifact.Filename,
			Section:     artifact.Section,
			Key:         key,
			SizeBytes:   artifact.SizeBytes,
			ContentType: artifact.ContentType,
		})
	}
	for _, section := range model.AllSections {
		content, ok := sections[section]
		if !ok || content == "" {
			continue
		}
		key := path.Join(job.OutputPrefix, "sections", section.Folder()+".md")
		if err := s.store.Put(ctx, key, []byte(content), "text/markdown"); err != nil {
			return nil, err
		}
	}
	return refs, nil
}

// Artifacts lists the generated objects for a completed job.
func (s *AnalysisService) Artifacts(ctx context.Context, job *model.Job) ([]string, error) {
	return s.store.List(ctx, job.OutputPrefix)
}

func (s *AnalysisService) fail(ctx context.Context, jobID string, message string) {
	s.reporter.Status(ctx, jobID, model.JobStatusError, message)
}
