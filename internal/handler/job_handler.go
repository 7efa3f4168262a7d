package handler

import (
	"context"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docforge-ai/docforge/internal/engine"
	"github.com/docforge-ai/docforge/internal/filestore"
	"github.com/docforge-ai/docforge/internal/model"
	"github.com/docforge-ai/docforge/internal/pkg/errcode"
	"github.com/docforge-ai/docforge/internal/pkg/response"
	"github.com/docforge-ai/docforge/internal/repo"
	"github.com/docforge-ai/docforge/internal/service"
)

type JobHandler struct {
	analysis      *service.AnalysisService
	jobs          *repo.JobsRepo
	store         filestore.Store
	renderer      *service.ArtifactRenderer
	maxUploadSize int64
}

func NewJobHandler(
	analysis *service.AnalysisService,
	jobs *repo.JobsRepo,
	store filestore.Store,
	renderer *service.ArtifactRenderer,
	maxUploadSize int64,
) *JobHandler {
	return &JobHandler{
		analysis:      analysis,
		jobs:          jobs,
		store:         store,
		renderer:      renderer,
		maxUploadSize: maxUploadSize,
	}
}

type createJobRequest struct {
	SourceKey    string `json:"source_key"`
	OutputPrefix string `json:"output_prefix"`
}

// Create accepts either a multipart source upload or a JSON body pointing at
// an already stored object, then starts the analysis run in the background.
func (h *JobHandler) Create(c *gin.Context) {
	var req createJobRequest
	if file, err := c.FormFile("file"); err == nil {
		if h.maxUploadSize > 0 && file.Size > h.maxUploadSize {
			response.Error(c, errcode.ErrInvalidFile, "file too large")
			return
		}
		opened, err := file.Open()
		if err != nil {
			response.Error(c, errcode.ErrInvalidFile, "failed to open file")
			return
		}
		content, err := io.ReadAll(opened)
		_ = opened.Close()
		if err != nil {
			response.Error(c, errcode.ErrUploadFailed, "failed to read file")
			return
		}
		req.SourceKey = path.Join("input", newUploadID(), path.Base(file.Filename))
		if err := h.store.Put(c.Request.Context(), req.SourceKey, content, engine.ContentTypeFor(file.Filename)); err != nil {
			handleError(c, err)
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.SourceKey) == "" {
		response.Error(c, errcode.ErrInvalid, "file upload or source_key required")
		return
	}

	job, err := h.analysis.CreateJob(c.Request.Context(), req.SourceKey, req.OutputPrefix)
	if err != nil {
		handleError(c, err)
		return
	}

	runCtx := context.Background()
	go func() {
		if err := h.analysis.Run(runCtx, job); err != nil {
			logutil.GetLogger(runCtx).Error("analysis run failed",
				zap.String("job_id", job.ID), zap.Error(err))
		}
	}()
	response.Success(c, gin.H{"job_id": job.ID, "status": job.Status})
}

func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.jobs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, job)
}

func (h *JobHandler) List(c *gin.Context) {
	limit := uint(50)
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 32); err == nil && parsed > 0 && parsed <= 500 {
			limit = uint(parsed)
		}
	}
	jobs, err := h.jobs.List(c.Request.Context(), limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"jobs": jobs})
}

func (h *JobHandler) Artifacts(c *gin.Context) {
	job, err := h.jobs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	keys, err := h.analysis.Artifacts(c.Request.Context(), job)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"artifacts": keys})
}

func (h *JobHandler) Download(c *gin.Context) {
	job, err := h.jobs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	key := c.Query("key")
	if !keyWithinPrefix(key, job.OutputPrefix) {
		response.Error(c, errcode.ErrInvalid, "key must belong to this job")
		return
	}
	content, err := h.store.Get(c.Request.Context(), key)
	if err != nil {
		handleError(c, err)
		return
	}
	c.Data(200, engine.ContentTypeFor(key), content)
}

// keyWithinPrefix reports whether key names an object under prefix, matching
// on whole path segments so a sibling prefix like "output/j1extra" does not
// pass for "output/j1".
func keyWithinPrefix(key, prefix string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	if key == "" || prefix == "" {
		return false
	}
	return strings.HasPrefix(key, prefix+"/")
}

// Preview renders a stored markdown artifact to HTML.
func (h *JobHandler) Preview(c *gin.Context) {
	job, err := h.jobs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	key := c.Query("key")
	if !keyWithinPrefix(key, job.OutputPrefix) {
		response.Error(c, errcode.ErrInvalid, "key must belong to this job")
		return
	}
	content, err := h.store.Get(c.Request.Context(), key)
	if err != nil {
		handleError(c, err)
		return
	}
	html, err := h.renderer.Render(model.FileArtifact{
		Filename: path.Base(key),
		Section:  model.SectionAnalysis,
		Content:  string(content),
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.Data(200, "text/html; charset=utf-8", []byte(html))
}
