package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/docforge-ai/docforge/internal/middleware"
)

type RouterDeps struct {
	Jobs            *JobHandler
	SubmitRateLimit time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/jobs", middleware.RateLimit(deps.SubmitRateLimit), deps.Jobs.Create)
	api.GET("/jobs", deps.Jobs.List)
	api.GET("/jobs/:id", deps.Jobs.Get)
	api.GET("/jobs/:id/artifacts", deps.Jobs.Artifacts)
	api.GET("/jobs/:id/artifacts/download", deps.Jobs.Download)
	api.GET("/jobs/:id/artifacts/preview", deps.Jobs.Preview)
}
