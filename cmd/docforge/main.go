package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/docforge-ai/docforge/internal/ai"
	"github.com/docforge-ai/docforge/internal/config"
	"github.com/docforge-ai/docforge/internal/db"
	"github.com/docforge-ai/docforge/internal/engine"
	"github.com/docforge-ai/docforge/internal/filestore"
	"github.com/docforge-ai/docforge/internal/handler"
	"github.com/docforge-ai/docforge/internal/job"
	"github.com/docforge-ai/docforge/internal/middleware"
	"github.com/docforge-ai/docforge/internal/model"
	"github.com/docforge-ai/docforge/internal/progress"
	"github.com/docforge-ai/docforge/internal/prompt"
	"github.com/docforge-ai/docforge/internal/repo"
	"github.com/docforge-ai/docforge/internal/schedule"
	"github.com/docforge-ai/docforge/internal/service"
)

func main() {
	var configPath string
	var sourcePath string
	var outputPrefix string

	rootCmd := &cobra.Command{
		Use:   "docforge",
		Short: "docforge extraction server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run docforge server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}
	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "run one analysis without the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if sourcePath == "" {
				return fmt.Errorf("--source is required")
			}
			return runOnce(cmd.Context(), cfg, sourcePath, outputPrefix)
		},
	}
	analyzeCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	analyzeCmd.Flags().StringVar(&sourcePath, "source", "", "path to the source file to analyze")
	analyzeCmd.Flags().StringVar(&outputPrefix, "output", "", "store prefix for generated artifacts")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(analyzeCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
	return cfg, nil
}

func buildAnalysis(cfg *config.Config, store filestore.Store, reporter progress.Reporter, jobs *repo.JobsRepo) (*service.AnalysisService, error) {
	provider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return nil, fmt.Errorf("init ai provider: %w", err)
	}
	streamer := ai.NewStreamer(provider, cfg.AI.Model)
	prompts := prompt.NewManager(store, cfg.Engine.PromptLanguage, time.Duration(cfg.Engine.PromptCacheTTL)*time.Second)
	validator := service.NewTemplateValidator(streamer, prompts, cfg.Engine.ValidateAttempts)
	return service.NewAnalysisService(store, streamer, prompts, reporter, jobs, validator, service.AnalysisConfig{
		MaxTokensPerChunk: cfg.Engine.MaxTokensPerChunk,
		ChunkingThreshold: cfg.Engine.ChunkingThreshold,
		Concurrency:       cfg.Engine.Concurrency,
	}), nil
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("store", cfg.Store.Type),
		zap.String("ai_provider", cfg.AI.Provider),
	)

	store, err := filestore.New(cfg.Store)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	jobsRepo := repo.NewJobsRepo(conn)
	reporter := progress.NewRepoReporter(jobsRepo)
	analysis, err := buildAnalysis(cfg, store, reporter, jobsRepo)
	if err != nil {
		return err
	}

	jobHandler := handler.NewJobHandler(analysis, jobsRepo, store, service.NewArtifactRenderer(), 64<<20)
	deps := handler.RouterDeps{
		Jobs:            jobHandler,
		SubmitRateLimit: time.Second,
	}

	scheduler := schedule.NewCronScheduler()
	retention := job.NewRetentionJob(jobsRepo, store, time.Duration(cfg.Retention.Days)*24*time.Hour)
	if err := scheduler.AddJob(retention, cfg.Retention.CronSpec); err != nil {
		return fmt.Errorf("schedule retention: %w", err)
	}

	webEngine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(nil),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler.Start(ctx)
	defer scheduler.Stop()

	go func() {
		if err := webEngine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}

// runOnce analyzes a local file and writes artifacts through the configured
// store without touching the job database.
func runOnce(ctx context.Context, cfg *config.Config, sourcePath string, outputPrefix string) error {
	store, err := filestore.New(cfg.Store)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	content, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	sourceKey := "input/local/" + filepath.Base(sourcePath)
	if err := store.Put(ctx, sourceKey, content, engine.ContentTypeFor(sourcePath)); err != nil {
		return fmt.Errorf("stage source: %w", err)
	}

	analysis, err := buildAnalysis(cfg, store, progress.Noop(), nil)
	if err != nil {
		return err
	}
	if outputPrefix == "" {
		outputPrefix = "output/local"
	}
	now := time.Now().UnixMilli()
	jobModel := &model.Job{
		ID:           "local",
		SourceKey:    sourceKey,
		OutputPrefix: outputPrefix,
		Status:       model.JobStatusPending,
		Ctime:        now,
		Mtime:        now,
	}
	if err := analysis.Run(ctx, jobModel); err != nil {
		return err
	}
	keys, err := store.List(ctx, outputPrefix)
	if err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("analysis finished", zap.Int("artifacts", len(keys)))
	for _, key := range keys {
		fmt.Println(key)
	}
	return nil
}
