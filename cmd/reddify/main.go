package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/simppl/reddify/internal/ai"
	"github.com/simppl/reddify/internal/classifier"
	"github.com/simppl/reddify/internal/config"
	"github.com/simppl/reddify/internal/corpus"
	"github.com/simppl/reddify/internal/embedcache"
	"github.com/simppl/reddify/internal/handler"
	"github.com/simppl/reddify/internal/index"
	"github.com/simppl/reddify/internal/ingest"
	"github.com/simppl/reddify/internal/job"
	"github.com/simppl/reddify/internal/middleware"
	"github.com/simppl/reddify/internal/schedule"
	"github.com/simppl/reddify/internal/service"
)

func main() {
	_ = godotenv.Load()

	var configPath string

	rootCmd := &cobra.Command{
		Use:   "reddify",
		Short: "reddify RAG backend server",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run reddify server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}

	var datasetKey string
	ingestCmd := &cobra.Command{
		Use:   "ingest",
		Short: "embed a reddit jsonl dump into the vector index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if datasetKey == "" {
				return fmt.Errorf("--dataset is required")
			}
			return runIngest(cfg, datasetKey)
		},
	}
	ingestCmd.Flags().StringVar(&datasetKey, "dataset", "", "dataset key inside the corpus source")

	rootCmd.AddCommand(runCmd, ingestCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(path)
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
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", path))
	return cfg, nil
}

func buildEmbedder(cfg *config.Config) (ai.IEmbedder, error) {
	provider, err := ai.NewEmbedProvider(cfg.AI.EmbedProvider, cfg.AI.EmbedData)
	if err != nil {
		return nil, fmt.Errorf("init embed provider: %w", err)
	}
	embedder := ai.NewEmbedder(provider, cfg.AI.EmbedModel)
	return embedcache.WrapLRU(
		embedder,
		cfg.AI.EmbedCacheSize,
		time.Duration(cfg.AI.EmbedCacheTTLMins)*time.Minute,
	), nil
}

func runServer(cfg *config.Config) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("index", cfg.Index.Type),
		zap.String("gen_provider", cfg.AI.GenProvider),
		zap.String("embed_provider", cfg.AI.EmbedProvider),
	)

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	genProvider, err := ai.NewProvider(cfg.AI.GenProvider, cfg.AI.GenData)
	if err != nil {
		return fmt.Errorf("init gen provider: %w", err)
	}
	generator := ai.NewGenerator(genProvider, cfg.AI.GenModel, ai.GenerateParams{
		MaxNewTokens: cfg.AI.Generation.MaxNewTokens,
		Temperature:  cfg.AI.Generation.Temperature,
		TopP:         cfg.AI.Generation.TopP,
		DoSample:     *cfg.AI.Generation.DoSample,
	})

	idx, err := index.New(cfg.Index)
	if err != nil {
		return fmt.Errorf("init vector index: %w", err)
	}
	defer idx.Close()

	ragService := service.NewRAGService(embedder, idx, generator, time.Duration(cfg.AI.Timeout)*time.Second)

	clientTimeout := time.Duration(cfg.Classifiers.Timeout) * time.Second
	var subreddit, sentiment *classifier.Client
	if cfg.Classifiers.SubredditURL != "" {
		subreddit = classifier.New(cfg.Classifiers.SubredditURL, clientTimeout)
	}
	if cfg.Classifiers.SentimentURL != "" {
		sentiment = classifier.New(cfg.Classifiers.SentimentURL, clientTimeout)
	}
	classifierService := service.NewClassifierService(subreddit, sentiment)
	classifierService.CheckAvailability(context.Background())

	deps := handler.RouterDeps{
		Health:   handler.NewHealthHandler(),
		Chat:     handler.NewChatHandler(ragService),
		Classify: handler.NewClassifyHandler(classifierService),
	}

	engine, err := webapi.NewEngine(
		"/",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewClassifierHealthJob(classifierService), cfg.Classifiers.HealthCron); err != nil {
		return err
	}
	if err := scheduler.AddJob(job.NewIndexStatsJob(idx), "0 * * * *"); err != nil {
		return err
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}

func runIngest(cfg *config.Config, datasetKey string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	idx, err := index.New(cfg.Index)
	if err != nil {
		return fmt.Errorf("init vector index: %w", err)
	}
	defer idx.Close()

	source, err := corpus.New(cfg.Corpus)
	if err != nil {
		return fmt.Errorf("init corpus source: %w", err)
	}
	reader, err := source.Open(ctx, datasetKey)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	defer reader.Close()

	stats, err := ingest.New(embedder, idx, 0).Run(ctx, reader)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	logutil.GetLogger(ctx).Info("ingest done",
		zap.Int("ingested", stats.Ingested),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
	)
	return nil
}
