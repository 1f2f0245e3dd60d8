package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cloo-solutions/hirelens/internal/api/handlers"
	"github.com/cloo-solutions/hirelens/internal/chunking"
	"github.com/cloo-solutions/hirelens/internal/config"
	"github.com/cloo-solutions/hirelens/internal/database"
	"github.com/cloo-solutions/hirelens/internal/jobs"
	"github.com/cloo-solutions/hirelens/internal/llm"
	"github.com/cloo-solutions/hirelens/internal/logger"
	"github.com/cloo-solutions/hirelens/internal/openai"
	"github.com/cloo-solutions/hirelens/internal/repository"
	"github.com/cloo-solutions/hirelens/internal/schemas"
	"github.com/cloo-solutions/hirelens/internal/server"
	"github.com/cloo-solutions/hirelens/internal/service"
	"github.com/cloo-solutions/hirelens/internal/storage"
	"github.com/cloo-solutions/hirelens/internal/telemetry"
	"github.com/cloo-solutions/hirelens/internal/vectorstore"
)

const shutdownTimeout = 30 * time.Second

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the hirelens API server and the background index worker",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (overrides HIRELENS_PORT)")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	log, err := logger.New(cfg.LogJSON, cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.HasSentry() {
		flush, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: cfg.TracesSampleRate(),
			Debug:            cfg.Debug,
		}, log)
		if err != nil {
			log.Warn("telemetry init failed, continuing without tracing", zap.Error(err))
		} else {
			defer flush()
		}
	}

	if noMigrate, _ := cmd.Flags().GetBool("no-migrate"); !noMigrate {
		if err := database.Migrate(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL, MaxConns: cfg.DatabaseMaxConns})
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Info("connected to database")

	candidateRepo := repository.NewCandidateRepository(pool)
	jobRepo := repository.NewJobPostingRepository(pool)
	snapshotRepo := repository.NewChunkSnapshotRepository(pool)
	indexJobRepo := repository.NewIndexJobRepository(pool)
	evaluationRepo := repository.NewEvaluationRepository(pool)
	apiKeyRepo := repository.NewAPIKeyRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	uuidGen := &service.DefaultUUIDGenerator{}
	authSvc := service.NewAuthService(apiKeyRepo, uuidGen)

	if cfg.HasBootstrapKey() {
		if err := bootstrapAPIKey(ctx, authSvc, cfg, log); err != nil {
			return fmt.Errorf("failed to bootstrap api key: %w", err)
		}
	}

	// Interface values stay nil unless S3 is configured.
	var (
		archiver      service.Archiver
		archiveReader handlers.ArchiveReader
	)
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Info("archive bucket ready", zap.String("bucket", cfg.S3Bucket))
		archiver, archiveReader = s3Client, s3Client
	}

	store, err := newVectorStore(cfg, pool, log)
	if err != nil {
		return err
	}
	retrieval := service.NewRetrievalService(store, snapshotRepo, log)

	llmClient, err := newLLMClient(ctx, cfg, log)
	if err != nil {
		return err
	}

	indexing := service.NewIndexingService(candidateRepo, snapshotRepo, chunking.New(cfg.ChunkConfig()), retrieval, archiver, log)
	indexWorker := jobs.NewWorker(jobs.NewIndexWorker(indexJobRepo, indexing, log), cfg.IndexPollInterval, log)
	go indexWorker.Start(ctx)
	log.Info("index worker started", zap.Duration("poll_interval", cfg.IndexPollInterval))

	evalCfg := cfg.EvaluationConfig()
	evaluationSvc := service.NewEvaluationService(service.EvaluationDeps{
		Candidates:     candidateRepo,
		Jobs:           jobRepo,
		Evaluations:    evaluationRepo,
		Leases:         repository.NewLeaseRepository(pool),
		Audit:          auditRepo,
		Tx:             txRunner,
		Retriever:      retrieval,
		LLM:            llmClient,
		Archive:        archiver,
		ValidateOutput: schemas.ValidateEvaluation,
		UUIDGen:        uuidGen,
		Logger:         log,
	}, evalCfg)
	profileSvc := service.NewProfileService(candidateRepo, retrieval, llmClient, auditRepo, evalCfg, log)
	candidateSvc := service.NewCandidateService(candidateRepo, jobRepo, snapshotRepo, txRunner)
	jobSvc := service.NewJobPostingService(jobRepo, uuidGen)

	router := server.NewRouter(server.RouterConfig{
		AuthValidator:     authSvc,
		Logger:            log,
		JobHandler:        handlers.NewJobHandler(jobSvc),
		CandidateHandler:  handlers.NewCandidateHandler(candidateSvc),
		ProfileHandler:    handlers.NewProfileHandler(profileSvc),
		EvaluationHandler: handlers.NewEvaluationHandler(evaluationSvc, archiveReader),
		APIKeyHandler:     handlers.NewAPIKeyHandler(authSvc),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			indexWorker.Stop()
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info("shutting down")

	indexWorker.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited")
	return nil
}

// newVectorStore picks pgvector when an embedding key is configured and the
// in-process index otherwise.
func newVectorStore(cfg *config.Config, pool *pgxpool.Pool, log *zap.Logger) (service.VectorStore, error) {
	if !cfg.HasOpenAI() {
		log.Warn("OPENAI_API_KEY not set, using in-memory chunk index")
		return vectorstore.NewMemory(), nil
	}
	embedder, err := openai.NewEmbedder(openai.Config{APIKey: cfg.OpenAIAPIKey, Model: cfg.EmbeddingModel})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	log.Info("using pgvector chunk index", zap.String("embedding_model", cfg.EmbeddingModel))
	return vectorstore.NewPGVector(embedder, repository.NewCVChunkRepository(pool)), nil
}

func newLLMClient(ctx context.Context, cfg *config.Config, log *zap.Logger) (llm.Client, error) {
	if !cfg.HasGemini() {
		log.Warn("GEMINI_API_KEY not set, profile and evaluation requests will fail")
		return llm.Unconfigured{}, nil
	}
	client, err := llm.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return client, nil
}

// bootstrapAPIKey stores HIRELENS_INIT_API_KEY for HIRELENS_INIT_OWNER_ID
// unless the key already exists.
func bootstrapAPIKey(ctx context.Context, authSvc *service.AuthService, cfg *config.Config, log *zap.Logger) error {
	if !service.IsValidAPIToken(cfg.InitAPIKey) {
		return fmt.Errorf("invalid HIRELENS_INIT_API_KEY format (expected 'hl_<64 hex chars>')")
	}
	if ownerID, err := authSvc.ValidateAPIKey(ctx, cfg.InitAPIKey); err == nil {
		log.Info("bootstrap api key already present", zap.String("owner_id", ownerID))
		return nil
	}
	if err := authSvc.CreateAPIKeyWithToken(ctx, cfg.InitOwnerID, "bootstrap", cfg.InitAPIKey); err != nil {
		return err
	}
	log.Info("bootstrap api key created", zap.String("owner_id", cfg.InitOwnerID))
	return nil
}
