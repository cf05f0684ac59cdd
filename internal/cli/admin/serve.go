package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/orbital-research/bioastra/internal/api/handlers"
	"github.com/orbital-research/bioastra/internal/config"
	"github.com/orbital-research/bioastra/internal/database"
	"github.com/orbital-research/bioastra/internal/domain"
	"github.com/orbital-research/bioastra/internal/jobs"
	"github.com/orbital-research/bioastra/internal/openai"
	"github.com/orbital-research/bioastra/internal/repository"
	"github.com/orbital-research/bioastra/internal/server"
	"github.com/orbital-research/bioastra/internal/service"
	"github.com/orbital-research/bioastra/internal/storage"
	"github.com/orbital-research/bioastra/internal/telemetry"
)

// defaultMigrationsPath is where the daemon expects its migration files,
// relative to the working directory.
const defaultMigrationsPath = "migrations"

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the bioastra API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.HasOpenAI() {
		return domain.NewDomainError(domain.ErrCodeConfiguration, "BIOASTRA_OPENAI_API_KEY is required")
	}

	if cfg.SentryDSN != "" {
		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if cfg.Environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL, defaultMigrationsPath); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	documentRepo := repository.NewDocumentRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	ingestJobRepo := repository.NewIngestJobRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	chunkCfg := chunkConfigFrom(cfg)

	model := openai.NewClientWithConfig(openai.Config{
		APIKey:    cfg.OpenAIAPIKey,
		ChatModel: cfg.ChatModel,
	})

	ingestSvc := service.NewIngestService(txRunner, model, chunkCfg)

	ingestProcessor := jobs.NewIngestWorker(ingestJobRepo, ingestSvc)
	ingestWorker := jobs.NewWorker(ingestProcessor, 10*time.Second)
	go ingestWorker.Start(ctx)
	log.Println("ingest worker started")

	assembler := service.NewContextAssembler(model, chunkRepo, cfg.RetrievalK)
	answerSvc := service.NewAnswerService(assembler, model)

	var mediaSigner handlers.MediaURLSigner
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
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		mediaSigner = s3Client
	}

	router := server.NewRouter(server.RouterConfig{
		APIToken:        cfg.APIToken,
		AskHandler:      handlers.NewAskHandler(answerSvc),
		DocumentHandler: handlers.NewDocumentHandler(documentRepo, ingestJobRepo),
		MediaHandler:    handlers.NewMediaHandler(mediaSigner),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	ingestWorker.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func chunkConfigFrom(cfg *config.Config) service.ChunkConfig {
	chunkCfg := service.DefaultChunkConfig()
	if cfg.ChunkSize > 0 {
		chunkCfg.MaxChars = cfg.ChunkSize
	}
	if cfg.ChunkOverlap > 0 {
		chunkCfg.Overlap = cfg.ChunkOverlap
	}
	if cfg.MediaWindow > 0 {
		chunkCfg.Window = cfg.MediaWindow
	}
	if cfg.MinMediaLink > 0 {
		chunkCfg.MinLinks = cfg.MinMediaLink
	}
	return chunkCfg
}

func runMigrations(databaseURL, migrationsPath string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://"+migrationsPath,
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", upErr)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	switch {
	case err == migrate.ErrNilVersion:
		log.Println("migrations: database is up to date (no migrations applied)")
	case dirty:
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	case upErr == migrate.ErrNoChange:
		log.Printf("migrations: database is up to date (version %d)", version)
	default:
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
