package admin

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/orbital-research/bioastra/internal/config"
	"github.com/orbital-research/bioastra/internal/database"
	"github.com/orbital-research/bioastra/internal/openai"
	"github.com/orbital-research/bioastra/internal/repository"
	"github.com/orbital-research/bioastra/internal/service"
)

// IngestCmd returns the ingest command
func IngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest documents from a directory",
		Long:  "Ingest every .txt and .md file in a directory as one document each",
		RunE:  runIngest,
	}

	cmd.Flags().StringP("dir", "d", "", "Directory containing documents to ingest")
	_ = cmd.MarkFlagRequired("dir")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dir, _ := cmd.Flags().GetString("dir")

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := runMigrations(cfg.DatabaseURL, defaultMigrationsPath); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	var embeddingClient service.EmbeddingClient
	if cfg.HasOpenAI() {
		embeddingClient = openai.NewClient(cfg.OpenAIAPIKey)
	} else {
		log.Println("openai not configured: ingesting without embeddings, chunks will not be searchable")
	}

	txRunner := repository.NewTxRunner(pool)
	ingestSvc := service.NewIngestService(txRunner, embeddingClient, chunkConfigFrom(cfg))

	succeeded, failed, err := ingestSvc.IngestDirectory(ctx, dir)
	if err != nil {
		return err
	}

	log.Printf("ingest finished: %d succeeded, %d failed", succeeded, failed)
	if failed > 0 {
		return fmt.Errorf("%d documents failed to ingest", failed)
	}
	return nil
}
