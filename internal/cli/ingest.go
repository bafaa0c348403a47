package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/askdocs-ai/askdocs/internal/cache"
	"github.com/askdocs-ai/askdocs/internal/config"
	"github.com/askdocs-ai/askdocs/internal/database"
	"github.com/askdocs-ai/askdocs/internal/domain"
	"github.com/askdocs-ai/askdocs/internal/openai"
	"github.com/askdocs-ai/askdocs/internal/repository"
	"github.com/askdocs-ai/askdocs/internal/service"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	openaiapi "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
)

func IngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Ingest a text file",
		Long:  "Chunk, embed and index a plain-text file so it becomes queryable",
		Args:  cobra.ExactArgs(1),
		RunE:  runIngest,
	}

	cmd.Flags().String("id", "", "Document ID (defaults to a new UUID)")
	cmd.Flags().String("title", "", "Document title (defaults to the file name)")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	path := args[0]
	outputFormat, _ := cmd.Flags().GetString("output")

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.HasOpenAI() {
		return fmt.Errorf("ASKDOCS_OPENAI_API_KEY is required")
	}

	pool, err := getDBPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	docID, _ := cmd.Flags().GetString("id")
	if strings.TrimSpace(docID) == "" {
		docID = uuid.NewString()
	}
	title, _ := cmd.Flags().GetString("title")
	if strings.TrimSpace(title) == "" {
		title = filepath.Base(path)
	}

	openaiClient := openai.NewClientWithConfig(openai.Config{
		APIKey:         cfg.OpenAIAPIKey,
		EmbeddingModel: openaiapi.EmbeddingModel(cfg.EmbeddingModel),
		ChatModel:      cfg.ChatModel,
		Cache:          cache.NewLRU(cfg.EmbeddingCacheSize),
	})

	ingestSvc := service.NewIngestServiceWithTx(
		openaiClient,
		repository.NewChunkRepository(pool),
		repository.NewDocumentRepository(pool),
		service.ChunkConfig{
			TargetTokens:  cfg.ChunkTargetTokens,
			OverlapTokens: cfg.ChunkOverlapTokens,
		},
		repository.NewTxRunner(pool),
	)

	doc := &domain.Document{
		ID:        docID,
		Title:     title,
		Source:    path,
		RawText:   string(raw),
		CreatedAt: time.Now().UTC(),
	}

	result, err := ingestSvc.Ingest(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to ingest document: %w", err)
	}

	if outputFormat == "json" {
		data := map[string]interface{}{
			"document_id":    docID,
			"title":          title,
			"chunks_created": result.ChunksCreated,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("Document ingested: %s (%s), %d chunks\n", title, docID, result.ChunksCreated)
	}

	return nil
}

func getDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	return database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
}
