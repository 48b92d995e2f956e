package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/resalign/internal/config"
	"alfredoptarigan/resalign/internal/logger"
	"alfredoptarigan/resalign/internal/services"
)

// catalogFile lists curated learning resources and optional PDF guides to
// index for learning-resource retrieval.
type catalogFile struct {
	Resources []catalogResource `json:"resources"`
	Documents []catalogDocument `json:"documents"`
}

type catalogResource struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

type catalogDocument struct {
	Path     string `json:"path"`
	Title    string `json:"title"`
	Category string `json:"category"`
	URL      string `json:"url"`
}

var (
	catalogPath  string
	chunkSize    int
	chunkOverlap int
	debug        bool
)

func main() {
	cmd := &cobra.Command{
		Use:   "ingest-resources",
		Short: "Index the learning-resource catalog into Qdrant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context())
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVarP(&catalogPath, "catalog", "c", "./catalog/resources.json", "catalog JSON file")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 1000, "maximum characters per document chunk")
	cmd.Flags().IntVar(&chunkOverlap, "chunk-overlap", 200, "characters shared between consecutive chunks")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "verbose output")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, _ := config.Load()

	log, err := logger.New(cfg.Server.LogJSON, debug)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	raw, err := os.ReadFile(catalogPath)
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}
	var catalog catalogFile
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return fmt.Errorf("failed to parse catalog %s: %w", catalogPath, err)
	}

	gemini, err := services.NewGeminiService(ctx, services.GeminiOptions{
		APIKey:       cfg.Gemini.APIKey,
		Model:        cfg.Gemini.Model,
		EmbedModel:   cfg.Gemini.EmbedModel,
		MaxAttempts:  cfg.Worker.RetryMaxAttempts,
		InitialDelay: cfg.Worker.RetryInitialDelay,
	}, log)
	if err != nil {
		return err
	}

	index, err := services.NewQdrantCatalog(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, log)
	if err != nil {
		return err
	}
	if err := index.InitCollection(ctx); err != nil {
		return err
	}

	in := &ingester{
		gemini:    gemini,
		index:     index,
		converter: services.NewPDFConverter(),
		chunker:   services.NewTextChunker(chunkSize, chunkOverlap),
		log:       log,
	}

	var ok, failed int
	for _, r := range catalog.Resources {
		if err := in.resource(ctx, r); err != nil {
			log.Error("resource not indexed", zap.String("id", r.ID), zap.Error(err))
			failed++
			continue
		}
		ok++
	}
	for _, d := range catalog.Documents {
		if err := in.document(ctx, d, filepath.Dir(catalogPath)); err != nil {
			log.Error("document not indexed", zap.String("path", d.Path), zap.Error(err))
			failed++
			continue
		}
		ok++
	}

	log.Info("catalog ingestion finished", zap.Int("indexed", ok), zap.Int("failed", failed))
	if failed > 0 {
		return fmt.Errorf("%d catalog items failed", failed)
	}
	return nil
}

type ingester struct {
	gemini    services.GeminiService
	index     services.ResourceCatalog
	converter services.DocumentConverter
	chunker   services.TextChunker
	log       *zap.Logger
}

func (in *ingester) resource(ctx context.Context, r catalogResource) error {
	if r.ID == "" || r.Title == "" {
		return fmt.Errorf("resource needs an id and a title")
	}

	text := strings.TrimSpace(r.Title + "\n\n" + r.Description)
	embedding, err := in.gemini.GenerateEmbedding(ctx, text)
	if err != nil {
		return err
	}

	return in.index.Upsert(ctx, services.CatalogEntry{
		ID:       "resource:" + r.ID,
		Source:   "resource:" + r.ID,
		Title:    r.Title,
		Category: r.Category,
		URL:      r.URL,
		Text:     text,
	}, embedding)
}

// document re-indexes a PDF guide, replacing any chunks from a previous run.
func (in *ingester) document(ctx context.Context, d catalogDocument, baseDir string) error {
	path := d.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	text, err := in.converter.Convert(data)
	if err != nil {
		return err
	}
	chunks := in.chunker.Chunk(text)
	in.log.Info("document chunked", zap.String("path", d.Path), zap.Int("chunks", len(chunks)))

	source := "document:" + filepath.Base(d.Path)
	if err := in.index.DeleteSource(ctx, source); err != nil {
		return err
	}

	for i, chunk := range chunks {
		embedding, err := in.gemini.GenerateEmbedding(ctx, chunk)
		if err != nil {
			return fmt.Errorf("chunk %d: %w", i+1, err)
		}
		if err := in.index.Upsert(ctx, services.CatalogEntry{
			ID:       fmt.Sprintf("%s#%d", source, i),
			Source:   source,
			Title:    d.Title,
			Category: d.Category,
			URL:      d.URL,
			Text:     chunk,
		}, embedding); err != nil {
			return fmt.Errorf("chunk %d: %w", i+1, err)
		}
	}
	return nil
}
