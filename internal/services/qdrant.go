package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"alfredoptarigan/resalign/internal/logger"
)

// CatalogEntry is one chunk of the learning-resource catalog stored in Qdrant.
type CatalogEntry struct {
	ID       string
	Source   string
	Title    string
	Category string
	URL      string
	Text     string
	Score    float32
}

// ResourceCatalog is the vector index of curated learning material used to
// ground learning-resource suggestions.
type ResourceCatalog interface {
	InitCollection(ctx context.Context) error
	Upsert(ctx context.Context, entry CatalogEntry, embedding []float32) error
	Search(ctx context.Context, embedding []float32, category string, limit int) ([]CatalogEntry, error)
	DeleteSource(ctx context.Context, source string) error
}

type qdrantCatalog struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
	log            *zap.Logger
}

// catalogNamespace makes point ids stable across re-ingestion of the same entry.
var catalogNamespace = uuid.MustParse("6f1c2d4e-8a7b-4c3d-9e2f-1a0b9c8d7e6f")

func NewQdrantCatalog(urlStr, apiKey, collectionName string, log *zap.Logger) (ResourceCatalog, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// The Go client talks gRPC on 6334; the REST port 6333 is mapped onto it.
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v != 6333 {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantCatalog{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004
		log:            logger.OrNop(log),
	}, nil
}

// InitCollection implements ResourceCatalog.
func (q *qdrantCatalog) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		q.log.Debug("qdrant collection already exists", zap.String("collection", q.collectionName))
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.log.Info("qdrant collection created", zap.String("collection", q.collectionName))
	return nil
}

// Upsert implements ResourceCatalog.
func (q *qdrantCatalog) Upsert(ctx context.Context, entry CatalogEntry, embedding []float32) error {
	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(uuid.NewSHA1(catalogNamespace, []byte(entry.ID)).String()),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"doc_id":   entry.ID,
			"source":   entry.Source,
			"title":    entry.Title,
			"category": entry.Category,
			"url":      entry.URL,
			"text":     entry.Text,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// Search implements ResourceCatalog. An empty category searches the whole catalog.
func (q *qdrantCatalog) Search(ctx context.Context, embedding []float32, category string, limit int) ([]CatalogEntry, error) {
	var filter *qdrant.Filter
	if category != "" {
		filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("category", category),
			},
		}
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(embedding...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	entries := make([]CatalogEntry, 0, len(points))
	for _, point := range points {
		payload := point.Payload
		entries = append(entries, CatalogEntry{
			ID:       payloadString(payload, "doc_id"),
			Source:   payloadString(payload, "source"),
			Title:    payloadString(payload, "title"),
			Category: payloadString(payload, "category"),
			URL:      payloadString(payload, "url"),
			Text:     payloadString(payload, "text"),
			Score:    point.Score,
		})
	}

	return entries, nil
}

// DeleteSource implements ResourceCatalog.
func (q *qdrantCatalog) DeleteSource(ctx context.Context, source string) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{
						qdrant.NewMatch("source", source),
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete source %s: %w", source, err)
	}

	return nil
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		if s, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
			return s.StringValue
		}
	}
	return ""
}
