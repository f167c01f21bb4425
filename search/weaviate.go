package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/nyayagpt/nyaya/logger"
)

// Store finds and stores passages by vector.
type Store interface {
	// Search returns up to limit passages of collection nearest to vector,
	// best first.
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]Passage, error)
	// Upsert writes passages with their vectors and returns how many were
	// stored. Writing the same passage twice replaces it.
	Upsert(ctx context.Context, collection string, passages []Passage, vectors [][]float32) (int, error)
	// EnsureCollection creates collection if it does not exist.
	EnsureCollection(ctx context.Context, collection string) error
}

// Property names of the passage class. "id" is reserved by Weaviate.
const (
	propContent     = "content"
	propLanguage    = "language"
	propGranularity = "granularity"
	propSection     = "section"
	propPage        = "page"
	propSourceID    = "source_id"
)

// WeaviateStore is a Store backed by Weaviate classes with externally
// supplied vectors.
type WeaviateStore struct {
	client *weaviate.Client
	log    *logger.Logger
}

var _ Store = (*WeaviateStore)(nil)

// NewWeaviateStore creates a client for cfg.URL. No request is made until
// the first call.
func NewWeaviateStore(cfg Config) (*WeaviateStore, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("search: invalid weaviate url %q", cfg.URL)
	}
	wcfg := weaviate.Config{
		Host:    u.Host,
		Scheme:  u.Scheme,
		Headers: cfg.Headers,
	}
	if cfg.APIKey != "" {
		wcfg.AuthConfig = auth.ApiKey{Value: cfg.APIKey}
	}
	client, err := weaviate.NewClient(wcfg)
	if err != nil {
		return nil, fmt.Errorf("search: creating weaviate client: %w", err)
	}
	return &WeaviateStore{client: client, log: logger.WithComponent("search.weaviate")}, nil
}

// IsAvailable reports whether Weaviate answers its readiness check.
func (s *WeaviateStore) IsAvailable(ctx context.Context) bool {
	ready, err := s.client.Misc().ReadyChecker().Do(ctx)
	return err == nil && ready
}

// EnsureCollection creates the passage class when it is missing.
func (s *WeaviateStore) EnsureCollection(ctx context.Context, collection string) error {
	if _, err := s.client.Schema().ClassGetter().WithClassName(collection).Do(ctx); err == nil {
		return nil
	}
	s.log.Info("creating collection", logger.Fields("collection", collection))
	if err := s.client.Schema().ClassCreator().WithClass(passageClass(collection)).Do(ctx); err != nil {
		return fmt.Errorf("search: creating collection %s: %w", collection, err)
	}
	return nil
}

func passageClass(name string) *models.Class {
	text := func(name, desc string) *models.Property {
		return &models.Property{Name: name, DataType: []string{"text"}, Description: desc}
	}
	return &models.Class{
		Class:       name,
		Description: "Chunks of legal source text with their language and location.",
		Vectorizer:  "none",
		Properties: []*models.Property{
			text(propContent, "Chunk text"),
			text(propLanguage, "english, hindi or unknown"),
			text(propGranularity, "section, page or unknown"),
			text(propSection, "Section number, when known"),
			text(propPage, "Source page, when known"),
			text(propSourceID, "Id of the source record"),
		},
	}
}

// Search runs a nearVector query.
func (s *WeaviateStore) Search(ctx context.Context, collection string, vector []float32, limit int) ([]Passage, error) {
	fields := []graphql.Field{
		{Name: propContent},
		{Name: propLanguage},
		{Name: propGranularity},
		{Name: propSection},
		{Name: propPage},
		{Name: propSourceID},
		{Name: "_additional", Fields: []graphql.Field{
			{Name: "certainty"},
		}},
	}
	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	resp, err := s.client.GraphQL().Get().
		WithClassName(collection).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("search: weaviate query failed: %w", err)
	}
	return parseHits(resp, collection)
}

type hit struct {
	Content     string `json:"content"`
	Language    string `json:"language"`
	Granularity string `json:"granularity"`
	Section     string `json:"section"`
	Page        string `json:"page"`
	SourceID    string `json:"source_id"`
	Additional  struct {
		Certainty *float64 `json:"certainty"`
	} `json:"_additional"`
}

// parseHits converts a GraphQL Get response for collection into passages.
func parseHits(resp *models.GraphQLResponse, collection string) ([]Passage, error) {
	if resp == nil {
		return nil, fmt.Errorf("search: nil graphql response")
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			if e != nil {
				msgs = append(msgs, e.Message)
			}
		}
		return nil, fmt.Errorf("search: weaviate query failed: %s", strings.Join(msgs, "; "))
	}

	raw, err := json.Marshal(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("search: marshal graphql data: %w", err)
	}
	var parsed struct {
		Get map[string][]hit `json:"Get"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("search: unexpected graphql data: %w", err)
	}

	hits := parsed.Get[collection]
	out := make([]Passage, 0, len(hits))
	for _, h := range hits {
		p := Passage{
			ID:          h.SourceID,
			Content:     h.Content,
			Language:    orUnknown(h.Language),
			Granularity: orUnknown(h.Granularity),
			Section:     h.Section,
			Page:        h.Page,
		}
		if h.Additional.Certainty != nil {
			p.Score = *h.Additional.Certainty
		}
		out = append(out, p)
	}
	return out, nil
}

// Upsert writes passages in one batch. Object ids derive from the
// collection, source id and content, so re-indexing replaces objects.
func (s *WeaviateStore) Upsert(ctx context.Context, collection string, passages []Passage, vectors [][]float32) (int, error) {
	if len(passages) != len(vectors) {
		return 0, fmt.Errorf("search: %d passages but %d vectors", len(passages), len(vectors))
	}
	if len(passages) == 0 {
		return 0, nil
	}

	objects := make([]*models.Object, len(passages))
	for i, p := range passages {
		objects[i] = &models.Object{
			Class:  collection,
			ID:     strfmt.UUID(ObjectID(collection, p).String()),
			Vector: vectors[i],
			Properties: map[string]interface{}{
				propContent:     p.Content,
				propLanguage:    orUnknown(p.Language),
				propGranularity: orUnknown(p.Granularity),
				propSection:     p.Section,
				propPage:        p.Page,
				propSourceID:    p.ID,
			},
		}
	}

	resp, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("search: batch import to %s failed: %w", collection, err)
	}

	stored := 0
	for _, item := range resp {
		if item.Result != nil && item.Result.Status != nil && *item.Result.Status == "SUCCESS" {
			stored++
			continue
		}
		if item.Result != nil && item.Result.Errors != nil {
			for _, e := range item.Result.Errors.Error {
				s.log.Warn("batch item rejected", logger.Fields("collection", collection, logger.FieldError, e.Message))
			}
		}
	}
	return stored, nil
}

// ObjectID is the deterministic Weaviate object id of a passage.
func ObjectID(collection string, p Passage) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(collection+"\x00"+p.ID+"\x00"+p.Content))
}

func orUnknown(s string) string {
	if s == "" {
		return LanguageUnknown
	}
	return s
}
