package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/nyayagpt/nyaya/errors"
	"github.com/nyayagpt/nyaya/llm"
	"github.com/nyayagpt/nyaya/logger"
	"github.com/nyayagpt/nyaya/observability"
)

// DefaultTopK is used when neither the call nor the Searcher sets one.
const DefaultTopK = 3

// Searcher answers text queries against one collection.
type Searcher struct {
	store      Store
	embedder   llm.Embedder
	collection string
	topK       int
	log        *logger.Logger
}

// NewSearcher creates a Searcher. topK <= 0 uses DefaultTopK.
func NewSearcher(store Store, embedder llm.Embedder, collection string, topK int) *Searcher {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Searcher{
		store:      store,
		embedder:   embedder,
		collection: collection,
		topK:       topK,
		log:        logger.WithComponent("search"),
	}
}

// Collection returns the collection this Searcher queries.
func (s *Searcher) Collection() string { return s.collection }

// Search returns up to topK passages for query, best first. An inline
// language hint is stripped before embedding and applied afterwards as a
// filter, so a filtered search may return fewer than topK passages.
// topK <= 0 uses the Searcher's default.
func (s *Searcher) Search(ctx context.Context, query string, topK int) (_ []Passage, err error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanSearch)
	defer func() {
		if err != nil {
			observability.SetSpanError(ctx, err)
		}
		span.End()
	}()
	observability.SetSpanAttribute(ctx, observability.AttrCollection, s.collection)

	q := ParseQuery(query)
	if q.Text == "" {
		return nil, errors.InvalidInput("query", "must not be empty")
	}
	if topK <= 0 {
		topK = s.topK
	}

	vectors, err := s.embedder.Embed(ctx, []string{q.Text})
	if err != nil {
		return nil, fmt.Errorf("search: embedding query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("search: embedder returned %d vectors for one query", len(vectors))
	}

	passages, err := s.store.Search(ctx, s.collection, vectors[0], topK)
	if err != nil {
		return nil, err
	}
	filtered := filterLanguage(passages, q.Language)
	observability.SetSpanAttribute(ctx, observability.AttrHits, len(filtered))

	s.log.Debug("search completed", logger.Fields(
		"collection", s.collection,
		"language", q.Language,
		"hits", len(passages),
		"kept", len(filtered),
	))
	return filtered, nil
}

// LazyEmbedder builds its embedder on first use and reuses it for the life
// of the process. A failed build is remembered and returned on every call.
type LazyEmbedder struct {
	once  sync.Once
	build func() (llm.Embedder, error)
	emb   llm.Embedder
	err   error
}

var _ llm.Embedder = (*LazyEmbedder)(nil)

// NewLazyEmbedder defers build until the first Embed call.
func NewLazyEmbedder(build func() (llm.Embedder, error)) *LazyEmbedder {
	return &LazyEmbedder{build: build}
}

// Embed implements llm.Embedder.
func (l *LazyEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	l.once.Do(func() {
		logger.WithComponent("search").Info("loading embedding model")
		l.emb, l.err = l.build()
	})
	if l.err != nil {
		return nil, fmt.Errorf("search: embedding model unavailable: %w", l.err)
	}
	return l.emb.Embed(ctx, texts)
}
