package search

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/nyayagpt/nyaya/llm"
	"github.com/nyayagpt/nyaya/logger"
)

// LoadRecords reads JSON arrays of source records from paths and converts
// them with RecordToPassage, in file order.
func LoadRecords(paths ...string) ([]Passage, error) {
	var out []Passage
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("search: reading %s: %w", path, err)
		}
		var records []map[string]any
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("search: parsing %s: %w", path, err)
		}
		for _, rec := range records {
			out = append(out, RecordToPassage(rec))
		}
	}
	return out, nil
}

// RecordToPassage converts one source record. Two shapes are understood:
//
//   - penal code sections: Section, section_title, section_desc (English,
//     section granularity, id "ipc_<Section>");
//   - extracted pages: text, section, page, id, language, granularity.
func RecordToPassage(rec map[string]any) Passage {
	if _, ok := rec["section_title"]; ok {
		if _, ok := rec["section_desc"]; ok {
			section := field(rec, "Section")
			return Passage{
				ID:          "ipc_" + section,
				Content:     fmt.Sprintf("Section %s: %s\n\n%s", section, field(rec, "section_title"), field(rec, "section_desc")),
				Language:    LanguageEnglish,
				Granularity: "section",
				Section:     section,
			}
		}
	}

	section := field(rec, "section")
	if section == "" {
		section = field(rec, "Section")
	}
	page := field(rec, "page")

	var header []string
	if section != "" {
		header = append(header, "Section "+section)
	}
	if page != "" {
		header = append(header, "Page "+page)
	}
	content := field(rec, "text")
	if len(header) > 0 {
		content = strings.Join(header, " | ") + "\n\n" + content
	}

	return Passage{
		ID:          field(rec, "id"),
		Content:     content,
		Language:    orUnknown(field(rec, "language")),
		Granularity: orUnknown(field(rec, "granularity")),
		Section:     section,
		Page:        page,
	}
}

// field renders a JSON scalar as text. Numbers lose no precision and have no
// trailing zeros.
func field(rec map[string]any, key string) string {
	switch v := rec[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// Stats summarises an indexing run.
type Stats struct {
	Records int `json:"records"`
	Chunks  int `json:"chunks"`
	Stored  int `json:"stored"`
}

// Indexer splits passages into overlapping chunks, embeds them and writes
// them to a Store.
type Indexer struct {
	store     Store
	embedder  llm.Embedder
	splitter  textsplitter.TextSplitter
	batchSize int
	log       *logger.Logger
}

// NewIndexer creates an Indexer using the chunking and batch settings of cfg.
func NewIndexer(store Store, embedder llm.Embedder, cfg Config) *Indexer {
	cfg.ApplyDefaults()
	return &Indexer{
		store:    store,
		embedder: embedder,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(cfg.ChunkSize),
			textsplitter.WithChunkOverlap(cfg.ChunkOverlap),
		),
		batchSize: cfg.BatchSize,
		log:       logger.WithComponent("search.indexer"),
	}
}

// Chunk splits each passage's content. Chunks keep the metadata of their
// passage. Passages with no text are dropped.
func (ix *Indexer) Chunk(passages []Passage) ([]Passage, error) {
	var out []Passage
	for _, p := range passages {
		if strings.TrimSpace(p.Content) == "" {
			continue
		}
		parts, err := ix.splitter.SplitText(p.Content)
		if err != nil {
			return nil, fmt.Errorf("search: splitting %q: %w", p.ID, err)
		}
		for _, part := range parts {
			c := p
			c.Content = part
			out = append(out, c)
		}
	}
	return out, nil
}

// Index chunks, embeds and stores passages in collection, creating the
// collection first when needed.
func (ix *Indexer) Index(ctx context.Context, collection string, passages []Passage) (Stats, error) {
	stats := Stats{Records: len(passages)}

	if err := ix.store.EnsureCollection(ctx, collection); err != nil {
		return stats, err
	}

	chunks, err := ix.Chunk(passages)
	if err != nil {
		return stats, err
	}
	stats.Chunks = len(chunks)
	ix.log.Info("split records into chunks", logger.Fields("collection", collection, "records", stats.Records, "chunks", stats.Chunks))

	for start := 0; start < len(chunks); start += ix.batchSize {
		end := min(start+ix.batchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}
		vectors, err := ix.embedder.Embed(ctx, texts)
		if err != nil {
			return stats, fmt.Errorf("search: embedding chunks %d-%d: %w", start, end, err)
		}

		stored, err := ix.store.Upsert(ctx, collection, batch, vectors)
		stats.Stored += stored
		if err != nil {
			return stats, err
		}
		if stored < len(batch) {
			ix.log.Warn("some chunks were not stored", logger.Fields("collection", collection, "batch_start", start, "stored", stored, "sent", len(batch)))
		}
	}

	ix.log.Info("indexing completed", logger.Fields("collection", collection, "stored", stats.Stored))
	return stats, nil
}
