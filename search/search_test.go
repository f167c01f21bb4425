package search

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/weaviate/weaviate/entities/models"

	apperrors "github.com/nyayagpt/nyaya/errors"
	"github.com/nyayagpt/nyaya/llm"
)

// memStore is an in-memory Store that returns its passages in order.
type memStore struct {
	mu          sync.Mutex
	passages    map[string][]Passage
	vectors     map[string][][]float32
	ensured     []string
	lastLimit   int
	lastVector  []float32
	searchErr   error
	upsertCalls int
}

func newMemStore() *memStore {
	return &memStore{passages: map[string][]Passage{}, vectors: map[string][][]float32{}}
}

func (m *memStore) Search(_ context.Context, collection string, vector []float32, limit int) ([]Passage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit, m.lastVector = limit, vector
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	ps := m.passages[collection]
	if len(ps) > limit {
		ps = ps[:limit]
	}
	return append([]Passage(nil), ps...), nil
}

func (m *memStore) Upsert(_ context.Context, collection string, passages []Passage, vectors [][]float32) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertCalls++
	m.passages[collection] = append(m.passages[collection], passages...)
	m.vectors[collection] = append(m.vectors[collection], vectors...)
	return len(passages), nil
}

func (m *memStore) EnsureCollection(_ context.Context, collection string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensured = append(m.ensured, collection)
	return nil
}

// lenEmbedder embeds each text as [rune count] and records the inputs.
type lenEmbedder struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (e *lenEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, texts)
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(utf8.RuneCountInString(t))}
	}
	return out, nil
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		raw      string
		wantText string
		wantLang string
	}{
		{"theft of bicycle", "theft of bicycle", ""},
		{"theft [hindi]", "theft", LanguageHindi},
		{"[English] cheating", "cheating", LanguageEnglish},
		{"dowry [all]", "dowry", ""},
		{"dowry [both] death", "dowry death", ""},
		{"[english] [hindi] murder", "murder", LanguageHindi},
		{"चोरी [hindi]", "चोरी", LanguageHindi},
		{"[hindi]", "", LanguageHindi},
	}
	for _, tt := range tests {
		q := ParseQuery(tt.raw)
		if q.Text != tt.wantText || q.Language != tt.wantLang {
			t.Errorf("ParseQuery(%q) = %+v, want {%q %q}", tt.raw, q, tt.wantText, tt.wantLang)
		}
	}
}

func TestSearcher_Search(t *testing.T) {
	store := newMemStore()
	store.passages["IPCSection"] = []Passage{
		{ID: "ipc_379", Content: "Section 379: Punishment for theft", Language: LanguageEnglish},
		{ID: "hi_379", Content: "धारा 379", Language: LanguageHindi},
		{ID: "ipc_380", Content: "Section 380", Language: LanguageEnglish},
		{ID: "ipc_381", Content: "Section 381", Language: LanguageEnglish},
	}
	emb := &lenEmbedder{}
	s := NewSearcher(store, emb, "IPCSection", 0)

	got, err := s.Search(context.Background(), "theft [hindi]", 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "hi_379" {
		t.Errorf("Search() = %+v, want only the Hindi passage", got)
	}
	if store.lastLimit != DefaultTopK {
		t.Errorf("limit = %d, want %d", store.lastLimit, DefaultTopK)
	}
	if emb.calls[0][0] != "theft" {
		t.Errorf("embedded %q, hint should be stripped", emb.calls[0][0])
	}

	all, err := s.Search(context.Background(), "theft", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(all) != 4 || store.lastLimit != 10 {
		t.Errorf("got %d passages with limit %d", len(all), store.lastLimit)
	}
}

func TestSearcher_Errors(t *testing.T) {
	store := newMemStore()
	s := NewSearcher(store, &lenEmbedder{}, "IPCSection", 3)

	_, err := s.Search(context.Background(), " [all] ", 0)
	if !apperrors.HasCode(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT for an empty query, got %v", err)
	}

	store.searchErr = errors.New("weaviate down")
	if _, err := s.Search(context.Background(), "theft", 0); err == nil || !strings.Contains(err.Error(), "weaviate down") {
		t.Errorf("expected store error, got %v", err)
	}

	failing := NewSearcher(newMemStore(), &lenEmbedder{err: errors.New("no model")}, "IPCSection", 3)
	if _, err := failing.Search(context.Background(), "theft", 0); err == nil || !strings.Contains(err.Error(), "no model") {
		t.Errorf("expected embedder error, got %v", err)
	}
}

func TestLazyEmbedder(t *testing.T) {
	var builds atomic.Int32
	lazy := NewLazyEmbedder(func() (llm.Embedder, error) {
		builds.Add(1)
		return &lenEmbedder{}, nil
	})
	if builds.Load() != 0 {
		t.Fatal("embedder built before first use")
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := lazy.Embed(context.Background(), []string{"x"}); err != nil {
				t.Errorf("Embed() error = %v", err)
			}
		}()
	}
	wg.Wait()
	if builds.Load() != 1 {
		t.Errorf("builds = %d, want 1", builds.Load())
	}

	broken := NewLazyEmbedder(func() (llm.Embedder, error) { return nil, errors.New("model missing") })
	for range 2 {
		if _, err := broken.Embed(context.Background(), []string{"x"}); err == nil || !strings.Contains(err.Error(), "model missing") {
			t.Errorf("expected build error, got %v", err)
		}
	}
}

func TestTools(t *testing.T) {
	store := newMemStore()
	store.passages["Precedent"] = []Passage{{ID: "p1", Content: "State v. X", Language: LanguageEnglish}}
	s := NewSearcher(store, &lenEmbedder{}, "Precedent", 3)

	tool := PrecedentTool(s)
	if tool.Name() != PrecedentToolName {
		t.Errorf("Name() = %q", tool.Name())
	}
	out, err := tool.Call(context.Background(), "dowry harassment")
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	var got []Passage
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("tool output is not JSON: %v", err)
	}
	if len(got) != 1 || got[0].ID != "p1" {
		t.Errorf("Call() = %s", out)
	}

	empty := IPCTool(NewSearcher(newMemStore(), &lenEmbedder{}, "IPCSection", 3))
	if out, _ := empty.Call(context.Background(), "theft"); out != "[]" {
		t.Errorf("empty result = %q, want []", out)
	}
	if !strings.Contains(empty.Description(), "[hindi]") {
		t.Error("IPC tool should document the language hints")
	}
}

func TestRecordToPassage(t *testing.T) {
	var ipc, page map[string]any
	if err := json.Unmarshal([]byte(`{"chapter": 17, "chapter_title": "OF OFFENCES AGAINST PROPERTY", "Section": 379, "section_title": "Punishment for theft", "section_desc": "Whoever commits theft shall be punished."}`), &ipc); err != nil {
		t.Fatal(err)
	}
	got := RecordToPassage(ipc)
	want := Passage{
		ID:          "ipc_379",
		Content:     "Section 379: Punishment for theft\n\nWhoever commits theft shall be punished.",
		Language:    LanguageEnglish,
		Granularity: "section",
		Section:     "379",
	}
	if got != want {
		t.Errorf("RecordToPassage(ipc) = %+v, want %+v", got, want)
	}

	if err := json.Unmarshal([]byte(`{"text": "चोरी के लिए दंड", "section": "379", "page": 112, "id": "hi_p112", "language": "hindi", "granularity": "page"}`), &page); err != nil {
		t.Fatal(err)
	}
	got = RecordToPassage(page)
	if got.Content != "Section 379 | Page 112\n\nचोरी के लिए दंड" || got.Page != "112" || got.Language != LanguageHindi || got.ID != "hi_p112" {
		t.Errorf("RecordToPassage(page) = %+v", got)
	}

	bare := RecordToPassage(map[string]any{"text": "plain"})
	if bare.Content != "plain" || bare.Language != LanguageUnknown || bare.Granularity != LanguageUnknown {
		t.Errorf("RecordToPassage(bare) = %+v", bare)
	}
}

func TestLoadRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ipc.json")
	data := `[{"Section": "420", "section_title": "Cheating", "section_desc": "Whoever cheats..."}, {"text": "page", "id": "x"}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadRecords(path)
	if err != nil {
		t.Fatalf("LoadRecords() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "ipc_420" || got[1].ID != "x" {
		t.Errorf("LoadRecords() = %+v", got)
	}

	if _, err := LoadRecords(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
	bad := filepath.Join(dir, "bad.json")
	_ = os.WriteFile(bad, []byte(`{"not": "an array"}`), 0o644)
	if _, err := LoadRecords(bad); err == nil {
		t.Error("expected error for non-array JSON")
	}
}

func TestIndexer_Index(t *testing.T) {
	store := newMemStore()
	emb := &lenEmbedder{}
	ix := NewIndexer(store, emb, Config{BatchSize: 2})

	long := strings.Repeat("whoever dishonestly takes movable property ", 60)
	passages := []Passage{
		{ID: "ipc_378", Content: long, Language: LanguageEnglish},
		{ID: "ipc_379", Content: "Section 379: Punishment for theft", Language: LanguageEnglish},
		{ID: "empty", Content: "   "},
	}

	stats, err := ix.Index(context.Background(), "IPCSection", passages)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if len(store.ensured) != 1 || store.ensured[0] != "IPCSection" {
		t.Errorf("ensured = %v", store.ensured)
	}
	if stats.Records != 3 || stats.Chunks < 4 || stats.Stored != stats.Chunks {
		t.Errorf("stats = %+v", stats)
	}

	stored := store.passages["IPCSection"]
	for _, p := range stored {
		if n := utf8.RuneCountInString(p.Content); n > 1000 {
			t.Errorf("chunk of %d runes exceeds the chunk size", n)
		}
		if p.Language != LanguageEnglish {
			t.Errorf("chunk lost its metadata: %+v", p)
		}
	}
	if last := stored[len(stored)-1]; last.ID != "ipc_379" {
		t.Errorf("last chunk = %+v", last)
	}
	for i, call := range emb.calls {
		if len(call) > 2 {
			t.Errorf("embed call %d had %d texts, batch size is 2", i, len(call))
		}
	}
	if store.upsertCalls != len(emb.calls) {
		t.Errorf("upserts = %d, embeds = %d", store.upsertCalls, len(emb.calls))
	}
}

func TestIndexer_EmbedError(t *testing.T) {
	store := newMemStore()
	ix := NewIndexer(store, &lenEmbedder{err: errors.New("quota")}, Config{})
	_, err := ix.Index(context.Background(), "IPCSection", []Passage{{ID: "a", Content: "text"}})
	if err == nil || !strings.Contains(err.Error(), "quota") {
		t.Fatalf("expected embed error, got %v", err)
	}
	if store.upsertCalls != 0 {
		t.Error("nothing should be stored after an embed failure")
	}
}

func TestParseHits(t *testing.T) {
	var resp models.GraphQLResponse
	body := `{"data": {"Get": {"IPCSection": [
		{"content": "Section 379", "language": "english", "granularity": "section", "section": "379", "page": "", "source_id": "ipc_379", "_additional": {"certainty": 0.91}},
		{"content": "धारा 379", "language": "", "granularity": "page", "section": "", "page": "4", "source_id": "hi_4", "_additional": {"certainty": null}}
	]}}}`
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatal(err)
	}

	got, err := parseHits(&resp, "IPCSection")
	if err != nil {
		t.Fatalf("parseHits() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d passages", len(got))
	}
	if got[0].ID != "ipc_379" || got[0].Score != 0.91 || got[0].Section != "379" {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Language != LanguageUnknown || got[1].Score != 0 || got[1].Page != "4" {
		t.Errorf("second = %+v", got[1])
	}

	var failed models.GraphQLResponse
	if err := json.Unmarshal([]byte(`{"errors": [{"message": "class not found"}]}`), &failed); err != nil {
		t.Fatal(err)
	}
	if _, err := parseHits(&failed, "IPCSection"); err == nil || !strings.Contains(err.Error(), "class not found") {
		t.Errorf("expected graphql error, got %v", err)
	}
	if _, err := parseHits(nil, "IPCSection"); err == nil {
		t.Error("expected error for nil response")
	}
}

func TestObjectID_Deterministic(t *testing.T) {
	p := Passage{ID: "ipc_379", Content: "Section 379"}
	if ObjectID("IPCSection", p) != ObjectID("IPCSection", p) {
		t.Error("same passage should map to the same id")
	}
	if ObjectID("IPCSection", p) == ObjectID("Precedent", p) {
		t.Error("collections should not share ids")
	}
	q := p
	q.Content = "Section 379 (amended)"
	if ObjectID("IPCSection", p) == ObjectID("IPCSection", q) {
		t.Error("different chunks of one record should not share ids")
	}
}

func TestConfig(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.TopK != 3 || cfg.ChunkSize != 1000 || cfg.ChunkOverlap != 200 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}

	bad := cfg
	bad.URL = "localhost"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for relative url")
	}
	bad = cfg
	bad.ChunkOverlap = 1000
	if err := bad.Validate(); err == nil {
		t.Error("expected error for overlap >= size")
	}

	if _, err := NewWeaviateStore(cfg); err != nil {
		t.Errorf("NewWeaviateStore() error = %v", err)
	}
}
