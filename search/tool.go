package search

import (
	"context"
	"encoding/json"

	"github.com/nyayagpt/nyaya/agent"
)

// Tool names as agents see them.
const (
	IPCToolName       = "Multilingual IPC Search"
	PrecedentToolName = "Precedent Search"
)

// IPCTool exposes s as the penal code search tool.
func IPCTool(s *Searcher) agent.Tool {
	return NewTool(IPCToolName,
		"Search Indian Penal Code sections in English and Hindi for the input query. "+
			`Add "[hindi]" or "[english]" to the query to restrict the language, or "[all]" for both. `+
			"Returns a JSON list of passages with language, section or page, and content.",
		s)
}

// PrecedentTool exposes s as the case law search tool.
func PrecedentTool(s *Searcher) agent.Tool {
	return NewTool(PrecedentToolName,
		"Search summaries of Indian court judgments relevant to the input facts. "+
			"Returns a JSON list of passages.",
		s)
}

// NewTool wraps a Searcher as an agent tool whose output is a JSON array of
// passages.
func NewTool(name, description string, s *Searcher) agent.Tool {
	return agent.NewTool(name, description, func(ctx context.Context, input string) (string, error) {
		passages, err := s.Search(ctx, input, 0)
		if err != nil {
			return "", err
		}
		if passages == nil {
			passages = []Passage{}
		}
		out, err := json.Marshal(passages)
		if err != nil {
			return "", err
		}
		return string(out), nil
	})
}
