// Package gemini maps the llm types onto the Gemini generateContent API
// and registers the "gemini" dialect.
package gemini

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/nyayagpt/nyaya/httpclient"
	"github.com/nyayagpt/nyaya/llm"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

func init() {
	llm.RegisterDialect(llm.DialectGemini, Dialect{})
}

// Dialect implements llm.Dialect for models/{model}:generateContent.
type Dialect struct{}

var _ llm.Dialect = Dialect{}

func (Dialect) Name() string           { return llm.DialectGemini }
func (Dialect) DefaultBaseURL() string { return defaultBaseURL }
func (Dialect) HealthPath() string     { return "" }

// ChatPath embeds the model in the URL path.
func (Dialect) ChatPath(model string) string {
	return "/v1beta/models/" + url.PathEscape(model) + ":generateContent"
}

// Auth sends the key in the x-goog-api-key header.
func (Dialect) Auth(apiKey string) httpclient.Auth {
	if apiKey == "" {
		return nil
	}
	return httpclient.HeaderKey("x-goog-api-key", apiKey)
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

type generateRequest struct {
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	Contents          []content         `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	ModelVersion string `json:"modelVersion"`
}

// BuildRequest maps chat messages to contents. Gemini names the assistant
// role "model" and carries the system prompt separately.
func (Dialect) BuildRequest(req llm.CompletionRequest) (any, error) {
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("gemini: at least one message is required")
	}

	out := generateRequest{Contents: make([]content, 0, len(req.Messages))}
	if req.SystemPrompt != "" {
		out.SystemInstruction = &content{Parts: []part{{Text: req.SystemPrompt}}}
	}
	for _, m := range req.Messages {
		role := "user"
		if m.Role == llm.RoleAssistant {
			role = "model"
		}
		out.Contents = append(out.Contents, content{Role: role, Parts: []part{{Text: m.Content}}})
	}
	if req.Temperature != 0 || req.MaxTokens != 0 {
		gc := &generationConfig{MaxOutputTokens: req.MaxTokens}
		if req.Temperature != 0 {
			t := req.Temperature
			gc.Temperature = &t
		}
		out.GenerationConfig = gc
	}
	return out, nil
}

// ParseResponse joins the text parts of the first candidate.
func (Dialect) ParseResponse(body []byte) (*llm.CompletionResponse, error) {
	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("gemini: decode response: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("gemini: response has no candidates")
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return &llm.CompletionResponse{
		Content: sb.String(),
		Model:   resp.ModelVersion,
		Usage: llm.Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		},
	}, nil
}
