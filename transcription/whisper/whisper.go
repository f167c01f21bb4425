package whisper

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nyayagpt/nyaya/httpclient"
	"github.com/nyayagpt/nyaya/transcription"
)

// ProviderName identifies the sidecar in logs and errors.
const ProviderName = "whisper"

const (
	defaultWhisperURL     = "http://localhost:8387"
	defaultWhisperModel   = "large-v3"
	defaultWhisperTimeout = 120 * time.Second
	defaultBeamSize       = 5
)

// Config points at a faster-whisper sidecar. Device and ComputeType are
// forwarded only when set.
type Config struct {
	URL         string        `yaml:"url" mapstructure:"url"`
	Model       string        `yaml:"model" mapstructure:"model"`
	Device      string        `yaml:"device" mapstructure:"device"`
	ComputeType string        `yaml:"compute_type" mapstructure:"compute_type"`
	BeamSize    int           `yaml:"beam_size" mapstructure:"beam_size"`
	VADFilter   bool          `yaml:"vad_filter" mapstructure:"vad_filter"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

func (c *Config) ApplyDefaults() {
	c.URL = cmp.Or(c.URL, defaultWhisperURL)
	c.Model = cmp.Or(c.Model, defaultWhisperModel)
	if c.BeamSize <= 0 {
		c.BeamSize = defaultBeamSize
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultWhisperTimeout
	}
}

// Provider sends audio to the sidecar's /transcribe endpoint as a
// multipart upload.
type Provider struct {
	cfg    Config
	client *httpclient.Client
}

var _ transcription.Provider = (*Provider)(nil)

func NewProvider(cfg Config) (*Provider, error) {
	cfg.ApplyDefaults()
	client, err := httpclient.New(httpclient.Config{
		Name:    ProviderName,
		BaseURL: cfg.URL,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("whisper: %w", err)
	}
	return &Provider{cfg: cfg, client: client}, nil
}

func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether GET /health answers 200.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	resp, err := p.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: "/health"})
	return err == nil && resp.StatusCode == http.StatusOK
}

// Transcribe uploads req.Audio. An empty req.Language lets the sidecar
// detect the language itself.
func (p *Provider) Transcribe(ctx context.Context, req transcription.TranscriptionRequest) (*transcription.TranscriptionResponse, error) {
	name := filepath.Base(cmp.Or(req.FileName, "audio.wav"))
	resp, err := p.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/transcribe",
		Body: &httpclient.Form{
			Fields: p.fields(req),
			Files: []httpclient.File{{
				Field:       "audio",
				Name:        name,
				ContentType: audioTypes[strings.ToLower(filepath.Ext(name))],
				Data:        req.Audio,
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("whisper: transcribe %s: %w", name, err)
	}

	var out result
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("whisper: decoding response: %w", err)
	}
	return out.convert(), nil
}

func (p *Provider) fields(req transcription.TranscriptionRequest) map[string]string {
	f := map[string]string{
		"model":      cmp.Or(req.Model, p.cfg.Model),
		"beam_size":  strconv.Itoa(p.cfg.BeamSize),
		"vad_filter": strconv.FormatBool(p.cfg.VADFilter),
	}
	for key, val := range map[string]string{
		"language":       req.Language,
		"initial_prompt": req.Prompt,
		"device":         p.cfg.Device,
		"compute_type":   p.cfg.ComputeType,
	} {
		if val != "" {
			f[key] = val
		}
	}
	return f
}

var audioTypes = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".webm": "audio/webm",
	".ogg":  "audio/ogg",
	".m4a":  "audio/mp4",
}

type result struct {
	Text                string  `json:"text"`
	Language            string  `json:"language"`
	LanguageProbability float64 `json:"language_probability"`
	Duration            float64 `json:"duration"`
	Segments            []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// convert fills a missing duration from the end of the last segment.
func (r *result) convert() *transcription.TranscriptionResponse {
	out := &transcription.TranscriptionResponse{
		Text:                r.Text,
		Duration:            r.Duration,
		Language:            r.Language,
		LanguageProbability: r.LanguageProbability,
		Segments:            make([]transcription.Segment, len(r.Segments)),
	}
	for i, s := range r.Segments {
		out.Segments[i] = transcription.Segment{Start: s.Start, End: s.End, Text: s.Text}
	}
	if out.Duration == 0 && len(r.Segments) > 0 {
		out.Duration = r.Segments[len(r.Segments)-1].End
	}
	return out
}
