package transcription

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/nyayagpt/nyaya/errors"
	"github.com/nyayagpt/nyaya/logger"
)

// Decoder prompts for the two passes.
const (
	MixedPrompt      = "नमस्ते, this is a legal discussion in Hindi and English."
	DevanagariPrompt = "नमस्ते, write this in Devanagari script."
)

// AcceptedLanguages are detected languages kept without a second pass.
var AcceptedLanguages = []string{"en", "hi"}

// Transcriber turns recorded case descriptions into text. Speech detected
// as any language other than English or Hindi (typically Urdu for
// Hinglish) is transcribed again with Hindi forced, so the text comes back
// in Devanagari.
type Transcriber struct {
	provider Provider
	log      *logger.Logger
}

// NewTranscriber wraps p.
func NewTranscriber(p Provider) *Transcriber {
	return &Transcriber{provider: p, log: logger.WithComponent("transcription")}
}

// IsAvailable reports whether the backend is reachable.
func (t *Transcriber) IsAvailable(ctx context.Context) bool {
	return t.provider.IsAvailable(ctx)
}

// Transcribe returns the transcript of audio.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, fileName string) (*TranscriptionResponse, error) {
	if len(audio) == 0 {
		return nil, errors.InvalidInput("file", "audio is empty")
	}
	log := t.log.WithContext(ctx).WithFields(logger.Fields("file", fileName, "bytes", len(audio)))

	resp, err := t.provider.Transcribe(ctx, TranscriptionRequest{Audio: audio, FileName: fileName, Prompt: MixedPrompt})
	if err != nil {
		return nil, fmt.Errorf("transcription: %w", err)
	}
	log.Debug("language detected", logger.Fields("language", resp.Language, "probability", resp.LanguageProbability))

	if !slices.Contains(AcceptedLanguages, resp.Language) {
		log.Info("forcing hindi transcription", logger.Fields("detected", resp.Language))
		resp, err = t.provider.Transcribe(ctx, TranscriptionRequest{Audio: audio, FileName: fileName, Language: "hi", Prompt: DevanagariPrompt})
		if err != nil {
			return nil, fmt.Errorf("transcription: hindi pass: %w", err)
		}
	}

	resp.Text = joinText(resp)
	return resp, nil
}

// joinText prefers the segment texts, which carry no leading prompt echo.
func joinText(resp *TranscriptionResponse) string {
	if len(resp.Segments) == 0 {
		return strings.TrimSpace(resp.Text)
	}
	parts := make([]string, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		if txt := strings.TrimSpace(s.Text); txt != "" {
			parts = append(parts, txt)
		}
	}
	return strings.Join(parts, " ")
}
