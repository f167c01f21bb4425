package transcription

// TranscriptionRequest holds parameters for a transcription call.
type TranscriptionRequest struct {
	// Audio is the encoded audio file.
	Audio []byte `json:"-"`
	// FileName is the upload name; its extension tells the backend the format.
	FileName string `json:"file_name"`
	// Language forces the spoken language (e.g. "hi"). Empty auto-detects.
	Language string `json:"language,omitempty"`
	// Prompt primes the decoder with vocabulary and script.
	Prompt string `json:"prompt,omitempty"`
	// Model overrides the backend's default model.
	Model string `json:"model,omitempty"`
}

// TranscriptionResponse holds the result of a transcription call.
type TranscriptionResponse struct {
	// Text is the full transcription text.
	Text string `json:"text"`
	// Segments contains time-aligned transcript segments.
	Segments []Segment `json:"segments,omitempty"`
	// Duration is the audio duration in seconds.
	Duration float64 `json:"duration,omitempty"`
	// Language is the detected or forced language.
	Language string `json:"language,omitempty"`
	// LanguageProbability is the detector's confidence in Language.
	LanguageProbability float64 `json:"language_probability,omitempty"`
}

// Segment represents a time-aligned portion of a transcript.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}
