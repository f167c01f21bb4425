package endpoint

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/nyayagpt/nyaya/errors"
	"github.com/nyayagpt/nyaya/legal"
	"github.com/nyayagpt/nyaya/logger"
	"github.com/nyayagpt/nyaya/notify"
	"github.com/nyayagpt/nyaya/transcription"
)

// LegalService runs the legal pipelines.
type LegalService interface {
	Analyze(ctx context.Context, req legal.AnalyzeRequest) (*legal.AnalyzeResult, error)
	Draft(ctx context.Context, req legal.DraftRequest) (*legal.DraftResult, error)
	Run(ctx context.Context, req legal.RunRequest) (*legal.RunResult, error)
	Notify(ctx context.Context, msg notify.Message) notify.Result
}

// Transcriber turns uploaded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, fileName string) (*transcription.TranscriptionResponse, error)
}

var (
	_ LegalService = (*legal.Service)(nil)
	_ Transcriber  = (*transcription.Transcriber)(nil)
)

// Legal serves the legal assistant API.
type Legal struct {
	svc         LegalService
	transcriber Transcriber
	log         *logger.Logger
}

// NewLegal creates the handlers. transcriber may be nil, in which case
// /transcribe answers 503.
func NewLegal(svc LegalService, transcriber Transcriber) *Legal {
	return &Legal{svc: svc, transcriber: transcriber, log: logger.WithComponent("endpoint.legal")}
}

// Register mounts the API routes on r.
func (h *Legal) Register(r gin.IRoutes) {
	r.POST("/analyze", h.Analyze)
	r.POST("/draft", h.Draft)
	r.POST("/run", h.Run)
	r.POST("/notify", h.Notify)
	r.POST("/transcribe", h.Transcribe)
}

// Analyze runs the advisory pipeline.
func (h *Legal) Analyze(c *gin.Context) {
	var req legal.AnalyzeRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.svc.Analyze(c.Request.Context(), req)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Draft runs the drafting pipeline.
func (h *Legal) Draft(c *gin.Context) {
	var req legal.DraftRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.svc.Draft(c.Request.Context(), req)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Run runs the end-to-end pipeline.
func (h *Legal) Run(c *gin.Context) {
	var req legal.RunRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.svc.Run(c.Request.Context(), req)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Notify emails a document to a lawyer. Delivery failures are reported in
// the body with status 200.
func (h *Legal) Notify(c *gin.Context) {
	var msg notify.Message
	if !bind(c, &msg) {
		return
	}
	c.JSON(http.StatusOK, h.svc.Notify(c.Request.Context(), msg))
}

// Transcribe transcribes the multipart "file" upload.
func (h *Legal) Transcribe(c *gin.Context) {
	if h.transcriber == nil {
		RespondWithError(c, apperrors.ServiceUnavailable("transcription service"))
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		RespondWithError(c, apperrors.InvalidInput("file", "an audio file upload is required").WithCause(err))
		return
	}
	f, err := fh.Open()
	if err != nil {
		RespondWithError(c, apperrors.InvalidInput("file", "unreadable upload").WithCause(err))
		return
	}
	defer f.Close()
	audio, err := io.ReadAll(f)
	if err != nil {
		RespondWithError(c, apperrors.InvalidInput("file", "unreadable upload").WithCause(err))
		return
	}

	resp, err := h.transcriber.Transcribe(c.Request.Context(), audio, fh.Filename)
	if err != nil {
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			err = apperrors.ExternalServiceError("transcription", err)
		}
		RespondWithError(c, err)
		return
	}
	h.log.WithContext(c.Request.Context()).Info("audio transcribed", logger.Fields(
		"file", fh.Filename, "language", resp.Language, "chars", len(resp.Text)))
	c.JSON(http.StatusOK, gin.H{"text": resp.Text, "language": resp.Language})
}

// bind decodes the JSON body into dst, answering 400 when it cannot.
// Field validation is left to the service.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondWithError(c, apperrors.InvalidInput("body", "request body must be a JSON object").WithCause(err))
		return false
	}
	return true
}
