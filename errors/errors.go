package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/dustin/go-humanize"
)

// AppError is the error type every layer returns to its caller.
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

// Error keeps the cause text verbatim, so a "429" from a model backend is
// still visible after several layers of wrapping.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the cause and returns e.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets one detail and returns e.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates an AppError that is not retryable.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody is the client-visible part of an AppError.
type ErrorBody struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

// ToResponse converts e for JSON encoding.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: ErrorBody{Code: e.Code, Message: e.Message, Retryable: e.Retryable, Details: e.Details}}
}

// HasCode reports whether err, or any AppError in its cause chain, has code.
func HasCode(err error, code ErrorCode) bool {
	return findCode(err, code) != nil
}

func findCode(err error, code ErrorCode) *AppError {
	for err != nil {
		var appErr *AppError
		if !stderrors.As(err, &appErr) {
			return nil
		}
		if appErr.Code == code {
			return appErr
		}
		err = appErr.Cause
	}
	return nil
}

// IsGraphDefinition reports whether err is a GRAPH_DEFINITION error.
func IsGraphDefinition(err error) bool { return HasCode(err, ErrCodeGraphDefinition) }

// IsContractViolation reports whether err is a CONTRACT_VIOLATION error.
func IsContractViolation(err error) bool { return HasCode(err, ErrCodeContractViolation) }

// FailedNode returns the node named by the outermost pipeline or executor
// error in err.
func FailedNode(err error) (string, bool) {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return "", false
	}
	node, ok := appErr.Details["node"].(string)
	return node, ok
}

// RawOutput returns the unparsed model text kept on a contract violation.
func RawOutput(err error) (string, bool) {
	appErr := findCode(err, ErrCodeContractViolation)
	if appErr == nil {
		return "", false
	}
	raw, ok := appErr.Details["raw"].(string)
	return raw, ok
}

func withStatus(e *AppError, status int, retryable bool) *AppError {
	e.HTTPStatus = status
	e.Retryable = retryable
	return e
}

// InvalidInput rejects a request field.
func InvalidInput(field, reason string) *AppError {
	e := New(ErrCodeInvalidInput, "Invalid input: "+reason, http.StatusBadRequest)
	if field != "" {
		e.Details = map[string]any{"field": field}
	}
	return e
}

// Validation rejects a request with a prepared message.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message, http.StatusBadRequest)
}

// NotFound reports a missing resource, such as an unknown pipeline.
func NotFound(resource, id string) *AppError {
	e := New(ErrCodeNotFound, fmt.Sprintf("The requested %s was not found.", resource), http.StatusNotFound)
	e.Details = map[string]any{"resource": resource, "id": id}
	return e
}

// Timeout reports an operation cut short by its context.
func Timeout(operation string) *AppError {
	e := withStatus(New(ErrCodeTimeout, "The request took too long. Please try again.", 0), http.StatusGatewayTimeout, true)
	e.Details = map[string]any{"operation": operation}
	return e
}

// RateLimited rejects a client that started too many pipeline runs.
func RateLimited() *AppError {
	return withStatus(New(ErrCodeRateLimited, "Too many requests. Please wait a moment and try again.", 0),
		http.StatusTooManyRequests, true)
}

// BodyTooLarge rejects a request body over limit bytes.
func BodyTooLarge(limit int64) *AppError {
	e := New(ErrCodeBodyTooLarge, "Request body exceeds "+humanize.Bytes(uint64(max(limit, 0)))+".", http.StatusRequestEntityTooLarge)
	e.Details = map[string]any{"limit_bytes": limit}
	return e
}

// ServiceUnavailable reports a dependency that is switched off or down.
func ServiceUnavailable(service string) *AppError {
	e := withStatus(New(ErrCodeServiceUnavailable, fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service), 0),
		http.StatusServiceUnavailable, true)
	e.Details = map[string]any{"service": service}
	return e
}

// ExternalServiceError wraps a failure of a backend such as whisper.
func ExternalServiceError(service string, cause error) *AppError {
	e := withStatus(New(ErrCodeExternalService, fmt.Sprintf("The %s service encountered an error. Please try again.", service), 0),
		http.StatusBadGateway, true)
	e.Details = map[string]any{"service": service}
	return e.WithCause(cause)
}

// Internal hides an unexpected error behind a generic message.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An unexpected error occurred. Please try again or contact support.",
		http.StatusInternalServerError).WithCause(cause)
}

// GraphDefinition rejects a malformed pipeline.
func GraphDefinition(pipeline, reason string) *AppError {
	e := New(ErrCodeGraphDefinition, fmt.Sprintf("pipeline %q is malformed: %s", pipeline, reason), http.StatusInternalServerError)
	e.Details = map[string]any{"pipeline": pipeline}
	return e
}

// Executor wraps a failed agent call on node.
func Executor(node, role string, cause error) *AppError {
	e := New(ErrCodeExecutor, fmt.Sprintf("agent %q failed on node %q", role, node), http.StatusBadGateway)
	e.Details = map[string]any{"node": node, "role": role}
	return e.WithCause(cause)
}

// PipelineExecution wraps the error that aborted a run at node.
func PipelineExecution(pipeline, node string, cause error) *AppError {
	e := New(ErrCodePipelineExecution, fmt.Sprintf("pipeline %q failed at node %q", pipeline, node), http.StatusBadGateway)
	e.Details = map[string]any{"pipeline": pipeline, "node": node}
	return e.WithCause(cause)
}

// ContractViolation keeps the unparsable output under the "raw" detail.
func ContractViolation(node, raw, reason string) *AppError {
	e := New(ErrCodeContractViolation, fmt.Sprintf("output of node %q violates its contract: %s", node, reason), http.StatusUnprocessableEntity)
	e.Details = map[string]any{"node": node, "raw": raw}
	return e
}

// NotificationFailed reports an email that was not delivered.
func NotificationFailed(reason string, cause error) *AppError {
	return New(ErrCodeNotification, reason, http.StatusBadGateway).WithCause(cause)
}
