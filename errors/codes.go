package errors

// ErrorCode is the machine-readable code sent to API clients.
type ErrorCode string

const (
	ErrCodeInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"
	ErrCodeRateLimited        ErrorCode = "RATE_LIMITED"
	ErrCodeBodyTooLarge       ErrorCode = "BODY_TOO_LARGE"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeExternalService    ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"

	// ErrCodeGraphDefinition marks a pipeline rejected before it ran: a
	// cycle, a dangling or forward dependency, or no single terminal node.
	ErrCodeGraphDefinition ErrorCode = "GRAPH_DEFINITION"
	// ErrCodeExecutor marks a failed agent call.
	ErrCodeExecutor ErrorCode = "EXECUTOR_ERROR"
	// ErrCodePipelineExecution marks a run aborted by a failing node.
	ErrCodePipelineExecution ErrorCode = "PIPELINE_EXECUTION_FAILED"
	// ErrCodeContractViolation marks structured output that could not be
	// parsed at all.
	ErrCodeContractViolation ErrorCode = "CONTRACT_VIOLATION"
	ErrCodeNotification      ErrorCode = "NOTIFICATION_FAILED"
)
