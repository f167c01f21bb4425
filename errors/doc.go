// Package errors holds AppError, the error type of nyaya, and its
// constructors. Pipeline failures have their own codes:
// GRAPH_DEFINITION, EXECUTOR_ERROR, PIPELINE_EXECUTION_FAILED,
// CONTRACT_VIOLATION and NOTIFICATION_FAILED.
package errors
