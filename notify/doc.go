// Package notify delivers drafted documents to lawyers by email.
//
// Delivery never fails a pipeline: Send reports the outcome as a Result,
// and a missing SMTP configuration is a failed Result rather than an error.
package notify
