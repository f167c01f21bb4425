// Package util holds small text helpers shared by configuration, the HTTP
// middleware and the legal service: size parsing, secret masking and input
// sanitization.
package util
