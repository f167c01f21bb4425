// Package logger provides structured logging for nyaya using zerolog.
//
// It supports JSON and console output, level configuration, component-scoped
// loggers and request/run ids carried on the context.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//
// # Usage
//
//	log := logger.WithComponent("dag")
//	log.Info("node completed", logger.Fields("node", "intake"))
package logger
