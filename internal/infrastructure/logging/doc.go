// Package logging provides structured logging for the desktop shell.
//
// This package wraps Go's standard log/slog package so every component
// (supervisor, window host, packager) logs with the same fields and levels.
//
// # Configuration
//
// Logging is configured via the logging section of the shell config:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "text"     # json, text
//	  output: "stderr"   # stdout, stderr
//
// The backend process writes to the inherited console streams, so shell
// logs default to stderr in text form to read cleanly alongside it.
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("backend started", "pid", pid)
//	logger.Error("failed to start backend", "error", err)
package logging
