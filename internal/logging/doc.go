// Package logging provides structured logging utilities for the
// google-docs-mcp server.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - Consistent attribute naming across the codebase
//   - Token sanitization for credential-adjacent log lines
//   - Logger adapter interface for flexibility
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "docs.get")
//	logger.Info("fetched document",
//	    logging.DocumentID(id),
//	    logging.Status(logging.StatusSuccess))
//
// All logs go to stderr: on the stdio transport, stdout carries the
// protocol stream and must stay clean.
package logging
