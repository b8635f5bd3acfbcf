// Package errors provides foundational, type-safe error primitives used across gazette.
//
// This package contains classified error types and helpers for robust error handling,
// including a fluent builder API for constructing ClassifiedError values with context.
//
// Key features:
//   - ErrorCategory: Broad error classification (config, content, feed, render, etc.)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - CLIErrorAdapter: exit codes and user-facing messages for the CLI
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryContent, "corpus load failed").
//		Fatal().
//		WithContext("site", cfg.Title).
//		WithContext("path", cfg.Paths.Pages).
//		Build()
package errors
