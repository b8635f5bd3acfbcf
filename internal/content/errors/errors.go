package errors

// Package errors provides sentinel errors for content parsing and corpus loading.
// Callers wrap them with path or field context; errors.Is works through every layer.

import "errors"

var (
	// ErrPathNotFound indicates a configured content directory does not exist.
	ErrPathNotFound = errors.New("content path not found")

	// ErrMalformedContent indicates the front matter delimiter is missing or the front matter is not a JSON object.
	ErrMalformedContent = errors.New("malformed content")

	// ErrMissingField indicates a required front matter field is absent.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidDate indicates a date field does not use the YYYY-MM-DD layout.
	ErrInvalidDate = errors.New("invalid date")
)
