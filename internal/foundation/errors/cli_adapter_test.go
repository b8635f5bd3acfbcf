package errors

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
)

type customError struct {
	msg string
}

func (e *customError) Error() string { return e.msg }

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation error", err: ValidationError("invalid input").Build(), expected: 2},
		{name: "missing path", err: NotFoundError("pages path does not exist").Build(), expected: 3},
		{name: "config error", err: ConfigError("bad config").Build(), expected: 7},
		{name: "feed error", err: FeedError("HTTP 500").Build(), expected: 8},
		{name: "content error", err: ContentError("missing title").Build(), expected: 9},
		{name: "render error", err: RenderError("template").Build(), expected: 11},
		{name: "wrapped classified error", err: fmt.Errorf("site: %w", ContentError("x").Build()), expected: 9},
		{name: "unclassified error", err: &customError{msg: "unknown error"}, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adapter.ExitCodeFor(tt.err)
			if got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{name: "nil error", err: nil, contains: ""},
		{
			name: "classified error shows offending path",
			err: WrapError(errors.New("missing required field: title"), CategoryContent, "content file rejected").
				WithContext("path", "pages/a.md").
				Build(),
			contains: "content: content file rejected (path=pages/a.md): missing required field: title",
		},
		{name: "unclassified error", err: &customError{msg: "boom"}, contains: "Error: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adapter.FormatError(tt.err)
			if !strings.Contains(got, tt.contains) {
				t.Errorf("FormatError() = %q, want to contain %q", got, tt.contains)
			}
		})
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var out bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(io.Discard, nil)))
	adapter.out = &out
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(NotFoundError("config file does not exist").WithContext("path", "x.yaml").Build())

	if code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
	if !strings.Contains(out.String(), "path=x.yaml") {
		t.Errorf("stderr output %q should name the path", out.String())
	}
}
