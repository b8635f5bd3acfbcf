package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	ctx = WithBuildID(ctx, "build-123")
	ctx = WithSite(ctx, "blog")
	ctx = WithStage(ctx, "load")
	ctx = WithJobID(ctx, "job-1")

	lc := GetContext(ctx)
	assert.Equal(t, LogContext{BuildID: "build-123", Site: "blog", Stage: "load", JobID: "job-1"}, lc)
}

func TestStageOverridesPrevious(t *testing.T) {
	ctx := WithStage(context.Background(), "load")
	ctx = WithStage(ctx, "render")
	assert.Equal(t, "render", GetContext(ctx).Stage)
}

func TestEmptyContext(t *testing.T) {
	assert.Equal(t, LogContext{}, GetContext(context.Background()))
	assert.Empty(t, getLogAttrs(context.Background()))
}

func TestLoggerAddsContextAttributes(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithSite(WithBuildID(context.Background(), "b1"), "blog")
	Logger(ctx, base).Info("Rendered")

	out := buf.String()
	assert.Contains(t, out, "build.id=b1")
	assert.Contains(t, out, "site=blog")
	assert.Contains(t, out, "msg=Rendered")
}

func TestLoggerWithoutContextReturnsBase(t *testing.T) {
	base := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Same(t, base, Logger(context.Background(), base))
}

func TestInfoContextUsesDefaultLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx := WithStage(context.Background(), "import")
	InfoContext(ctx, "hello", slog.Int("count", 2))
	WarnContext(ctx, "careful")
	ErrorContext(ctx, "broken")

	out := buf.String()
	assert.Contains(t, out, "stage=import")
	assert.Contains(t, out, "count=2")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "level=ERROR")
}
