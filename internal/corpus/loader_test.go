package corpus

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	cerrors "git.home.luguber.info/inful/gazette/internal/content/errors"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"), LoadOptions{Logger: quietLogger()})
	require.ErrorIs(t, err, cerrors.ErrPathNotFound)
}

func TestLoad_PathIsAFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	_, err := Load(path, LoadOptions{Logger: quietLogger()})
	require.ErrorIs(t, err, cerrors.ErrPathNotFound)
}

func TestLoad_OrdersNewestFirstWithStableTies(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "a.json", map[string]any{"title": "Same Day A", "created": "2024-02-01"})
	writePage(t, dir, "b.json", map[string]any{"title": "Old", "created": "2020-06-01"})
	writePage(t, dir, "c.json", map[string]any{"title": "Same Day C", "created": "2024-02-01"})
	writePage(t, dir, "d.json", map[string]any{"title": "Undated"})
	writePage(t, dir, "e.json", map[string]any{"title": "Newest", "created": "2025-01-01"})

	c, err := Load(dir, LoadOptions{Logger: quietLogger()})
	require.NoError(t, err)

	var slugs []string
	for _, p := range c.Pages {
		slugs = append(slugs, p.Slug)
	}
	require.Equal(t, []string{"newest", "same-day-a", "same-day-c", "old", "undated"}, slugs)
	require.Equal(t, time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), c.Pages[len(c.Pages)-1].Created)
}

func TestLoad_SkipsDirectoriesAndDotFiles(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "post.json", map[string]any{"title": "Post"})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "drafts"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".DS_Store"), []byte("junk"), 0o600))

	c, err := Load(dir, LoadOptions{Logger: quietLogger()})
	require.NoError(t, err)
	require.Len(t, c.Pages, 1)
}

func TestLoad_AbortsOnFirstBadFile(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "good.json", map[string]any{"title": "Good"})
	writePage(t, dir, "untitled.json", map[string]any{"created": "2024-01-01"})

	c, err := Load(dir, LoadOptions{Logger: quietLogger()})
	require.ErrorIs(t, err, cerrors.ErrMissingField)
	require.ErrorContains(t, err, "untitled.json")
	require.Nil(t, c)
}

func TestLoad_AbortsOnMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "raw.txt"), []byte("no delimiter here"), 0o600))

	_, err := Load(dir, LoadOptions{Logger: quietLogger()})
	require.ErrorIs(t, err, cerrors.ErrMalformedContent)
}

func TestLoad_ContinueOnErrorCollectsFailures(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "good.json", map[string]any{"title": "Good"})
	writePage(t, dir, "bad-date.json", map[string]any{"title": "Bad", "created": "yesterday"})
	writePage(t, dir, "untitled.json", map[string]any{})

	c, err := Load(dir, LoadOptions{ContinueOnError: true, Logger: quietLogger()})
	require.NoError(t, err)
	require.Len(t, c.Pages, 1)
	require.Len(t, c.LoadErrors, 2)
	require.ErrorIs(t, c.Err(), cerrors.ErrInvalidDate)
	require.ErrorIs(t, c.Err(), cerrors.ErrMissingField)
}

func TestLoad_CleanLoadHasNoErr(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "good.json", map[string]any{"title": "Good"})

	c, err := Load(dir, LoadOptions{Logger: quietLogger()})
	require.NoError(t, err)
	require.NoError(t, c.Err())
}

func TestLoad_LogsCounts(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "a.json", map[string]any{"title": "A", "tags": []string{"x", "y"}})
	writePage(t, dir, "b.json", map[string]any{"title": "B", "tags": []string{"x"}})

	var buf bytes.Buffer
	_, err := Load(dir, LoadOptions{Site: "blog", Logger: slog.New(slog.NewTextHandler(&buf, nil))})
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, `msg="Files successfully loaded" site=blog count=2`)
	require.Contains(t, out, "attribute=tags count=2")
}

func TestLoad_IsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "a.json", map[string]any{"title": "A", "created": "2024-01-03", "tags": []string{"x", "y"}})
	writePage(t, dir, "b.json", map[string]any{"title": "B", "created": "2024-01-02", "tags": []string{"x"}})
	writePage(t, dir, "c.json", map[string]any{"title": "C", "created": "2024-01-01"})

	snapshot := func() string {
		c, err := Load(dir, LoadOptions{Logger: quietLogger()})
		require.NoError(t, err)
		c.Rank(RankOptions{})
		type row struct {
			Slug    string
			Related []relatedView
		}
		rows := make([]row, 0, len(c.Pages))
		for _, p := range c.Pages {
			rows = append(rows, row{Slug: p.Slug, Related: view(p.Related)})
		}
		return mustJSON(t, rows)
	}

	require.Equal(t, snapshot(), snapshot())
}
