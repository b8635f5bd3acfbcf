package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *BuildManifest {
	return &BuildManifest{
		ID:        "build-123",
		Site:      "blog",
		Generator: "gazette dev",
		Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		Pages: []Page{
			{Slug: "a", Title: "A", Source: "pages/a.md", Fingerprint: "fp-a", Related: []string{"b"}},
			{Slug: "b", Title: "B", Source: "pages/b.md", Fingerprint: "fp-b", Related: []string{"a"}},
		},
		Status:   "success",
		Duration: 42,
	}
}

func TestManifestSerialization(t *testing.T) {
	m := sample()

	data, err := m.ToJSON()
	require.NoError(t, err)

	restored, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, m.ID, restored.ID)
	assert.Equal(t, m.Site, restored.Site)
	assert.Equal(t, m.Pages, restored.Pages)
	assert.True(t, m.Timestamp.Equal(restored.Timestamp))
}

func TestManifestJSONStructure(t *testing.T) {
	data, err := sample().ToJSON()
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"id", "site", "generator", "timestamp", "pages", "status", "duration_ms"} {
		assert.Contains(t, raw, key)
	}
	assert.NotContains(t, raw, "load_errors", "zero load errors are omitted")
}

func TestManifestHash(t *testing.T) {
	m1 := sample()
	m2 := sample()
	m2.ID = "build-456"
	m2.Timestamp = time.Now()
	m2.Duration = 9000

	h1, err := m1.Hash()
	require.NoError(t, err)
	h2, err := m2.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2, "hash ignores run identity and timing")
	assert.Len(t, h1, 64)

	m2.Pages[0].Fingerprint = "changed"
	h3, err := m2.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestManifestChanged(t *testing.T) {
	prev := sample()
	cur := sample()
	cur.Pages[1].Fingerprint = "fp-b2"
	cur.Pages = append(cur.Pages, Page{Slug: "c", Fingerprint: "fp-c"})

	assert.Equal(t, []string{"b", "c"}, cur.Changed(prev))
	assert.Equal(t, []string{"a", "b"}, sample().Changed(nil))
	assert.Equal(t, []string{"a", "b"}, cur.Slugs()[:2])
}

func TestWriteAndRead(t *testing.T) {
	dir := t.TempDir()

	missing, err := Read(dir)
	require.NoError(t, err)
	assert.Nil(t, missing)

	path, err := Write(dir, sample())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), path)

	got, err := Read(dir)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "blog", got.Site)
}

func TestHashArtifacts(t *testing.T) {
	dir := t.TempDir()
	index := filepath.Join(dir, "index.html")
	page := filepath.Join(dir, "a", "index.html")
	require.NoError(t, os.MkdirAll(filepath.Dir(page), 0o755))
	require.NoError(t, os.WriteFile(index, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(page, []byte("x"), 0o644))

	m := sample()
	require.NoError(t, m.HashArtifacts(dir, []string{index, page}))

	require.Len(t, m.Outputs.ArtifactHashes, 2)
	assert.Equal(t, m.Outputs.ArtifactHashes["index.html"], m.Outputs.ArtifactHashes["a/index.html"])

	err := m.HashArtifacts(dir, []string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}
