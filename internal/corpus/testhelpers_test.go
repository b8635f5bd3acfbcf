package corpus

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/gazette/internal/content"
)

func writePage(t *testing.T, dir, name string, meta map[string]any) {
	t.Helper()
	raw, err := content.Format(meta, "body of "+name)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), raw, 0o600))
}

func page(t *testing.T, title string, tags ...string) *content.Page {
	t.Helper()
	meta := map[string]any{"title": title, "tags": tags}
	raw, err := content.Format(meta, "")
	require.NoError(t, err)
	p, err := content.Parse(title+".json", raw, content.ParseOptions{})
	require.NoError(t, err)
	return p
}

type relatedView struct {
	Slug  string
	Score int
}

func view(entries []content.RelatedEntry) []relatedView {
	out := make([]relatedView, 0, len(entries))
	for _, e := range entries {
		out = append(out, relatedView{Slug: e.Slug, Score: e.Score})
	}
	return out
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
