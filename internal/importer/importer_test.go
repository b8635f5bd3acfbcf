package importer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/gazette/internal/config"
	"git.home.luguber.info/inful/gazette/internal/content"
	"git.home.luguber.info/inful/gazette/internal/feed"
	ferrors "git.home.luguber.info/inful/gazette/internal/foundation/errors"
)

func podcastConfig(pages string) *config.Config {
	return &config.Config{
		Name:  "show",
		Type:  config.SiteTypePodcast,
		Paths: config.PathsConfig{Pages: pages},
		Podcast: &config.PodcastConfig{
			RSSURL: "https://show.example.com/rss",
		},
	}
}

func staticFetcher(p *feed.Podcast) Fetcher {
	return FetcherFunc(func(context.Context, string) (*feed.Podcast, error) { return p, nil })
}

func episode(title string, day int) feed.Episode {
	pub := time.Date(2024, 5, day, 8, 30, 0, 0, time.UTC)
	return feed.Episode{
		Title:       title,
		Description: "About " + title,
		Published:   &pub,
		Enclosure:   &feed.Enclosure{URL: fmt.Sprintf("https://cdn.example.com/%d.mp3", day)},
	}
}

func TestImportWritesEpisodes(t *testing.T) {
	pages := filepath.Join(t.TempDir(), "pages")
	noDate := episode("Undated", 3)
	noDate.Published = nil
	noAudio := episode("Silent", 4)
	noAudio.Enclosure = nil

	p := &feed.Podcast{Episodes: []feed.Episode{
		episode("Episode Two: Hello", 2),
		episode("Episode One", 1),
		noDate,
		noAudio,
		episode("   ", 5),
	}}

	res, err := Import(context.Background(), podcastConfig(pages), staticFetcher(p), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(pages, "episode-two-hello.json"),
		filepath.Join(pages, "episode-one.json"),
	}, res.Written)
	assert.Equal(t, []SkippedEpisode{
		{Title: "Undated", Reason: ReasonNoPubDate},
		{Title: "Silent", Reason: ReasonNoEnclosure},
		{Title: "   ", Reason: ReasonNoTitle},
	}, res.Skipped)

	page, err := content.ParseFile(res.Written[0], content.ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Episode Two: Hello", page.Title)
	assert.Equal(t, "episode-two-hello", page.Meta[KeySlug])
	assert.Equal(t, "https://cdn.example.com/2.mp3", page.Meta[KeyAudio])
	assert.Equal(t, "2024-05-02", page.Created.Format(content.DateLayout))
	assert.Empty(t, page.Tags)
	assert.Equal(t, "\nAbout Episode Two: Hello", page.Body)
}

func TestImportNeverOverwrites(t *testing.T) {
	pages := t.TempDir()
	existing := filepath.Join(pages, "episode-one.json")
	require.NoError(t, os.WriteFile(existing, []byte("hand edited"), 0o600))

	p := &feed.Podcast{Episodes: []feed.Episode{episode("Episode One", 1)}}
	res, err := Import(context.Background(), podcastConfig(pages), staticFetcher(p), Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Written)
	assert.Equal(t, []string{existing}, res.Existing)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "hand edited", string(data))

	// Re-running is idempotent.
	res, err = Import(context.Background(), podcastConfig(pages), staticFetcher(p), Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Written)
}

func TestImportRejectsConfigs(t *testing.T) {
	blog := podcastConfig(t.TempDir())
	blog.Type = config.SiteTypeBlog

	noURL := podcastConfig(t.TempDir())
	noURL.Podcast.RSSURL = ""

	noPages := podcastConfig("")

	for name, cfg := range map[string]*config.Config{"blog": blog, "no rss_url": noURL, "no pages": noPages, "nil": nil} {
		t.Run(name, func(t *testing.T) {
			_, err := Import(context.Background(), cfg, staticFetcher(&feed.Podcast{}), Options{})
			require.Error(t, err)
			assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
		})
	}
}

func TestImportFeedFailureIsNotRetried(t *testing.T) {
	calls := 0
	failing := FetcherFunc(func(context.Context, string) (*feed.Podcast, error) {
		calls++
		return nil, errors.New("HTTP 500")
	})
	_, err := Import(context.Background(), podcastConfig(t.TempDir()), failing, Options{})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryFeed))
	assert.Equal(t, 1, calls)
}

const rss = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Show</title>
<item><title>Pilot</title><description>First one</description>
<pubDate>Mon, 06 May 2024 10:00:00 +0000</pubDate>
<enclosure url="https://cdn.example.com/pilot.mp3" length="1" type="audio/mpeg"/></item>
</channel></rss>`

func TestImportOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(rss))
	}))
	defer srv.Close()

	cfg := podcastConfig(t.TempDir())
	cfg.Podcast.RSSURL = srv.URL

	res, err := Import(context.Background(), cfg, HTTPFetcher(srv.Client()), Options{})
	require.NoError(t, err)
	require.Len(t, res.Written, 1)
	assert.Equal(t, "pilot.json", filepath.Base(res.Written[0]))
}

func TestImportAllSkipsNonPodcasts(t *testing.T) {
	dir := t.TempDir()
	pages := filepath.Join(t.TempDir(), "pages")
	require.NoError(t, os.MkdirAll(pages, 0o755))

	podcast := fmt.Sprintf("type: podcast\npaths:\n  pages: %s\npodcast:\n  rss_url: https://show.example.com/rss\n", pages)
	blog := fmt.Sprintf("type: blog\npaths:\n  pages: %s\n", pages)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blog.yaml"), []byte(blog), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "show.yaml"), []byte(podcast), 0o600))

	p := &feed.Podcast{Episodes: []feed.Episode{episode("Episode One", 1)}}
	results, err := ImportAll(context.Background(), dir, staticFetcher(p), Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "show", results[0].Site)
	assert.Len(t, results[0].Written, 1)
}

func TestImportAllCollectsFailures(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("type: radio\npaths:\n  pages: x\n"), 0o600))

	_, err := ImportAll(context.Background(), dir, staticFetcher(&feed.Podcast{}), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml")
}

func TestWriteNew(t *testing.T) {
	dir := t.TempDir()

	path, err := writeNew(dir, "a.json", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.json"), path)

	_, err = writeNew(dir, "a.json", []byte("y"))
	require.ErrorIs(t, err, ErrExists)

	_, err = writeNew(dir, "../outside.json", []byte("x"))
	require.Error(t, err)

	_, err = writeNew("", "a.json", []byte("x"))
	require.Error(t, err)
}
