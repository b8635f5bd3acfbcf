package feed

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">
<channel>
  <title>The Show</title>
  <link>https://show.example.com</link>
  <description>Talk about things</description>
  <language>en-us</language>
  <copyright>2024 Show</copyright>
  <generator>hand</generator>
  <lastBuildDate>Thu, 02 May 2024 10:00:00 +0000</lastBuildDate>
  <image><url>https://show.example.com/img.png</url><title>The Show</title><link>https://show.example.com</link></image>
  <itunes:title>The Show (iTunes)</itunes:title>
  <itunes:author>Host Person</itunes:author>
  <itunes:image href="https://show.example.com/cover.jpg"/>
  <itunes:explicit>false</itunes:explicit>
  <itunes:type>episodic</itunes:type>
  <itunes:owner><itunes:name>Owner</itunes:name><itunes:email>owner@example.com</itunes:email></itunes:owner>
  <itunes:category text="Technology"><itunes:category text="Software"/></itunes:category>
  <itunes:category text="News"/>
  <item>
    <title>Episode Two</title>
    <description>Second &lt;b&gt;episode&lt;/b&gt;</description>
    <link>https://show.example.com/2</link>
    <guid isPermaLink="false">ep-2</guid>
    <pubDate>Wed, 01 May 2024 08:30:00 +0200</pubDate>
    <enclosure url="https://cdn.example.com/2.mp3" length="1234" type="audio/mpeg"/>
    <itunes:duration>00:42:00</itunes:duration>
    <itunes:episode>2</itunes:episode>
    <itunes:season>1</itunes:season>
    <itunes:episodeType>full</itunes:episodeType>
  </item>
  <item>
    <title>Trailer</title>
    <description>Coming soon</description>
    <guid>trailer</guid>
    <itunes:episode>n/a</itunes:episode>
  </item>
</channel>
</rss>`

func TestParse(t *testing.T) {
	p, err := Parse(strings.NewReader(sampleRSS))
	require.NoError(t, err)

	require.Equal(t, "The Show", p.Title)
	require.Equal(t, "Talk about things", p.Description)
	require.Equal(t, "en-us", p.Language)
	require.Equal(t, "2024 Show", p.Copyright)
	require.Equal(t, "https://show.example.com/img.png", p.Image)
	require.Equal(t, "The Show (iTunes)", p.ITunesTitle)
	require.Equal(t, "Host Person", p.ITunesAuthor)
	require.Equal(t, "https://show.example.com/cover.jpg", p.ITunesImage)
	require.Equal(t, "episodic", p.ITunesType)
	require.Equal(t, []string{"Technology", "Software", "News"}, p.ITunesCategories)
	require.Equal(t, &Owner{Name: "Owner", Email: "owner@example.com"}, p.ITunesOwner)
	require.NotNil(t, p.LastBuildDate)

	require.Len(t, p.Episodes, 2)
	ep := p.Episodes[0]
	require.Equal(t, "Episode Two", ep.Title)
	require.Equal(t, "Second <b>episode</b>", ep.Description)
	require.Equal(t, "ep-2", ep.GUID)
	require.NotNil(t, ep.Published)
	require.True(t, ep.Published.Equal(time.Date(2024, 5, 1, 6, 30, 0, 0, time.UTC)))
	require.Equal(t, &Enclosure{URL: "https://cdn.example.com/2.mp3", Length: "1234", Type: "audio/mpeg"}, ep.Enclosure)
	require.Equal(t, "00:42:00", ep.ITunesDuration)
	require.NotNil(t, ep.ITunesEpisode)
	require.Equal(t, 2, *ep.ITunesEpisode)
	require.Equal(t, 1, *ep.ITunesSeason)
	require.Equal(t, "full", ep.ITunesEpisodeType)

	trailer := p.Episodes[1]
	require.Nil(t, trailer.Published)
	require.Nil(t, trailer.Enclosure)
	require.Nil(t, trailer.ITunesEpisode)
}

func TestParse_Garbage(t *testing.T) {
	_, err := Parse(strings.NewReader("not a feed"))
	require.Error(t, err)
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/feed.xml" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	t.Cleanup(server.Close)

	p, err := Fetch(t.Context(), server.URL+"/feed.xml", NewHTTPClient())
	require.NoError(t, err)
	require.Equal(t, server.URL+"/feed.xml", p.URL)
	require.Len(t, p.Episodes, 2)
}

func TestFetch_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	_, err := Fetch(t.Context(), server.URL, nil)
	require.ErrorIs(t, err, ErrHTTPStatus)
	require.ErrorContains(t, err, "HTTP 500")
}

func TestFetch_TooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", MaxResponseBytes+10)))
	}))
	t.Cleanup(server.Close)

	_, err := Fetch(t.Context(), server.URL, nil)
	require.ErrorIs(t, err, ErrResponseTooLarge)
}

func TestFetch_InvalidURL(t *testing.T) {
	for _, raw := range []string{"ftp://example.com/feed", "/relative/feed.xml", "https://"} {
		_, err := Fetch(t.Context(), raw, nil)
		require.ErrorIs(t, err, ErrInvalidURL, raw)
	}
}

func TestNewHTTPClient_BlocksCrossHostRedirect(t *testing.T) {
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleRSS))
	}))
	t.Cleanup(other.Close)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, strings.Replace(other.URL, "127.0.0.1", "localhost", 1), http.StatusFound)
	}))
	t.Cleanup(server.Close)

	_, err := Fetch(t.Context(), server.URL, nil)
	require.Error(t, err)
	require.ErrorContains(t, err, "redirect to different host blocked")
}

func TestNewHTTPClient_BlocksTooManyRedirects(t *testing.T) {
	var serverURL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, serverURL+"/again", http.StatusFound)
	}))
	serverURL = server.URL
	t.Cleanup(server.Close)

	_, err := Fetch(t.Context(), server.URL, nil)
	require.ErrorContains(t, err, "too many redirects")
}
