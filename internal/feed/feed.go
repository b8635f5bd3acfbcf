// Package feed fetches a podcast RSS feed and maps it onto Podcast and Episode records.
package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

// Podcast is the channel of a podcast feed.
type Podcast struct {
	URL           string
	Title         string
	Description   string
	Link          string
	Language      string
	Copyright     string
	Generator     string
	Image         string
	Published     *time.Time
	LastBuildDate *time.Time

	ITunesTitle      string
	ITunesAuthor     string
	ITunesSubtitle   string
	ITunesImage      string
	ITunesCategories []string
	ITunesExplicit   string
	ITunesType       string
	ITunesKeywords   string
	ITunesComplete   string
	ITunesBlock      string
	ITunesNewFeedURL string
	ITunesOwner      *Owner

	Episodes []Episode
}

// Owner is the itunes:owner of a podcast.
type Owner struct {
	Name  string
	Email string
}

// Enclosure is the media file of an episode.
type Enclosure struct {
	URL    string
	Length string
	Type   string
}

// Episode is one feed item.
type Episode struct {
	Title       string
	Description string
	Link        string
	GUID        string
	// Published is nil when the item has no parseable pubDate.
	Published  *time.Time
	Enclosure  *Enclosure
	Categories []string

	ITunesTitle       string
	ITunesDuration    string
	ITunesEpisode     *int
	ITunesSeason      *int
	ITunesEpisodeType string
	ITunesExplicit    string
	ITunesImage       string
	ITunesBlock       string
}

// Fetch downloads and parses the feed at feedURL. A nil client uses NewHTTPClient.
// Failures are not retried.
func Fetch(ctx context.Context, feedURL string, client *http.Client) (*Podcast, error) {
	if client == nil {
		client = NewHTTPClient()
	}
	if err := validateURL(feedURL); err != nil {
		return nil, err
	}

	body, err := fetchBody(ctx, feedURL, client)
	if err != nil {
		return nil, err
	}
	p, err := Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", feedURL, err)
	}
	p.URL = feedURL
	return p, nil
}

// Parse reads an RSS document.
func Parse(r io.Reader) (*Podcast, error) {
	f, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return fromFeed(f), nil
}

func fromFeed(f *gofeed.Feed) *Podcast {
	p := &Podcast{
		Title:         f.Title,
		Description:   f.Description,
		Link:          f.Link,
		Language:      f.Language,
		Copyright:     f.Copyright,
		Generator:     f.Generator,
		Published:     f.PublishedParsed,
		LastBuildDate: f.UpdatedParsed,
		ITunesTitle:   extValue(f.Extensions, "itunes", "title"),
	}
	if f.Image != nil {
		p.Image = f.Image.URL
	}
	if it := f.ITunesExt; it != nil {
		p.ITunesAuthor = it.Author
		p.ITunesSubtitle = it.Subtitle
		p.ITunesImage = it.Image
		p.ITunesExplicit = it.Explicit
		p.ITunesType = it.Type
		p.ITunesKeywords = it.Keywords
		p.ITunesComplete = it.Complete
		p.ITunesBlock = it.Block
		p.ITunesNewFeedURL = it.NewFeedURL
		p.ITunesCategories = categoryTexts(it.Categories)
		if it.Owner != nil {
			p.ITunesOwner = &Owner{Name: it.Owner.Name, Email: it.Owner.Email}
		}
	}

	p.Episodes = make([]Episode, 0, len(f.Items))
	for _, item := range f.Items {
		p.Episodes = append(p.Episodes, fromItem(item))
	}
	return p
}

func fromItem(item *gofeed.Item) Episode {
	e := Episode{
		Title:       item.Title,
		Description: item.Description,
		Link:        item.Link,
		GUID:        item.GUID,
		Published:   item.PublishedParsed,
		Categories:  item.Categories,
		ITunesTitle: extValue(item.Extensions, "itunes", "title"),
	}
	if len(item.Enclosures) > 0 && item.Enclosures[0] != nil {
		enc := item.Enclosures[0]
		e.Enclosure = &Enclosure{URL: enc.URL, Length: enc.Length, Type: enc.Type}
	}
	if it := item.ITunesExt; it != nil {
		e.ITunesDuration = it.Duration
		e.ITunesEpisode = atoiPtr(it.Episode)
		e.ITunesSeason = atoiPtr(it.Season)
		e.ITunesEpisodeType = it.EpisodeType
		e.ITunesExplicit = it.Explicit
		e.ITunesImage = it.Image
		e.ITunesBlock = it.Block
	}
	return e
}

// categoryTexts flattens nested itunes:category elements depth first.
func categoryTexts(cats []*ext.ITunesCategory) []string {
	var out []string
	for _, c := range cats {
		for ; c != nil; c = c.Subcategory {
			out = append(out, c.Text)
		}
	}
	return out
}

func atoiPtr(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}

func extValue(exts ext.Extensions, ns, name string) string {
	if exts == nil {
		return ""
	}
	values := exts[ns][name]
	if len(values) == 0 {
		return ""
	}
	return values[0].Value
}
