// Package render turns a ranked corpus into HTML and XML files.
//
// Templates are embedded; a site may override any of them by placing a file
// with the same name in its paths.templates directory.
package render

import (
	"bytes"
	"embed"
	"encoding/xml"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	texttemplate "text/template"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/gazette/internal/config"
	"git.home.luguber.info/inful/gazette/internal/content"
)

// Template names.
const (
	Partials         = "partials.html"
	Frontpage        = "frontpage.html"
	PodcastFrontpage = "podcast_frontpage.html"
	PageTemplate     = "page.html"
	RSS              = "rss.xml"
	Sitemap          = "sitemap.xml"
)

// Output file names.
const (
	IndexFile   = "index.html"
	RSSFile     = "rss.xml"
	SitemapFile = "sitemap.xml"
)

// ErrEmptySlug indicates a page whose title produced no slug; it would overwrite the front page.
var ErrEmptySlug = errors.New("page slug is empty")

//go:embed templates/*
var embedded embed.FS

// Site is the data shared by every template.
type Site struct {
	Config     *config.Config
	Generator  string
	BuildTime  time.Time
	Pages      []*content.Page
	Authors    []string
	Categories []string
	Tags       []string
}

// IsPodcast reports whether the podcast front page and feed extensions apply.
func (s *Site) IsPodcast() bool {
	return s.Config != nil && s.Config.IsPodcast()
}

// View is the data of one template execution. Page is nil for site-wide files.
type View struct {
	Site *Site
	Page *content.Page
}

// Renderer executes the site templates.
type Renderer struct {
	html *htmltemplate.Template
	xml  *texttemplate.Template
}

// New parses the templates. A non-empty overrideDir supplies replacements
// for any of the embedded files.
func New(overrideDir string) (*Renderer, error) {
	base, err := fs.Sub(embedded, "templates")
	if err != nil {
		return nil, fmt.Errorf("embedded templates: %w", err)
	}
	var fsys fs.FS = base
	if overrideDir != "" {
		info, statErr := os.Stat(overrideDir)
		if statErr != nil || !info.IsDir() {
			return nil, fmt.Errorf("templates path %s is not a directory", overrideDir)
		}
		fsys = overlayFS{primary: os.DirFS(overrideDir), fallback: base}
	}

	htmlSet, err := htmltemplate.New("site").
		Funcs(htmlFuncs()).
		Option("missingkey=zero").
		ParseFS(fsys, Partials, Frontpage, PodcastFrontpage, PageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse html templates: %w", err)
	}
	xmlSet, err := texttemplate.New("feeds").
		Funcs(texttemplate.FuncMap(sharedFuncs())).
		Funcs(texttemplate.FuncMap{"xml": escapeXML}).
		Option("missingkey=zero").
		ParseFS(fsys, RSS, Sitemap)
	if err != nil {
		return nil, fmt.Errorf("parse xml templates: %w", err)
	}
	return &Renderer{html: htmlSet, xml: xmlSet}, nil
}

// Frontpage renders the blog or podcast front page.
func (r *Renderer) Frontpage(w io.Writer, s *Site) error {
	name := Frontpage
	if s.IsPodcast() {
		name = PodcastFrontpage
	}
	return r.exec(w, name, View{Site: s})
}

// Page renders one content page.
func (r *Renderer) Page(w io.Writer, s *Site, p *content.Page) error {
	return r.exec(w, PageTemplate, View{Site: s, Page: p})
}

// RSS renders the site feed.
func (r *Renderer) RSS(w io.Writer, s *Site) error {
	return r.exec(w, RSS, View{Site: s})
}

// Sitemap renders the sitemap.
func (r *Renderer) Sitemap(w io.Writer, s *Site) error {
	return r.exec(w, Sitemap, View{Site: s})
}

func (r *Renderer) exec(w io.Writer, name string, v View) error {
	var err error
	if strings.HasSuffix(name, ".xml") {
		err = r.xml.ExecuteTemplate(w, name, v)
	} else {
		err = r.html.ExecuteTemplate(w, name, v)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}

// WriteSite renders every output file of s into outputDir and returns the
// written paths relative to outputDir. Existing files are replaced.
func (r *Renderer) WriteSite(outputDir string, s *Site) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", outputDir, err)
	}

	var written []string
	emit := func(rel string, fn func(io.Writer) error) error {
		var buf bytes.Buffer
		if err := fn(&buf); err != nil {
			return err
		}
		full := filepath.Join(outputDir, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return fmt.Errorf("create output dir for %s: %w", rel, err)
		}
		// #nosec G306 -- generated site files are meant to be served.
		if err := os.WriteFile(full, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", full, err)
		}
		written = append(written, rel)
		return nil
	}

	if err := emit(RSSFile, func(w io.Writer) error { return r.RSS(w, s) }); err != nil {
		return written, err
	}
	if err := emit(SitemapFile, func(w io.Writer) error { return r.Sitemap(w, s) }); err != nil {
		return written, err
	}
	if err := emit(IndexFile, func(w io.Writer) error { return r.Frontpage(w, s) }); err != nil {
		return written, err
	}
	for _, p := range s.Pages {
		if p.Slug == "" {
			return written, fmt.Errorf("%w: %s (title %q)", ErrEmptySlug, p.Path, p.Title)
		}
		if err := emit(filepath.Join(p.Slug, IndexFile), func(w io.Writer) error { return r.Page(w, s, p) }); err != nil {
			return written, err
		}
	}
	return written, nil
}

// overlayFS serves files from primary when present, else from fallback.
type overlayFS struct {
	primary  fs.FS
	fallback fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(name)
	if err == nil {
		return f, nil
	}
	return o.fallback.Open(name)
}

func sharedFuncs() map[string]any {
	titler := cases.Title(language.Und)
	return map[string]any{
		"rssDate": func(t time.Time) string { return t.Format(time.RFC1123Z) },
		"isoDate": func(t time.Time) string { return t.Format(content.DateLayout) },
		"title":   func(s string) string { return titler.String(s) },
		"absURL":  absURL,
		"meta":    meta,
	}
}

func htmlFuncs() htmltemplate.FuncMap {
	funcs := htmltemplate.FuncMap(sharedFuncs())
	// #nosec G203 -- page bodies are authored by the site owner.
	funcs["safeHTML"] = func(s string) htmltemplate.HTML { return htmltemplate.HTML(s) }
	return funcs
}

// absURL joins base and p with exactly one slash. An empty base yields a root-relative URL.
func absURL(base, p string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(p, "/")
}

// meta returns a front matter value as a string, or "" when unset.
func meta(p *content.Page, key string) string {
	if p == nil {
		return ""
	}
	v, ok := p.Meta[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func escapeXML(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
