package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inful/mdfp"

	cerrors "git.home.luguber.info/inful/gazette/internal/content/errors"
	"git.home.luguber.info/inful/gazette/internal/markdown"
	"git.home.luguber.info/inful/gazette/internal/slug"
)

// Delimiter separates front matter from the body.
const Delimiter = "ʕ •ᴥ•ʔ"

// ParseOptions controls body conversion.
type ParseOptions struct {
	// Markdown converts .md bodies. Nil uses markdown.New().
	Markdown *markdown.Converter
	// ExcerptLength bounds Page.Summary in runes. Zero uses markdown.DefaultExcerptLength.
	ExcerptLength int
}

// Split cuts raw content at the first Delimiter. Everything after the
// delimiter, including the leading newline, is the body.
func Split(raw []byte) (frontmatter []byte, body []byte, err error) {
	before, after, found := bytes.Cut(raw, []byte(Delimiter))
	if !found {
		return nil, nil, fmt.Errorf("%w: delimiter %q not found", cerrors.ErrMalformedContent, Delimiter)
	}
	return before, after, nil
}

// ParseJSON decodes front matter into a map. The front matter must be a JSON object.
func ParseJSON(frontmatter []byte) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal(frontmatter, &fields); err != nil {
		return nil, fmt.Errorf("%w: front matter is not a JSON object: %w", cerrors.ErrMalformedContent, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: front matter is null", cerrors.ErrMalformedContent)
	}
	return fields, nil
}

// ParseFile reads and parses the content file at path.
func ParseFile(path string, opts ParseOptions) (*Page, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", cerrors.ErrPathNotFound, path)
		}
		return nil, fmt.Errorf("read content file %s: %w", path, err)
	}
	return Parse(path, raw, opts)
}

// Parse builds a Page from raw content. path supplies the extension and is
// echoed in errors.
func Parse(path string, raw []byte, opts ParseOptions) (*Page, error) {
	page, err := parse(path, raw, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return page, nil
}

func parse(path string, raw []byte, opts ParseOptions) (*Page, error) {
	fm, body, err := Split(raw)
	if err != nil {
		return nil, err
	}
	meta, err := ParseJSON(fm)
	if err != nil {
		return nil, err
	}

	title, err := requiredString(meta, KeyTitle)
	if err != nil {
		return nil, err
	}
	created, err := dateField(meta, KeyCreated)
	if err != nil {
		return nil, err
	}
	// There is no updated key; created is read a second time.
	updated, err := dateField(meta, KeyCreated)
	if err != nil {
		return nil, err
	}
	categories, err := stringList(meta, KeyCategories)
	if err != nil {
		return nil, err
	}
	tags, err := stringList(meta, KeyTags)
	if err != nil {
		return nil, err
	}
	author, err := optionalString(meta, KeyAuthor)
	if err != nil {
		return nil, err
	}

	ext := filepath.Ext(path)
	rendered := string(body)
	if markdown.IsSource(ext) {
		conv := opts.Markdown
		if conv == nil {
			conv = markdown.New()
		}
		if rendered, err = conv.ToHTML(string(body)); err != nil {
			return nil, err
		}
	}

	return &Page{
		ID:          uuid.New(),
		Path:        path,
		Ext:         ext,
		Meta:        meta,
		Categories:  categories,
		Tags:        tags,
		Created:     created,
		Updated:     updated,
		Author:      author,
		Title:       title,
		Slug:        slug.Make(title),
		Body:        rendered,
		Summary:     markdown.Excerpt(rendered, opts.ExcerptLength),
		Fingerprint: mdfp.CalculateFingerprintFromParts(strings.TrimSpace(string(fm)), string(body)),
		Related:     []RelatedEntry{},
	}, nil
}

func requiredString(meta map[string]any, key string) (string, error) {
	v, ok := meta[key]
	if !ok || v == nil {
		return "", fmt.Errorf("%w: %s", cerrors.ErrMissingField, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: field %s must be a string, got %T", cerrors.ErrMalformedContent, key, v)
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: %s is empty", cerrors.ErrMissingField, key)
	}
	return s, nil
}

func optionalString(meta map[string]any, key string) (*string, error) {
	v, ok := meta[key]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: field %s must be a string, got %T", cerrors.ErrMalformedContent, key, v)
	}
	return &s, nil
}

func dateField(meta map[string]any, key string) (time.Time, error) {
	raw := DefaultCreated
	if v, ok := meta[key]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return time.Time{}, fmt.Errorf("%w: %s must be a YYYY-MM-DD string, got %T", cerrors.ErrInvalidDate, key, v)
		}
		raw = s
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s %q: expected YYYY-MM-DD", cerrors.ErrInvalidDate, key, raw)
	}
	return t, nil
}

func stringList(meta map[string]any, key string) ([]string, error) {
	v, ok := meta[key]
	if !ok || v == nil {
		return []string{}, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: field %s must be a list, got %T", cerrors.ErrMalformedContent, key, v)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
			continue
		}
		out = append(out, fmt.Sprint(item))
	}
	return out, nil
}
