package markdown

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
)

// SourceExt is the file extension whose bodies are converted to HTML.
const SourceExt = ".md"

// DefaultExcerptLength is the rune budget used by Excerpt when n <= 0.
const DefaultExcerptLength = 200

// Converter turns Markdown source into HTML. A zero Converter is not usable; use New.
type Converter struct {
	md goldmark.Markdown
}

// New returns a Converter with GitHub-flavoured Markdown enabled.
// Raw HTML in the source is passed through unchanged.
func New() *Converter {
	return &Converter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
}

// ToHTML renders a Markdown body.
func (c *Converter) ToHTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("markdown conversion: %w", err)
	}
	return buf.String(), nil
}

// IsSource reports whether ext names a Markdown source file.
func IsSource(ext string) bool {
	return strings.EqualFold(ext, SourceExt)
}

// Excerpt returns the visible text of an HTML fragment collapsed to single
// spaces and cut to at most n runes on a word boundary. A trailing ellipsis
// marks truncation.
func Excerpt(fragment string, n int) string {
	if n <= 0 {
		n = DefaultExcerptLength
	}

	text := plainText(fragment)
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}

	cut := n
	for cut > 0 && !unicode.IsSpace(runes[cut]) {
		cut--
	}
	if cut == 0 {
		cut = n
	}
	return strings.TrimRightFunc(string(runes[:cut]), unicode.IsSpace) + "…"
}

func plainText(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			if name, _ := z.TagName(); isInvisible(string(name)) {
				skip++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			if name, _ := z.TagName(); isInvisible(string(name)) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isInvisible(tag string) bool {
	switch tag {
	case "script", "style", "template":
		return true
	}
	return false
}
