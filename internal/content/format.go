package content

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Format serializes front matter and body into the content file layout.
// Keys are sorted and indented by four spaces.
func Format(meta map[string]any, body string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if meta == nil {
		meta = map[string]any{}
	}
	if err := enc.Encode(meta); err != nil {
		return nil, fmt.Errorf("encode front matter: %w", err)
	}

	out := bytes.TrimRight(buf.Bytes(), "\n")
	out = append(out, "\n"+Delimiter+"\n"...)
	out = append(out, body...)
	return out, nil
}

// TemplateMeta returns the front matter of a new, empty page.
func TemplateMeta() map[string]any {
	return map[string]any{
		KeyCategories: []string{},
		KeyCreated:    DefaultCreated,
		KeyTitle:      "",
		KeyTags:       []string{},
	}
}

// TemplateBody is the body of a new page.
const TemplateBody = "Lorem Ipsum"

// Template returns the content of a new, empty page.
func Template() []byte {
	out, err := Format(TemplateMeta(), TemplateBody)
	if err != nil {
		panic(err)
	}
	return out
}
