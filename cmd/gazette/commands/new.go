package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/gazette/internal/content"
	ferrors "git.home.luguber.info/inful/gazette/internal/foundation/errors"
	"git.home.luguber.info/inful/gazette/internal/slug"
)

// NewCmd implements the 'new' command.
type NewCmd struct {
	Pages string `arg:"" help:"Pages directory" type:"path"`
	Title string `arg:"" help:"Page title"`
}

// now is replaced in tests.
var now = time.Now

func (n *NewCmd) Run(_ *Global, _ *CLI) error {
	path, err := writePage(n.Pages, n.Title, now())
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stdout, "Wrote %s\n", path)
	return nil
}

// writePage writes a page named after the slug of title. Existing files are
// never overwritten.
func writePage(dir, title string, created time.Time) (string, error) {
	s := slug.Make(title)
	if s == "" {
		return "", ferrors.ValidationError("title has no usable characters").
			WithContext("title", title).Build()
	}

	meta := content.TemplateMeta()
	meta[content.KeyTitle] = title
	meta[content.KeyCreated] = created.Format(content.DateLayout)
	data, err := content.Format(meta, content.TemplateBody)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryInternal, "format page").Build()
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "create pages directory").
			WithContext("path", dir).Build()
	}
	path := filepath.Join(dir, s+".md")
	// #nosec G304 -- path is the pages directory joined with a slug.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", ferrors.NewError(ferrors.CategoryAlreadyExists, "page already exists").
				WithContext("path", path).Build()
		}
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "create page").
			WithContext("path", path).Build()
	}
	defer func() { _ = f.Close() }()
	if _, err := f.Write(data); err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "write page").
			WithContext("path", path).Build()
	}
	return path, nil
}
