package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// ErrExists reports that a content file is already present and was left untouched.
var ErrExists = errors.New("file already exists")

// writeNew writes data to relativePath under dir.
//
// The path must stay inside dir, parent directories are created, and an
// existing file is never overwritten (ErrExists).
func writeNew(dir, relativePath string, data []byte) (string, error) {
	if dir == "" {
		return "", errors.New("pages directory is required")
	}
	if relativePath == "" {
		return "", errors.New("output path is required")
	}

	cleanRel := filepath.Clean(relativePath)
	if filepath.IsAbs(cleanRel) || strings.HasPrefix(cleanRel, "..") {
		return "", errors.New("output path must be relative to the pages directory")
	}

	fullPath := filepath.Join(dir, cleanRel)
	rel, err := filepath.Rel(dir, fullPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", errors.New("output path escapes the pages directory")
	}

	if err = os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return "", fmt.Errorf("create pages directory: %w", err)
	}

	// #nosec G304 -- fullPath is validated to stay under dir.
	file, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) || errors.Is(err, syscall.EEXIST) {
			return fullPath, fmt.Errorf("%w: %s", ErrExists, fullPath)
		}
		return "", fmt.Errorf("write content file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	if _, err := file.Write(data); err != nil {
		return "", fmt.Errorf("write content file: %w", err)
	}
	return fullPath, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
