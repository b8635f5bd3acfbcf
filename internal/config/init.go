package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/gazette/internal/slug"
)

// FileExt is the extension of config files written by init.
const FileExt = ".yaml"

var configExts = []string{".yaml", ".yml", ".json"}

func placeholderMenu(n int) []MenuItem {
	items := make([]MenuItem, n)
	for i := range items {
		items[i] = MenuItem{Name: "name", URL: "url"}
	}
	return items
}

// BaseConfig returns the starting configuration of a blog.
func BaseConfig() Config {
	return Config{
		Type:       SiteTypeBlog,
		Paths:      PathsConfig{},
		TopMenu:    placeholderMenu(2),
		BottomMenu: placeholderMenu(2),
		Related:    RelatedConfig{Scoring: ScoringGlobal, Limit: DefaultRelatedLimit},
		Notify:     NotifyConfig{Subject: DefaultNotifySubject},
	}
}

// BasePodcastConfig returns the starting configuration of a podcast.
func BasePodcastConfig() Config {
	cfg := BaseConfig()
	cfg.Type = SiteTypePodcast
	cfg.Podcast = &PodcastConfig{Links: placeholderMenu(3)}
	return cfg
}

// InitSite writes a blog config named after name into dir and returns its path.
func InitSite(dir, name string) (string, error) {
	return write(dir, name, BaseConfig())
}

// InitPodcast writes a podcast config named after name into dir and returns its path.
func InitPodcast(dir, name string) (string, error) {
	return write(dir, name, BasePodcastConfig())
}

func write(dir, name string, cfg Config) (string, error) {
	base := slug.Make(name)
	if base == "" {
		return "", fmt.Errorf("%w: name %q has no usable characters", ErrInvalidConfig, name)
	}
	path := filepath.Join(dir, base+FileExt)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&cfg); err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create config dir %s: %w", dir, err)
	}
	// O_EXCL refuses to replace a config written earlier.
	f, err := os.OpenFile(filepath.Clean(path), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}

// List returns the config files in dir, sorted by name. Dot-files,
// directories and files without a YAML or JSON extension are ignored.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, dir)
		}
		return nil, fmt.Errorf("read config dir %s: %w", dir, err)
	}

	var out []string
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || strings.HasPrefix(name, ".") {
			continue
		}
		if !slices.Contains(configExts, strings.ToLower(filepath.Ext(name))) {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}
