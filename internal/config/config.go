package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SiteType selects the front page variant and enables podcast import.
type SiteType string

const (
	SiteTypeBlog    SiteType = "blog"
	SiteTypePodcast SiteType = "podcast"
)

// Related scoring names accepted in related.scoring.
const (
	ScoringGlobal   = "global"
	ScoringPairwise = "pairwise"
)

// Config is one site's configuration file.
type Config struct {
	// Name is the config file name without extension. It labels logs and metrics.
	Name string `yaml:"-"`
	// Path is the file the configuration was loaded from.
	Path string `yaml:"-"`

	BaseURL       string         `yaml:"base_url"`
	Copyright     string         `yaml:"copyright"`
	DefaultAuthor string         `yaml:"default_author"`
	Description   string         `yaml:"description"`
	Title         string         `yaml:"title"`
	Type          SiteType       `yaml:"type"`
	Paths         PathsConfig    `yaml:"paths"`
	TopMenu       []MenuItem     `yaml:"top_menu"`
	BottomMenu    []MenuItem     `yaml:"bottom_menu"`
	Podcast       *PodcastConfig `yaml:"podcast,omitempty"`
	Related       RelatedConfig  `yaml:"related"`
	Loading       LoadingConfig  `yaml:"load"`
	Notify        NotifyConfig   `yaml:"notify"`
}

// PathsConfig locates content, output and optional template overrides.
type PathsConfig struct {
	// Output is the render target. Empty skips rendering.
	Output    string `yaml:"output"`
	Pages     string `yaml:"pages"`
	Templates string `yaml:"templates,omitempty"`
}

// MenuItem is a navigation link.
type MenuItem struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// PodcastConfig describes the show of a podcast site.
type PodcastConfig struct {
	Title       string     `yaml:"title"`
	Cover       string     `yaml:"cover"`
	Description string     `yaml:"description"`
	Links       []MenuItem `yaml:"links"`
	RSSURL      string     `yaml:"rss_url"`
}

// RelatedConfig tunes the related-pages ranking.
type RelatedConfig struct {
	Scoring string `yaml:"scoring"`
	Limit   int    `yaml:"limit"`
}

// LoadingConfig controls corpus loading.
type LoadingConfig struct {
	// ContinueOnError skips bad content files instead of aborting the site.
	ContinueOnError bool `yaml:"continue_on_error"`
}

// NotifyConfig publishes a build event after each successful generation.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject"`
}

// IsPodcast reports whether the site is a podcast.
func (c *Config) IsPodcast() bool {
	return c.Type == SiteTypePodcast
}

// Load reads, expands, defaults and validates the configuration file at configPath.
// ${VAR} references are expanded after .env files have been loaded.
func Load(configPath string) (*Config, error) {
	loadEnvFile()

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, configPath, err)
	}
	cfg.Path = configPath
	cfg.Name = nameFromPath(configPath)

	if err := normalize(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	applyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return &cfg, nil
}

func nameFromPath(p string) string {
	base := filepath.Base(p)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
