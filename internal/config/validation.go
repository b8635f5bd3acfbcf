package config

import (
	"fmt"
	"net/url"

	"git.home.luguber.info/inful/gazette/internal/foundation/normalization"
)

var (
	siteTypes = normalization.NewNormalizer("type", map[string]SiteType{
		string(SiteTypeBlog):    SiteTypeBlog,
		string(SiteTypePodcast): SiteTypePodcast,
	})
	scorings = normalization.NewNormalizer("related.scoring", map[string]string{
		ScoringGlobal:   ScoringGlobal,
		ScoringPairwise: ScoringPairwise,
	})
)

// normalize rewrites type and related.scoring to their canonical spelling,
// so "Podcast" and " GLOBAL " are accepted. Empty values are left for
// applyDefaults.
func normalize(cfg *Config) error {
	if cfg.Type != "" {
		t, err := siteTypes.Normalize(string(cfg.Type))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		cfg.Type = t
	}
	if cfg.Related.Scoring != "" {
		s, err := scorings.Normalize(cfg.Related.Scoring)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		cfg.Related.Scoring = s
	}
	return nil
}

// Validate checks a defaulted configuration.
func Validate(cfg *Config) error {
	if err := normalize(cfg); err != nil {
		return err
	}
	switch cfg.Type {
	case SiteTypeBlog, SiteTypePodcast:
	default:
		return fmt.Errorf("%w: type must be %s or %s, got %q", ErrInvalidConfig, SiteTypeBlog, SiteTypePodcast, cfg.Type)
	}
	if cfg.Paths.Pages == "" {
		return fmt.Errorf("%w: paths.pages is required", ErrInvalidConfig)
	}
	switch cfg.Related.Scoring {
	case ScoringGlobal, ScoringPairwise:
	default:
		return fmt.Errorf("%w: related.scoring must be %s or %s, got %q", ErrInvalidConfig, ScoringGlobal, ScoringPairwise, cfg.Related.Scoring)
	}
	if cfg.Related.Limit < 0 {
		return fmt.Errorf("%w: related.limit must not be negative", ErrInvalidConfig)
	}
	if err := validateURL("base_url", cfg.BaseURL); err != nil {
		return err
	}
	if err := validateURL("notify.nats_url", cfg.Notify.NATSURL); err != nil {
		return err
	}
	return nil
}

// ValidateForImport checks the fields the podcast importer needs.
func ValidateForImport(cfg *Config) error {
	if !cfg.IsPodcast() {
		return fmt.Errorf("%w: %s is not a podcast", ErrInvalidConfig, cfg.Name)
	}
	if cfg.Podcast == nil || cfg.Podcast.RSSURL == "" {
		return fmt.Errorf("%w: podcast.rss_url is required for import", ErrInvalidConfig)
	}
	return validateURL("podcast.rss_url", cfg.Podcast.RSSURL)
}

// validateURL accepts an empty value or an absolute URL with a host.
func validateURL(field, raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %s must be an absolute URL, got %q", ErrInvalidConfig, field, raw)
	}
	return nil
}
