package config

// Default values applied by Load.
const (
	DefaultRelatedLimit  = 5
	DefaultNotifySubject = "gazette.site.built"
)

func applyDefaults(cfg *Config) {
	if cfg.Type == "" {
		cfg.Type = SiteTypeBlog
	}
	if cfg.Related.Scoring == "" {
		cfg.Related.Scoring = ScoringGlobal
	}
	if cfg.Related.Limit == 0 {
		cfg.Related.Limit = DefaultRelatedLimit
	}
	if cfg.Notify.Subject == "" {
		cfg.Notify.Subject = DefaultNotifySubject
	}
	if cfg.IsPodcast() && cfg.Podcast == nil {
		cfg.Podcast = &PodcastConfig{}
	}
}
