package site

import (
	"time"

	"git.home.luguber.info/inful/gazette/internal/config"
	"git.home.luguber.info/inful/gazette/internal/notify"
	"git.home.luguber.info/inful/gazette/internal/version"
)

// Status represents the outcome of a generation run.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
	StatusCancelled Status = "cancelled"
)

// IsSuccess returns true if the run completed or had nothing to do.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess || s == StatusSkipped
}

// Report contains the outcome of one Generate call.
type Report struct {
	ID     string
	Site   string
	Status Status

	// Pages is the number of pages loaded.
	Pages int
	// LoadErrors holds files skipped under load.continue_on_error.
	LoadErrors []error
	// Files lists rendered paths relative to OutputDir.
	Files     []string
	OutputDir string
	// Manifest is the path of the written manifest.json.
	Manifest string
	// ContentHash identifies the config and page set of this run.
	ContentHash string
	// Collisions lists slugs shared by more than one page.
	Collisions []string

	RenderSkipped bool
	Unchanged     bool

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Event converts the report into the notification payload.
func (r *Report) Event(cfg *config.Config) notify.BuildEvent {
	return notify.BuildEvent{
		Site:          r.Site,
		Title:         cfg.Title,
		BaseURL:       cfg.BaseURL,
		OutputDir:     r.OutputDir,
		Pages:         r.Pages,
		Files:         len(r.Files),
		Generator:     version.Generator(),
		BuildTime:     r.StartTime,
		DurationMS:    r.Duration.Milliseconds(),
		LoadErrors:    len(r.LoadErrors),
		RenderSkipped: r.RenderSkipped,
	}
}
