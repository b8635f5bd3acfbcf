package notify

import "time"

// BuildEvent announces a finished site generation.
type BuildEvent struct {
	Site          string    `json:"site"`
	Title         string    `json:"title,omitempty"`
	BaseURL       string    `json:"base_url,omitempty"`
	OutputDir     string    `json:"output_dir,omitempty"`
	Pages         int       `json:"pages"`
	Files         int       `json:"files"`
	Generator     string    `json:"generator"`
	BuildTime     time.Time `json:"build_time"`
	DurationMS    int64     `json:"duration_ms"`
	LoadErrors    int       `json:"load_errors,omitempty"`
	RenderSkipped bool      `json:"render_skipped,omitempty"`
}
