package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeySite       = "site"
	KeyPath       = "path"
	KeySlug       = "slug"
	KeyCount      = "count"
	KeyAttribute  = "attribute"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyURL        = "url"
	KeyJobID      = "job_id"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Site(name string) slog.Attr      { return slog.String(KeySite, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Slug(s string) slog.Attr         { return slog.String(KeySlug, s) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Attribute(a string) slog.Attr    { return slog.String(KeyAttribute, a) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func JobID(id string) slog.Attr       { return slog.String(KeyJobID, id) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
