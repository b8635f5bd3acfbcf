package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultWarning ResultLabel = "warning"
	ResultFatal   ResultLabel = "fatal"
)

// BuildOutcomeLabel is the final status of one site generation.
type BuildOutcomeLabel string

const (
	BuildOutcomeSuccess BuildOutcomeLabel = "success"
	BuildOutcomeFailed  BuildOutcomeLabel = "failed"
	BuildOutcomeSkipped BuildOutcomeLabel = "skipped"
)

// Recorder defines observability hooks for generation runs and podcast imports.
// Implementations must tolerate being called from a nil-configured component;
// NoopRecorder is the default.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(site string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(site string, outcome BuildOutcomeLabel)
	SetPagesLoaded(site string, n int)
	SetAggregateCount(site, attribute string, n int)
	AddEpisodesImported(site string, n int)
	IncFeedFetch(success bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(string, time.Duration) {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncBuildOutcome(string, BuildOutcomeLabel)  {}
func (NoopRecorder) SetPagesLoaded(string, int)                 {}
func (NoopRecorder) SetAggregateCount(string, string, int)      {}
func (NoopRecorder) AddEpisodesImported(string, int)            {}
func (NoopRecorder) IncFeedFetch(bool)                          {}

// OrNoop returns r, or NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
