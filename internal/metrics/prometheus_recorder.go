package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "gazette"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration    *prom.HistogramVec
	buildDuration    *prom.HistogramVec
	stageResults     *prom.CounterVec
	buildOutcome     *prom.CounterVec
	pagesLoaded      *prom.GaugeVec
	aggregateCount   *prom.GaugeVec
	episodesImported *prom.CounterVec
	feedFetches      *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual generation stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total generation duration per site",
			Buckets:   prom.DefBuckets,
		}, []string{"site"}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Site generation outcomes by final status",
		}, []string{"site", "outcome"}),
		pagesLoaded: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "pages_loaded",
			Help:      "Pages loaded in the last generation run",
		}, []string{"site"}),
		aggregateCount: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "aggregate_values",
			Help:      "Distinct authors, categories and tags in the last generation run",
		}, []string{"site", "attribute"}),
		episodesImported: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "episodes_imported_total",
			Help:      "Podcast episodes written as new content files",
		}, []string{"site"}),
		feedFetches: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "feed_fetches_total",
			Help:      "Podcast feed fetches by result",
		}, []string{"result"}),
	}
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome,
		pr.pagesLoaded, pr.aggregateCount, pr.episodesImported, pr.feedFetches)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(site string, d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.WithLabelValues(site).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(site string, outcome BuildOutcomeLabel) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(site, string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetPagesLoaded(site string, n int) {
	if p == nil || p.pagesLoaded == nil {
		return
	}
	p.pagesLoaded.WithLabelValues(site).Set(float64(n))
}

func (p *PrometheusRecorder) SetAggregateCount(site, attribute string, n int) {
	if p == nil || p.aggregateCount == nil {
		return
	}
	p.aggregateCount.WithLabelValues(site, attribute).Set(float64(n))
}

func (p *PrometheusRecorder) AddEpisodesImported(site string, n int) {
	if p == nil || p.episodesImported == nil {
		return
	}
	p.episodesImported.WithLabelValues(site).Add(float64(n))
}

func (p *PrometheusRecorder) IncFeedFetch(success bool) {
	if p == nil || p.feedFetches == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.feedFetches.WithLabelValues(res).Inc()
}
