// Package metrics provides observability hooks for gazette generation runs.
//
// Components receive a Recorder through their options and default to
// NoopRecorder. The CLI swaps in a PrometheusRecorder when --metrics-file or
// --metrics-addr is set:
//
//	reg := prom.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	s, _ := site.New(cfg, site.WithRecorder(rec))
//
// After a run the registry is written with WriteTextfile for the
// node_exporter textfile collector, or served over HTTP by the daemon.
package metrics
