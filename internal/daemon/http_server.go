package daemon

import (
	"errors"
	"net"
	"net/http"
	"time"

	promcollect "github.com/prometheus/client_golang/prometheus/collectors"

	ferrors "git.home.luguber.info/inful/gazette/internal/foundation/errors"
	"git.home.luguber.info/inful/gazette/internal/logfields"
	m "git.home.luguber.info/inful/gazette/internal/metrics"
)

// registerBaseCollectors adds Go runtime and process collectors to the
// daemon's registry. Already registered collectors are left alone.
func (d *Daemon) registerBaseCollectors() {
	_ = d.registry.Register(promcollect.NewGoCollector())
	_ = d.registry.Register(promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}))
}

// Handler returns the daemon's HTTP routes: /metrics and /healthz.
func (d *Daemon) Handler() http.Handler {
	d.registerBaseCollectors()
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.HTTPHandler(d.registry))
	mux.HandleFunc("/healthz", d.handleHealth)
	return mux
}

func (d *Daemon) startHTTP() error {
	ln, err := net.Listen("tcp", d.opts.MetricsAddr)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryDaemon, "metrics listener").
			WithContext("addr", d.opts.MetricsAddr).Build()
	}
	d.httpServer = &http.Server{
		Handler:           d.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := d.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Error("Metrics server failed", logfields.Error(err))
		}
	}()
	d.logger.Info("Serving metrics", logfields.URL("http://"+ln.Addr().String()+"/metrics"))
	return nil
}
