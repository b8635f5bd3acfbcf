package daemon

import (
	"encoding/json"
	"net/http"
	"time"

	"git.home.luguber.info/inful/gazette/internal/version"
)

// HealthStatus represents the overall health of the daemon
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheck represents a single health check
type HealthCheck struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// HealthResponse represents the complete health check response
type HealthResponse struct {
	Status    HealthStatus  `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Uptime    string        `json:"uptime"`
	Version   string        `json:"version"`
	Runs      int64         `json:"runs"`
	Failures  int64         `json:"failures"`
	LastRun   *RunSummary   `json:"last_run,omitempty"`
	Checks    []HealthCheck `json:"checks"`
}

// PerformHealthChecks executes all health checks and returns the overall status
func (d *Daemon) PerformHealthChecks() *HealthResponse {
	checks := []HealthCheck{d.checkDaemonHealth(), d.checkLastRun()}

	overall := HealthStatusHealthy
	for _, c := range checks {
		switch {
		case c.Status == HealthStatusUnhealthy:
			overall = HealthStatusUnhealthy
		case c.Status == HealthStatusDegraded && overall == HealthStatusHealthy:
			overall = HealthStatusDegraded
		}
	}

	return &HealthResponse{
		Status:    overall,
		Timestamp: time.Now(),
		Uptime:    time.Since(d.startTime).Round(time.Second).String(),
		Version:   version.Version,
		Runs:      d.runs.Load(),
		Failures:  d.failures.Load(),
		LastRun:   d.lastRun.Load(),
		Checks:    checks,
	}
}

// checkDaemonHealth verifies the daemon is in a healthy state
func (d *Daemon) checkDaemonHealth() HealthCheck {
	check := HealthCheck{Name: "daemon_status"}

	switch d.GetStatus() {
	case StatusRunning:
		check.Status = HealthStatusHealthy
		check.Message = "Daemon is running normally"
	case StatusStarting:
		check.Status = HealthStatusDegraded
		check.Message = "Daemon is still starting up"
	case StatusStopping:
		check.Status = HealthStatusDegraded
		check.Message = "Daemon is shutting down"
	default:
		check.Status = HealthStatusUnhealthy
		check.Message = "Daemon is stopped"
	}
	return check
}

// checkLastRun reports a failed last pass as degraded: the previous output is still served.
func (d *Daemon) checkLastRun() HealthCheck {
	check := HealthCheck{Name: "last_run", Status: HealthStatusHealthy}
	last := d.lastRun.Load()
	switch {
	case last == nil:
		check.Message = "No run yet"
	case last.Error != "":
		check.Status = HealthStatusDegraded
		check.Message = last.Error
	default:
		check.Message = "Last run succeeded"
	}
	return check
}

func (d *Daemon) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := d.PerformHealthChecks()
	w.Header().Set("Content-Type", "application/json")
	if resp.Status == HealthStatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}
