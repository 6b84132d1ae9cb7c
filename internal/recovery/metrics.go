package recovery

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the gauges describing the latest run. They live in a private
// registry so the one-shot process can dump them for node_exporter's
// textfile collector.
type Metrics struct {
	registry       *prometheus.Registry
	probeReachable prometheus.Gauge
	probeDuration  prometheus.Gauge
	lastRun        prometheus.Gauge
	outcome        *prometheus.GaugeVec
	stepDuration   *prometheus.GaugeVec
	stepSuccess    *prometheus.GaugeVec
}

// NewMetrics creates and registers the run metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		probeReachable: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "euserv_reboot_probe_reachable",
			Help: "1 if the target answered the connectivity probe, 0 otherwise.",
		}),
		probeDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "euserv_reboot_probe_duration_seconds",
			Help: "Wall-clock duration of the connectivity probe.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "euserv_reboot_last_run_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}),
		outcome: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "euserv_reboot_outcome",
			Help: "1 for the outcome of the last run, 0 for the others.",
		}, []string{"outcome"}),
		stepDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "euserv_reboot_step_duration_seconds",
			Help: "Duration of each control panel call in the last run.",
		}, []string{"step"}),
		stepSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "euserv_reboot_step_success",
			Help: "1 if the control panel call succeeded in the last run, 0 if it failed.",
		}, []string{"step"}),
	}

	m.registry.MustRegister(
		m.probeReachable,
		m.probeDuration,
		m.lastRun,
		m.outcome,
		m.stepDuration,
		m.stepSuccess,
	)
	return m
}

// Observe records report.
func (m *Metrics) Observe(report *Report) {
	if report.Probe != nil {
		if report.Probe.Reachable {
			m.probeReachable.Set(1)
		} else {
			m.probeReachable.Set(0)
		}
		m.probeDuration.Set(report.Probe.Duration.Seconds())
	}

	for _, o := range []Outcome{OutcomeHealthy, OutcomeRecovered, OutcomeFailed, OutcomeDryRun} {
		v := 0.0
		if o == report.Outcome {
			v = 1
		}
		m.outcome.WithLabelValues(string(o)).Set(v)
	}

	for _, s := range report.Steps {
		m.stepDuration.WithLabelValues(string(s.Step)).Set(s.Duration.Seconds())
		v := 0.0
		if s.OK {
			v = 1
		}
		m.stepSuccess.WithLabelValues(string(s.Step)).Set(v)
	}

	m.lastRun.Set(float64(report.FinishedAt.Unix()))
}

// WriteTextfile atomically writes the metrics in text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
