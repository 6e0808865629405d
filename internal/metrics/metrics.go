// Package metrics exports run progress as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talgya/psi-verify/internal/check"
	"github.com/talgya/psi-verify/internal/engine"
)

// Metrics holds the collectors of one registry.
type Metrics struct {
	registry *prometheus.Registry

	Checks        *prometheus.CounterVec
	Assertions    prometheus.Counter
	Suites        *prometheus.CounterVec
	SuiteDuration *prometheus.HistogramVec
	Runs          *prometheus.CounterVec
	LastRunTime   prometheus.Gauge
	LastSeed      prometheus.Gauge
}

// New creates the collectors and registers them on a fresh registry
// together with the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Checks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "psiverify",
				Name:      "checks_total",
				Help:      "Checks executed, by book and outcome.",
			},
			[]string{"book", "outcome"},
		),
		Assertions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "psiverify",
			Name:      "assertions_total",
			Help:      "Assertions evaluated across all checks.",
		}),
		Suites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "psiverify",
				Name:      "suites_total",
				Help:      "Suites finished, by book and verdict.",
			},
			[]string{"book", "verdict"},
		),
		SuiteDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "psiverify",
				Name:      "suite_duration_seconds",
				Help:      "Wall time of one suite.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"book"},
		),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "psiverify",
				Name:      "runs_total",
				Help:      "Completed runs, by exit code.",
			},
			[]string{"exit_code"},
		),
		LastRunTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "psiverify",
			Name:      "last_run_timestamp_seconds",
			Help:      "Finish time of the last completed run.",
		}),
		LastSeed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "psiverify",
			Name:      "last_run_seed",
			Help:      "Seed of the last completed run.",
		}),
	}
	m.registry.MustRegister(
		m.Checks, m.Assertions, m.Suites, m.SuiteDuration, m.Runs, m.LastRunTime, m.LastSeed,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns runner hooks that feed the collectors.
func (m *Metrics) Hooks() engine.Hooks {
	books := make(map[string]string)
	return engine.Hooks{
		OnSuiteStart: func(s *check.Suite) {
			books[s.ID] = s.Book
		},
		OnCheck: func(suiteID string, res check.CheckResult) {
			m.Checks.WithLabelValues(books[suiteID], string(res.Outcome)).Inc()
			m.Assertions.Add(float64(res.Assertions))
		},
		OnSuiteDone: func(res check.SuiteResult) {
			m.Suites.WithLabelValues(res.Book, string(res.Verdict)).Inc()
			if res.Verdict != check.VerdictSkipped {
				m.SuiteDuration.WithLabelValues(res.Book).Observe(res.Duration.Seconds())
			}
			delete(books, res.ID)
		},
		OnRunDone: func(rep *engine.Report) {
			m.ObserveRun(rep)
		},
	}
}

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(rep *engine.Report) {
	m.Runs.WithLabelValues(exitLabel(rep.ExitCode())).Inc()
	m.LastRunTime.Set(float64(rep.FinishedAt.UnixNano()) / 1e9)
	m.LastSeed.Set(float64(rep.Seed))
}

func exitLabel(code int) string {
	switch code {
	case engine.ExitPass:
		return "0"
	case engine.ExitFail:
		return "1"
	case engine.ExitViolation:
		return "2"
	case engine.ExitCancelled:
		return "3"
	}
	return "other"
}
