package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wonny/screener/internal/contracts"
)

// Registry holds all Prometheus metrics of the screener
// ⭐ SSOT: 메트릭 정의는 여기서만
type Registry struct {
	registry *prometheus.Registry

	// Scoring
	ScoresComputed *prometheus.CounterVec
	MissingInputs  *prometheus.CounterVec

	// Screen runs
	ScreenDuration  *prometheus.HistogramVec
	ScreenRuns      *prometheus.CounterVec
	CompaniesScored prometheus.Gauge
	ActiveScreens   prometheus.Gauge
}

// NewRegistry creates a registry with all screener metrics registered.
// Each registry owns its own prometheus.Registry so tests never collide.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		ScoresComputed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_scores_computed_total",
				Help: "Total number of scores computed by score name",
			},
			[]string{"score"},
		),

		MissingInputs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_missing_inputs_total",
				Help: "Total number of scores skipped for a missing input",
			},
			[]string{"score", "metric"},
		),

		ScreenDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "screener_screen_duration_seconds",
				Help:    "Duration of a full screening run in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"result"},
		),

		ScreenRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_screen_runs_total",
				Help: "Total number of screening runs by result",
			},
			[]string{"result"},
		),

		CompaniesScored: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "screener_companies_scored",
				Help: "Number of companies scored in the latest run",
			},
		),

		ActiveScreens: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "screener_active_screens",
				Help: "Number of screening runs in progress",
			},
		),
	}

	r.registry.MustRegister(
		r.ScoresComputed,
		r.MissingInputs,
		r.ScreenDuration,
		r.ScreenRuns,
		r.CompaniesScored,
		r.ActiveScreens,
	)

	return r
}

// ScoreComputed records one successful score
func (r *Registry) ScoreComputed(score contracts.ScoreName) {
	r.ScoresComputed.WithLabelValues(string(score)).Inc()
}

// MissingInput records one score skipped for a missing metric
func (r *Registry) MissingInput(score contracts.ScoreName, metric string) {
	r.MissingInputs.WithLabelValues(string(score), metric).Inc()
}

// ScreenStarted marks a run as in progress
func (r *Registry) ScreenStarted() {
	r.ActiveScreens.Inc()
}

// ScreenFinished records the outcome of a run
func (r *Registry) ScreenFinished(duration time.Duration, companies int, err error) {
	r.ActiveScreens.Dec()

	result := "success"
	if err != nil {
		result = "error"
	} else {
		r.CompaniesScored.Set(float64(companies))
	}

	r.ScreenDuration.WithLabelValues(result).Observe(duration.Seconds())
	r.ScreenRuns.WithLabelValues(result).Inc()
}

// Handler returns the HTTP handler for the /metrics endpoint
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
