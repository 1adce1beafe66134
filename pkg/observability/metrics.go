package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics must be global for registration
var (
	// EvaluationsTotal tracks the total number of formula evaluations
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zmanim_evaluations_total",
			Help: "Total number of formula evaluations",
		},
		[]string{"formula", "status"}, // status: success, failure, error
	)

	// EvaluationDuration measures formula evaluation duration in seconds
	EvaluationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zmanim_evaluation_duration_seconds",
			Help:    "Formula evaluation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to ~400ms
		},
		[]string{"formula"},
	)

	// DayEvaluationsTotal counts whole-day evaluation runs
	DayEvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zmanim_day_evaluations_total",
			Help: "Total number of whole-day evaluation runs",
		},
		[]string{"status"}, // status: success, partial, error
	)

	// DayEvaluationDuration measures whole-day evaluation duration
	DayEvaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "zmanim_day_evaluation_duration_seconds",
			Help:    "Whole-day evaluation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10), // 1ms to ~1s
		},
	)

	// SolverFailures counts solar solver non-convergence by formula
	SolverFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zmanim_solver_failures_total",
			Help: "Formulas whose solar position could not be reached on the day",
		},
		[]string{"formula"},
	)

	// FormulasHidden counts formulas filtered out by event visibility
	FormulasHidden = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zmanim_formulas_hidden_total",
			Help: "Formulas hidden by event tag filtering",
		},
		[]string{"formula"},
	)

	// FormulasLoaded tracks the number of formulas in the store
	FormulasLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "zmanim_formulas_loaded",
			Help: "Number of formulas currently loaded",
		},
	)

	// ParseErrorsTotal counts formula parse failures at load time
	ParseErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zmanim_parse_errors_total",
			Help: "Total number of formula parse failures",
		},
		[]string{"formula"},
	)
)

// RecordEvaluation records one formula evaluation
func RecordEvaluation(formula, status string, duration float64) {
	EvaluationsTotal.WithLabelValues(formula, status).Inc()
	EvaluationDuration.WithLabelValues(formula).Observe(duration)
}

// RecordDayEvaluation records a whole-day evaluation run
func RecordDayEvaluation(status string, duration float64) {
	DayEvaluationsTotal.WithLabelValues(status).Inc()
	DayEvaluationDuration.Observe(duration)
}

// RecordSolverFailure records a solar solver non-convergence
func RecordSolverFailure(formula string) {
	SolverFailures.WithLabelValues(formula).Inc()
}

// RecordFormulaHidden records a formula filtered out by event visibility
func RecordFormulaHidden(formula string) {
	FormulasHidden.WithLabelValues(formula).Inc()
}

// RecordParseError records a formula parse failure
func RecordParseError(formula string) {
	ParseErrorsTotal.WithLabelValues(formula).Inc()
}
