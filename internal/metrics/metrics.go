package metrics

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PlanRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trendforge_plan_runs_total",
		Help: "Total planning runs",
	})
	PlanErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trendforge_plan_errors_total",
		Help: "Total planning runs that finished with at least one channel error",
	})
	PlanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "trendforge_plan_duration_seconds",
		Help:    "Planning run duration seconds",
		Buckets: prometheus.DefBuckets,
	})
	ProviderErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trendforge_provider_errors_total",
		Help: "Trend provider failures",
	}, []string{"provider"})
	SignalsCollected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trendforge_signals_collected_total",
		Help: "Trend signals collected per source",
	}, []string{"source"})
	CalendarEntries = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "trendforge_calendar_entries",
		Help: "Entries in the latest calendar per channel",
	}, []string{"channel"})
	ProjectedRevenue = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "trendforge_projected_revenue",
		Help: "Projected revenue of the latest calendar per channel",
	}, []string{"channel"})
	FetchRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trendforge_fetch_retries_total",
		Help: "Total HTTP retry attempts",
	}, []string{"endpoint"})
	CommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trendforge_command_runs_total",
		Help: "CLI command invocations",
	}, []string{"command"})
	CommandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trendforge_command_errors_total",
		Help: "CLI command failures",
	}, []string{"command"})
)

func init() {
	prometheus.MustRegister(PlanRuns, PlanErrors, PlanDuration, ProviderErrors, SignalsCollected,
		CalendarEntries, ProjectedRevenue, FetchRetries, CommandRuns, CommandErrors)
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
func StartServer(addr string) {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, mux) }()
}

// ObservePlanDuration records a run duration
func ObservePlanDuration(start time.Time) {
	PlanDuration.Observe(time.Since(start).Seconds())
}

func IncProviderError(provider string) { ProviderErrors.WithLabelValues(provider).Inc() }

func AddSignals(source string, n int) { SignalsCollected.WithLabelValues(source).Add(float64(n)) }

// SetCalendar records the size and projected revenue of a channel's latest calendar.
func SetCalendar(channel string, entries int, revenue float64) {
	CalendarEntries.WithLabelValues(channel).Set(float64(entries))
	ProjectedRevenue.WithLabelValues(channel).Set(revenue)
}

// IncFetchRetry increments the retry counter for an endpoint.
func IncFetchRetry(endpoint string) { FetchRetries.WithLabelValues(endpoint).Inc() }

func IncCommandRun(cmd string)   { CommandRuns.WithLabelValues(cmd).Inc() }
func IncCommandError(cmd string) { CommandErrors.WithLabelValues(cmd).Inc() }
