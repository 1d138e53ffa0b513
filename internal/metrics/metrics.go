// Package metrics holds the Prometheus collectors of the bot and the
// HTTP server that exposes them.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	TaskRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clubbot_task_runs_total",
		Help: "Scheduled task executions by outcome",
	}, []string{"task", "status"})

	TaskDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "clubbot_task_duration_seconds",
		Help:    "Duration of scheduled task executions",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})

	UpstreamRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clubbot_upstream_requests_total",
		Help: "Requests to the game statistics APIs",
	}, []string{"component", "status"})

	UpstreamRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "clubbot_upstream_request_duration_seconds",
		Help:    "Duration of requests to the game statistics APIs",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"component"})

	Publishes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clubbot_publishes_total",
		Help: "Message edits and sends by target and outcome",
	}, []string{"target", "status"})

	RosterSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "clubbot_roster_size",
		Help: "Club members in the last roster snapshot",
	})

	UnmatchedRosterEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "clubbot_unmatched_roster_entries",
		Help: "Roster entries without a chat member in the last reconciliation",
	})

	UnlistedMembers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "clubbot_unlisted_chat_members",
		Help: "Chat members with a club role that no roster entry matched",
	})

	DuplicateMembers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "clubbot_duplicate_chat_members",
		Help: "Chat members matched by more than one roster entry",
	})
)

// MustRegister registers every collector of the bot
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		TaskRuns,
		TaskDuration,
		UpstreamRequests,
		UpstreamRequestDuration,
		Publishes,
		RosterSize,
		UnmatchedRosterEntries,
		UnlistedMembers,
		DuplicateMembers,
	)
}

// StartServer serves /metrics on addr until ctx is done
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server stopped")
		}
	}()
}

// ObserveTaskRun records one execution of a scheduled task
func ObserveTaskRun(task string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	TaskRuns.WithLabelValues(task, status).Inc()
	TaskDuration.WithLabelValues(task).Observe(duration.Seconds())
}

// ObserveUpstreamRequest is meant to be deferred with a pointer to the
// caller's named error so that the final outcome is recorded
func ObserveUpstreamRequest(component string, start time.Time, err *error) {
	if component == "" {
		component = "unknown"
	}
	status := "success"
	if err != nil && *err != nil {
		status = "error"
	}
	UpstreamRequests.WithLabelValues(component, status).Inc()
	UpstreamRequestDuration.WithLabelValues(component).Observe(time.Since(start).Seconds())
}

// ObservePublish records the outcome of editing or sending a message
func ObservePublish(target string, status string) {
	Publishes.WithLabelValues(target, status).Inc()
}
