package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trivia_sessions_started_total",
			Help: "Total number of quiz sessions started",
		},
	)

	// status: completed/abandoned
	sessionsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trivia_sessions_finished_total",
			Help: "Total number of quiz sessions finished",
		},
		[]string{"status"},
	)

	// result: correct/wrong
	guesses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trivia_guesses_total",
			Help: "Total number of accepted guesses",
		},
		[]string{"result"},
	)

	// status: success/failure
	questionFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trivia_question_fetch_duration_seconds",
			Help:    "Time spent fetching questions from the question source",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)
)

func guessLabel(correct bool) string {
	if correct {
		return "correct"
	}
	return "wrong"
}

func observeFetch(started time.Time, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	questionFetchDuration.WithLabelValues(status).Observe(time.Since(started).Seconds())
}
