// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	sessionsStarted  *prometheus.CounterVec
	answers          *prometheus.CounterVec
	quizzesCompleted *prometheus.CounterVec
	badgesAwarded    *prometheus.CounterVec
	persistFailures  *prometheus.CounterVec
	tutorLatency     *prometheus.HistogramVec
	tutorRateLimited prometheus.Counter
	httpRequests     *prometheus.CounterVec
}

// New registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cyberguardian",
			Name:      "quiz_sessions_started_total",
			Help:      "Play sessions started, by kind (quiz or review).",
		}, []string{"kind"}),
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cyberguardian",
			Name:      "quiz_answers_total",
			Help:      "Answers submitted, by outcome and question difficulty.",
		}, []string{"outcome", "difficulty"}),
		quizzesCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cyberguardian",
			Name:      "quiz_sessions_completed_total",
			Help:      "Play sessions completed, by kind.",
		}, []string{"kind"}),
		badgesAwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cyberguardian",
			Name:      "badges_awarded_total",
			Help:      "Badges awarded, by badge id.",
		}, []string{"badge"}),
		persistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cyberguardian",
			Name:      "persistence_failures_total",
			Help:      "Swallowed persistence failures, by stage.",
		}, []string{"stage"}),
		tutorLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cyberguardian",
			Name:      "ai_request_duration_seconds",
			Help:      "Latency of completion service calls, by flow and status.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 9),
		}, []string{"flow", "status"}),
		tutorRateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cyberguardian",
			Name:      "tutor_rate_limited_total",
			Help:      "Tutor requests rejected by the per-user rate limit.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cyberguardian",
			Name:      "http_requests_total",
			Help:      "HTTP requests, by route pattern and status code class.",
		}, []string{"route", "code"}),
	}

	reg.MustRegister(
		m.sessionsStarted,
		m.answers,
		m.quizzesCompleted,
		m.badgesAwarded,
		m.persistFailures,
		m.tutorLatency,
		m.tutorRateLimited,
		m.httpRequests,
	)
	return m
}

func (m *Metrics) SessionStarted(review bool) {
	if m == nil {
		return
	}
	m.sessionsStarted.WithLabelValues(kind(review)).Inc()
}

func (m *Metrics) Answer(outcome, difficulty string) {
	if m == nil {
		return
	}
	m.answers.WithLabelValues(outcome, difficulty).Inc()
}

func (m *Metrics) SessionCompleted(review bool) {
	if m == nil {
		return
	}
	m.quizzesCompleted.WithLabelValues(kind(review)).Inc()
}

func (m *Metrics) BadgeAwarded(badgeID string) {
	if m == nil {
		return
	}
	m.badgesAwarded.WithLabelValues(badgeID).Inc()
}

// PersistenceFailure counts an error that was logged and swallowed.
func (m *Metrics) PersistenceFailure(stage string) {
	if m == nil {
		return
	}
	m.persistFailures.WithLabelValues(stage).Inc()
}

// ObserveAI records one completion service call.
func (m *Metrics) ObserveAI(flow string, started time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.tutorLatency.WithLabelValues(flow, status).Observe(time.Since(started).Seconds())
}

func (m *Metrics) TutorRateLimited() {
	if m == nil {
		return
	}
	m.tutorRateLimited.Inc()
}

// HTTPRequest counts a served request. code is collapsed to its class (2xx, 4xx, ...).
func (m *Metrics) HTTPRequest(route string, code int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, codeClass(code)).Inc()
}

func kind(review bool) string {
	if review {
		return "review"
	}
	return "quiz"
}

func codeClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
