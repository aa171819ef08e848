package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersIncrement(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.SessionStarted(false)
	m.SessionStarted(true)
	m.SessionStarted(true)
	m.BadgeAwarded("phishing-master")
	m.PersistenceFailure("result")
	m.HTTPRequest("GET /v1/quizzes", 404)
	m.ObserveAI("tutor", time.Now(), errors.New("timeout"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsStarted.WithLabelValues("quiz")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.sessionsStarted.WithLabelValues("review")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.badgesAwarded.WithLabelValues("phishing-master")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.persistFailures.WithLabelValues("result")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET /v1/quizzes", "4xx")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.tutorLatency))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SessionStarted(false)
		m.Answer("correct", "Easy")
		m.SessionCompleted(true)
		m.BadgeAwarded("x")
		m.PersistenceFailure("badge")
		m.ObserveAI("feedback", time.Now(), nil)
		m.TutorRateLimited()
		m.HTTPRequest("/", 200)
	})
}
