package contact

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberguardian/platform/internal/config"
	"github.com/cyberguardian/platform/internal/validation"
)

type capture struct {
	addr string
	from string
	to   []string
	msg  string
	auth smtp.Auth
	err  error
}

func (c *capture) send(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	c.addr, c.auth, c.from, c.to, c.msg = addr, a, from, to, string(msg)
	return c.err
}

func testMailer(c *capture) *Mailer {
	m := NewMailer(config.SMTP{
		Host:         "smtp.example.com",
		Port:         587,
		Username:     "relay",
		Password:     "secret",
		FromEmail:    "noreply@cyberguardian.dev",
		SupportEmail: "support@cyberguardian.dev",
	}, zerolog.Nop())
	m.send = c.send
	return m
}

func TestSendBuildsMessage(t *testing.T) {
	c := &capture{}
	m := testMailer(c)

	err := m.Send(context.Background(), Message{
		Name:    "Ada\r\nBcc: victim@example.com",
		Email:   "ada@example.com",
		Message: "I found a typo in the phishing quiz.",
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", c.addr)
	assert.Equal(t, "noreply@cyberguardian.dev", c.from)
	assert.Equal(t, []string{"support@cyberguardian.dev"}, c.to)
	assert.NotNil(t, c.auth)
	assert.Contains(t, c.msg, "Reply-To: ada@example.com\r\n")
	assert.Contains(t, c.msg, "Subject: CyberGuardian contact from Ada  Bcc: victim@example.com\r\n")
	assert.NotContains(t, c.msg, "\r\nBcc:")
	assert.Contains(t, c.msg, "I found a typo in the phishing quiz.")
}

func TestSendNotConfigured(t *testing.T) {
	m := NewMailer(config.SMTP{Port: 587}, zerolog.Nop())
	assert.False(t, m.Configured())
	assert.ErrorIs(t, m.Send(context.Background(), Message{}), ErrNotConfigured)
}

func TestSubmitHandler(t *testing.T) {
	c := &capture{}
	h := NewHTTPHandlers(testMailer(c), validation.New(), zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Submit(rec, httptest.NewRequest(http.MethodPost, "/v1/contact",
		strings.NewReader(`{"name":"Ada","email":"ada@example.com","message":"Hello"}`)))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = httptest.NewRecorder()
	h.Submit(rec, httptest.NewRequest(http.MethodPost, "/v1/contact",
		strings.NewReader(`{"name":"Ada","email":"nope","message":""}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c.err = errors.New("connection refused")
	rec = httptest.NewRecorder()
	h.Submit(rec, httptest.NewRequest(http.MethodPost, "/v1/contact",
		strings.NewReader(`{"name":"Ada","email":"ada@example.com","message":"Hello"}`)))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	h = NewHTTPHandlers(NewMailer(config.SMTP{}, zerolog.Nop()), validation.New(), zerolog.Nop())
	rec = httptest.NewRecorder()
	h.Submit(rec, httptest.NewRequest(http.MethodPost, "/v1/contact",
		strings.NewReader(`{"name":"Ada","email":"ada@example.com","message":"Hello"}`)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
