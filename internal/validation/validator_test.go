package validation

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleQuestion struct {
	Text    string   `json:"text" validate:"required"`
	Options []string `json:"options" validate:"min=2,dive,required"`
}

type sampleRequest struct {
	Title     string           `json:"title" validate:"required"`
	Email     string           `json:"email" validate:"omitempty,email"`
	Questions []sampleQuestion `json:"questions" validate:"min=1,dive"`
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	v := New()

	fields := v.Struct(&sampleRequest{
		Email:     "not-an-email",
		Questions: []sampleQuestion{{Text: "q", Options: []string{"only"}}},
	})

	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "questions[0].options")
	assert.Contains(t, fields["title"], "required")
}

func TestStructAcceptsValid(t *testing.T) {
	v := New()
	fields := v.Struct(&sampleRequest{
		Title:     "Phishing 101",
		Questions: []sampleQuestion{{Text: "q", Options: []string{"a", "b"}}},
	})
	assert.Nil(t, fields)
}

func TestDecodeJSON(t *testing.T) {
	v := New()

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"title":`))
	var dst sampleRequest
	fields := v.DecodeJSON(req, &dst)
	assert.Contains(t, fields["detail"], "invalid JSON")

	req = httptest.NewRequest("POST", "/", strings.NewReader(""))
	fields = v.DecodeJSON(req, &dst)
	assert.Equal(t, "request body is empty", fields["detail"])

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{"title":"t","questions":[{"text":"x","options":["a",""]}]}`))
	fields = v.DecodeJSON(req, &dst)
	assert.Contains(t, fields, "questions[0].options[1]")
}
