// Package validation checks request payloads with go-playground/validator and renders
// English, JSON-named field messages.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const maxBodyBytes = 1 << 20

// Validator wraps a configured validator instance and its English translator.
type Validator struct {
	validate *govalidator.Validate
	trans    ut.Translator
}

// New builds a validator that reports JSON field names.
func New() *Validator {
	v := govalidator.New(govalidator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	return &Validator{validate: v, trans: trans}
}

// Struct validates dst and returns a field -> message map, or nil when valid.
func (v *Validator) Struct(dst any) map[string]string {
	err := v.validate.Struct(dst)
	if err == nil {
		return nil
	}
	return v.translate(err)
}

func (v *Validator) translate(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fieldPath(fe.Namespace())] = fe.Translate(v.trans)
		}
		return fields
	}

	fields["detail"] = err.Error()
	return fields
}

// fieldPath drops the root struct name: "createRequest.questions[0].text" -> "questions[0].text".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// DecodeJSON reads a JSON body into dst and validates it.
// It returns nil on success or a field map describing what went wrong.
func (v *Validator) DecodeJSON(r *http.Request, dst any) map[string]string {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]string{"detail": "request body is empty"}
		}
		return map[string]string{"detail": fmt.Sprintf("invalid JSON: %v", err)}
	}
	return v.Struct(dst)
}
