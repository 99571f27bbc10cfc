package handlers

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/r2r72/newsletter/internal/service/subscription"
)

var (
	ErrMalformedForm = errors.New("malformed form body")
	ErrMissingField  = errors.New("missing form field")
	ErrFormTooLarge  = errors.New("form body too large")
)

// SubscribeForm is the body of POST /subscriptions.
type SubscribeForm struct {
	Email string
	Name  string
}

// decodeSubscribeForm reads an application/x-www-form-urlencoded body. Both
// keys must be present; their values may be anything, including empty.
func decodeSubscribeForm(w http.ResponseWriter, r *http.Request, maxBytes int64) (SubscribeForm, error) {
	var form SubscribeForm

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/x-www-form-urlencoded" {
		return form, fmt.Errorf("%w: content type must be application/x-www-form-urlencoded", ErrMalformedForm)
	}

	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := r.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return form, fmt.Errorf("%w: limit is %d bytes", ErrFormTooLarge, tooLarge.Limit)
		}
		return form, fmt.Errorf("%w: %v", ErrMalformedForm, err)
	}

	email, ok := r.PostForm["email"]
	if !ok {
		return form, fmt.Errorf("%w: email", ErrMissingField)
	}
	name, ok := r.PostForm["name"]
	if !ok {
		return form, fmt.Errorf("%w: name", ErrMissingField)
	}

	form.Email = sanitizeField(email[0])
	form.Name = sanitizeField(name[0])
	return form, nil
}

// sanitizeField replaces invalid UTF-8 sequences and NUL bytes with U+FFFD so
// every sink, including PostgreSQL text columns, accepts the value.
func sanitizeField(v string) string {
	v = strings.ToValidUTF8(v, "\uFFFD")
	return strings.ReplaceAll(v, "\x00", "\uFFFD")
}

// handleSubscribe accepts a newsletter sign-up.
// Body: email=...&name=... (form-encoded).
// Success (200): empty body.
// Errors: 400 (bad or incomplete form), 413 (body too large), 500.
func handleSubscribe(svc *subscription.Service, maxFormBytes int64) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		form, err := decodeSubscribeForm(w, r, maxFormBytes)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, ErrFormTooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			writeError(w, r, status, err.Error())
			return nil
		}

		if _, err := svc.Subscribe(r.Context(), subscription.SubscribeInput{
			Email: form.Email,
			Name:  form.Name,
		}); err != nil {
			return err
		}

		w.WriteHeader(http.StatusOK)
		return nil
	}
}
