package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver(t *testing.T) {
	r := NewResolver()
	cases := []struct {
		hint      string
		allowAuto bool
		want      string
		ok        bool
	}{
		{"ru", false, "ru", true},
		{"Russian", false, "ru", true},
		{"русский", false, "ru", true},
		{" English ", false, "en", true},
		{"pt-BR", false, "pt", true},
		{"Română", false, "ro", true},
		{"auto", true, Auto, true},
		{"auto", false, Auto, false},
		{"klingon", false, "", false},
		{"xx", false, "", false},
		{"", false, "", false},
	}
	for _, tc := range cases {
		got, ok := r.Resolve(tc.hint, tc.allowAuto)
		assert.Equal(t, tc.ok, ok, tc.hint)
		if tc.ok {
			assert.Equal(t, tc.want, got, tc.hint)
		}
	}
}

func TestLibreTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/translate", r.URL.Path)
		var req libreRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "auto", req.Source)
		assert.Equal(t, "ru", req.Target)
		assert.Equal(t, "text", req.Format)
		assert.Equal(t, "secret", req.APIKey)
		_, _ = w.Write([]byte(`{"translatedText":"Привет","detectedLanguage":{"confidence":90,"language":"en"}}`))
	}))
	defer srv.Close()

	l := NewLibre(LibreOptions{BaseURL: srv.URL + "/", APIKey: "secret", HTTPClient: srv.Client()})
	res, err := l.Translate(context.Background(), "Hello", "auto", "Russian")
	require.NoError(t, err)
	assert.Equal(t, Result{Text: "Привет", SourceLang: "en", TargetLang: "ru"}, res)
}

func TestLibreRejectsUnknownLanguageWithoutRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls.Add(1) }))
	defer srv.Close()

	l := NewLibre(LibreOptions{BaseURL: srv.URL, HTTPClient: srv.Client()})
	_, err := l.Translate(context.Background(), "Hello", "en", "elvish")
	assert.ErrorIs(t, err, ErrInvalidLanguage)
	var le *LanguageError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "elvish", le.Hint)

	_, err = l.Translate(context.Background(), "Hello", "en", "auto")
	assert.ErrorIs(t, err, ErrInvalidLanguage, "auto is not a valid target")
	assert.Zero(t, calls.Load())
}

func TestLibreUpstreamErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req libreRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Target == "be" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"be is not supported"}`))
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"slow down"}`))
	}))
	defer srv.Close()

	l := NewLibre(LibreOptions{BaseURL: srv.URL, HTTPClient: srv.Client()})
	_, err := l.Translate(context.Background(), "Hello", "en", "be")
	assert.ErrorIs(t, err, ErrInvalidLanguage)

	_, err = l.Translate(context.Background(), "Hello", "en", "de")
	assert.ErrorIs(t, err, ErrUnavailable)
}
