package joke

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandom(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"type":"general","setup":"Why? ","punchline":" Because.","id":1}`))
	}))
	defer srv.Close()

	j, err := New(Options{URL: srv.URL, HTTPClient: srv.Client()}).Random(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Joke{Setup: "Why?", Punchline: "Because."}, j)
}

func TestRandomFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) },
		"garbage": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		},
		"incomplete": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"setup":"only half"}`))
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()
			_, err := New(Options{URL: srv.URL, HTTPClient: srv.Client()}).Random(context.Background())
			assert.ErrorIs(t, err, ErrUnavailable)
		})
	}
}
