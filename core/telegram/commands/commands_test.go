package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"/start":            "/start",
		" /Menu ":           "/menu",
		"/note_search milk": "/note_search",
		"/joke@pixel_bot":   "/joke",
		"stop_repeat":       "/stop_repeat",
		"cancel my order":   "",
		"/":                 "",
		"hello!":            "",
		"/привет":           "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), in)
	}
}
