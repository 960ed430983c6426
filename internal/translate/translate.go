// Package translate resolves language hints and calls a LibreTranslate
// compatible HTTP API.
package translate

import (
	"context"
	"errors"
)

var (
	// ErrInvalidLanguage is returned when a language hint cannot be resolved.
	ErrInvalidLanguage = errors.New("translate: invalid language")
	// ErrUnavailable wraps transport and upstream failures.
	ErrUnavailable = errors.New("translate: provider unavailable")
)

// Result is a finished translation.
type Result struct {
	Text       string
	SourceLang string
	TargetLang string
}

// Provider translates text between two language hints.
type Provider interface {
	Translate(ctx context.Context, text, srcHint, dstHint string) (Result, error)
}

// LanguageError names the hint that failed to resolve.
type LanguageError struct {
	Hint string
}

func (e *LanguageError) Error() string { return "translate: unknown language " + `"` + e.Hint + `"` }

func (e *LanguageError) Unwrap() error { return ErrInvalidLanguage }

// Code classifies the error for handler summaries.
func (e *LanguageError) Code() string { return "invalid_language" }
