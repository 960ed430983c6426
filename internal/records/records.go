// Package records stores user notes and the translation audit log.
package records

import (
	"context"
	"errors"
	"time"
)

// SearchLimit caps note search results.
const SearchLimit = 20

// ErrEmptyResult is returned when a lookup finds nothing.
var ErrEmptyResult = errors.New("records: empty result")

// Note is one saved user note.
type Note struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Text      string    `db:"note"`
	CreatedAt time.Time `db:"created_at"`
}

// Translation is one audited translation.
type Translation struct {
	ID             int64     `db:"id"`
	UserID         int64     `db:"user_id"`
	SourceText     string    `db:"source_text"`
	TranslatedText string    `db:"translated_text"`
	SourceLang     string    `db:"source_lang"`
	TargetLang     string    `db:"target_lang"`
	CreatedAt      time.Time `db:"created_at"`
}

// Store is the append-only record store.
type Store interface {
	AppendNote(ctx context.Context, n Note) (Note, error)
	// MostRecentNote returns ErrEmptyResult when the user has no notes.
	MostRecentNote(ctx context.Context, userID int64) (Note, error)
	// SearchNotes returns up to limit notes of the user containing substr
	// (case-insensitive), newest first.
	SearchNotes(ctx context.Context, userID int64, substr string, limit int) ([]Note, error)
	AppendTranslation(ctx context.Context, t Translation) (Translation, error)
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > SearchLimit {
		return SearchLimit
	}
	return limit
}
