package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/pixelbot/core/logger"
)

// Postgres is the Store backed by the notes and translations tables.
type Postgres struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewPostgres wraps an open connection.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db, now: time.Now}
}

const (
	insertNote = `INSERT INTO notes (user_id, note, created_at) VALUES ($1, $2, $3) RETURNING id`

	selectLastNote = `SELECT id, user_id, note, created_at FROM notes
WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`

	selectNotes = `SELECT id, user_id, note, created_at FROM notes
WHERE user_id = $1 AND strpos(lower(note), lower($2)) > 0
ORDER BY created_at DESC, id DESC LIMIT $3`

	insertTranslation = `INSERT INTO translations
(user_id, source_text, translated_text, source_lang, target_lang, created_at)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
)

func (p *Postgres) AppendNote(ctx context.Context, n Note) (Note, error) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = p.now().UTC()
	}
	if err := p.db.QueryRowxContext(ctx, insertNote, n.UserID, n.Text, n.CreatedAt).Scan(&n.ID); err != nil {
		logger.SVCNotes.LogAttrs(ctx, slog.LevelError, "notes.append",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return Note{}, fmt.Errorf("append note: %w", err)
	}
	logger.SVCNotes.LogAttrs(ctx, slog.LevelInfo, "notes.append",
		slog.String("status", "ok"),
		slog.Int64("note_id", n.ID),
	)
	return n, nil
}

func (p *Postgres) MostRecentNote(ctx context.Context, userID int64) (Note, error) {
	var n Note
	err := p.db.GetContext(ctx, &n, selectLastNote, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, ErrEmptyResult
	}
	if err != nil {
		return Note{}, fmt.Errorf("most recent note: %w", err)
	}
	return n, nil
}

func (p *Postgres) SearchNotes(ctx context.Context, userID int64, substr string, limit int) ([]Note, error) {
	notes := []Note{}
	if err := p.db.SelectContext(ctx, &notes, selectNotes, userID, substr, clampLimit(limit)); err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}
	logger.SVCNotes.LogAttrs(ctx, slog.LevelDebug, "notes.search",
		slog.Int("results", len(notes)),
	)
	return notes, nil
}

func (p *Postgres) AppendTranslation(ctx context.Context, t Translation) (Translation, error) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = p.now().UTC()
	}
	err := p.db.QueryRowxContext(ctx, insertTranslation,
		t.UserID, t.SourceText, t.TranslatedText, t.SourceLang, t.TargetLang, t.CreatedAt,
	).Scan(&t.ID)
	if err != nil {
		return Translation{}, fmt.Errorf("append translation: %w", err)
	}
	logger.SVCTranslate.LogAttrs(ctx, slog.LevelInfo, "translations.append",
		slog.String("status", "ok"),
		slog.Int64("translation_id", t.ID),
		slog.String("src", t.SourceLang),
		slog.String("dst", t.TargetLang),
	)
	return t, nil
}
