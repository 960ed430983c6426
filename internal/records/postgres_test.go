package records

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	p := NewPostgres(sqlx.NewDb(db, "postgres"))
	p.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return p, mock
}

func TestPostgresAppendNote(t *testing.T) {
	p, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(insertNote)).
		WithArgs(int64(42), "buy milk", p.now()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	n, err := p.AppendNote(context.Background(), Note{UserID: 42, Text: "buy milk"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), n.ID)
	assert.Equal(t, p.now(), n.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMostRecentNoteEmpty(t *testing.T) {
	p, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectLastNote)).
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)

	_, err := p.MostRecentNote(context.Background(), 42)
	assert.ErrorIs(t, err, ErrEmptyResult)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMostRecentNote(t *testing.T) {
	p, mock := newMockStore(t)
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(selectLastNote)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "note", "created_at"}).AddRow(3, 42, "latest", at))

	n, err := p.MostRecentNote(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, Note{ID: 3, UserID: 42, Text: "latest", CreatedAt: at}, n)
}

func TestPostgresSearchNotesClampsLimit(t *testing.T) {
	p, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectNotes)).
		WithArgs(int64(42), "milk", SearchLimit).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "note", "created_at"}))

	notes, err := p.SearchNotes(context.Background(), 42, "milk", 500)
	require.NoError(t, err)
	assert.NotNil(t, notes)
	assert.Empty(t, notes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAppendTranslationError(t *testing.T) {
	p, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(insertTranslation)).
		WillReturnError(errors.New("connection reset"))

	_, err := p.AppendTranslation(context.Background(), Translation{UserID: 1, SourceText: "hi", TranslatedText: "привет", SourceLang: "en", TargetLang: "ru"})
	assert.ErrorContains(t, err, "connection reset")
}
