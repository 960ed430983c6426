package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/m3rciful/pixelbot/core/logger"
	"github.com/m3rciful/pixelbot/internal/conversation"
	"github.com/m3rciful/pixelbot/internal/records"
)

// StartNote asks for the text of a new note.
func (s *Service) StartNote(ctx context.Context, userID int64, out Outbox) {
	s.start(ctx, userID, conversation.EventStartNote, out, Reply{Text: msgNoteAsk, Keyboard: RemoveKeyboard})
}

func (s *Service) saveNote(ctx context.Context, txn *conversation.Txn, text string, out Outbox) error {
	_, err := s.records.AppendNote(ctx, records.Note{UserID: txn.Session().UserID, Text: text})
	if err != nil {
		txn.Reset()
		s.send(ctx, out, Reply{Text: msgNoteFailed})
		return err
	}
	s.send(ctx, out, Reply{Text: msgNoteSaved})
	return nil
}

// LastNote sends the most recent note of the user.
func (s *Service) LastNote(ctx context.Context, userID int64, out Outbox) error {
	n, err := s.records.MostRecentNote(ctx, userID)
	switch {
	case errors.Is(err, records.ErrEmptyResult):
		s.send(ctx, out, Reply{Text: msgNoNotes})
		return nil
	case err != nil:
		s.send(ctx, out, Reply{Text: msgNotesFailed})
		return err
	}
	s.send(ctx, out, Reply{Text: n.Text})
	return nil
}

// SearchNotes returns the user's notes containing query, newest first.
// It does not touch the session.
func (s *Service) SearchNotes(ctx context.Context, userID int64, query string) ([]records.Note, error) {
	notes, err := s.records.SearchNotes(ctx, userID, strings.TrimSpace(query), SearchLimit)
	if err != nil {
		logger.SVCNotes.LogAttrs(ctx, slog.LevelWarn, "notes.search", slog.String("status", "fail"), slog.String("err", err.Error()))
		return nil, err
	}
	return notes, nil
}
