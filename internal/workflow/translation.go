package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/pixelbot/core/logger"
	"github.com/m3rciful/pixelbot/internal/conversation"
	"github.com/m3rciful/pixelbot/internal/records"
	"github.com/m3rciful/pixelbot/internal/translate"
)

// StartTranslate shows the rules and asks for the source language.
func (s *Service) StartTranslate(ctx context.Context, userID int64, out Outbox) {
	s.start(ctx, userID, conversation.EventStartTranslate, out,
		Reply{Text: msgTranslateRules, Keyboard: RemoveKeyboard},
		Reply{Text: msgAskSourceLang, Keyboard: TranslateCancel},
	)
}

// translate runs the provider for a finished flow. The staged session is
// already Idle; a rejected language rolls it back and re-prompts.
func (s *Service) translate(ctx context.Context, txn *conversation.Txn, f conversation.TranslateFlow, text string, out Outbox) error {
	if s.translator == nil {
		s.send(ctx, out, Reply{Text: msgTranslateUnavailable})
		return translate.ErrUnavailable
	}
	res, err := s.translator.Translate(ctx, text, f.SourceLang, f.TargetLang)
	switch {
	case errors.Is(err, translate.ErrInvalidLanguage):
		txn.Rollback()
		tr, terr := txn.Apply(conversation.Event{Kind: conversation.EventLanguageRejected})
		if terr != nil {
			txn.Reset()
			return terr
		}
		if tr.Effect == conversation.EffectGiveUpTranslate {
			s.send(ctx, out, Reply{Text: msgTranslateGaveUp})
			return nil
		}
		s.send(ctx, out, Reply{Text: fmt.Sprintf(msgInvalidLanguage, languageHint(err)) + msgAskSourceLang, Keyboard: TranslateCancel})
		return nil
	case err != nil:
		txn.Reset()
		s.send(ctx, out, Reply{Text: msgTranslateUnavailable})
		return err
	}

	s.send(ctx, out, Reply{Text: res.Text})
	_, err = s.records.AppendTranslation(ctx, records.Translation{
		UserID:         txn.Session().UserID,
		SourceText:     text,
		TranslatedText: res.Text,
		SourceLang:     res.SourceLang,
		TargetLang:     res.TargetLang,
	})
	if err != nil {
		logger.SVCTranslate.LogAttrs(ctx, slog.LevelWarn, "translate.persist", slog.String("status", "fail"), slog.String("err", err.Error()))
	}
	return nil
}

func languageHint(err error) string {
	var le *translate.LanguageError
	if errors.As(err, &le) {
		return le.Hint
	}
	return err.Error()
}
