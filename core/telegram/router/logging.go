package router

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/m3rciful/pixelbot/core/logger"
	tghelpers "github.com/m3rciful/pixelbot/core/telegram/helpers"
	"github.com/m3rciful/pixelbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// Outcomes reported in handler.handled next to status.
const (
	outcomeOK        = "ok"
	outcomeFail      = "fail"
	outcomeCancelled = "cancelled"
	outcomeSkip      = "skip"
)

// handle runs fn as handler name and logs one handler.handled line for it.
func handle(c tele.Context, name string, start time.Time, fn func() error, extras ...slog.Attr) error {
	tghelpers.WithHandler(c, name)
	err := fn()
	summarize(c, name, start, outcomeOf(err), err, extras...)
	return err
}

// skipped logs an update that no handler took.
func skipped(c tele.Context, name string, start time.Time, extras ...slog.Attr) {
	summarize(c, name, start, outcomeSkip, nil, extras...)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, context.Canceled):
		return outcomeCancelled
	default:
		return outcomeFail
	}
}

func summarize(c tele.Context, name string, start time.Time, outcome string, err error, extras ...slog.Attr) {
	ctx := tghelpers.WithHandler(c, name)
	msgs, kb := middleware.ReplyStats(c)

	attrs := make([]slog.Attr, 0, 9+len(extras))
	attrs = append(attrs,
		slog.String("status", logger.Status(err)),
		slog.String("handler", name),
		slog.String("outcome", outcome),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Int64("duration_ms", logger.RoundMS(time.Since(start)).Milliseconds()),
	)
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", errorCode(err)),
		)
	}
	attrs = append(attrs, extras...)

	level := slog.LevelInfo
	if outcome == outcomeFail {
		level = slog.LevelWarn
	}
	logger.LogEvent(ctx, logger.Component("tg"), level, "handler.handled", attrs...)
}

// handlerName turns a command or callback key into a log-friendly name.
func handlerName(key string) string {
	key = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(key), "/"))
	if key == "" {
		return "unknown"
	}
	return strings.ReplaceAll(key, " ", "_")
}

// errorCode prefers an explicit Code() anywhere in the chain and falls back
// to the concrete error type name.
func errorCode(err error) string {
	if err == nil {
		return ""
	}
	upper := func(s string) string { return strings.ToUpper(strings.ReplaceAll(s, " ", "_")) }
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		if code := strings.TrimSpace(coded.Code()); code != "" {
			return upper(code)
		}
	}
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return "UNKNOWN_ERROR"
	}
	return upper(t.Name())
}
