package middleware

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/m3rciful/pixelbot/core/logger"
	"github.com/m3rciful/pixelbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/pixelbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// seenUpdates holds update ids already logged; the middleware is mounted on
// several route branches and a single update can pass through more than one.
var seenUpdates = cache.New(10*time.Second, time.Minute)

func firstSighting(updateID int) bool {
	return seenUpdates.Add(strconv.Itoa(updateID), struct{}{}, cache.DefaultExpiration) == nil
}

// LoggerMiddleware assigns the request id for the update, caches the logging
// context and emits one sampled update.received line per update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		userID, chatID := tghelpers.SenderID(c), tghelpers.ChatID(c)

		rid := logger.BuildRID(upd.ID, chatID, userID)
		tghelpers.SetRID(c, rid)
		ctx := logger.WithUpdateMeta(logger.WithRID(logger.Background(), rid), upd.ID, userID, chatID)
		ctx = logger.WithLogger(ctx, logger.Component("tg"))
		tghelpers.StoreContext(c, ctx)

		if logger.ShouldSampleDebug() && firstSighting(upd.ID) {
			attrs := append([]slog.Attr{
				slog.String("status", "ok"),
				slog.String("kind", UpdateKind(upd)),
			}, describeUpdate(c, upd)...)
			logger.LogEvent(ctx, logger.Component("tg"), slog.LevelDebug, "update.received", attrs...)
		}
		return next(c)
	}
}

// describeUpdate collects the sender and payload fields worth logging.
func describeUpdate(c tele.Context, upd tele.Update) []slog.Attr {
	var attrs []slog.Attr
	if chat := c.Chat(); chat != nil {
		attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
	}
	if u := c.Sender(); u != nil {
		if u.Username != "" {
			attrs = append(attrs, slog.String("username", logger.SanitizeLimit(u.Username, 64)))
		}
		if u.LanguageCode != "" {
			attrs = append(attrs, slog.String("lang", u.LanguageCode))
		}
	}

	var payload string
	switch {
	case upd.Callback != nil:
		var key string
		key, payload = callbacks.Parse(upd.Callback)
		if key != "" {
			attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(key, 128)))
		}
	case upd.Query != nil:
		payload = upd.Query.Text
	case upd.Message != nil:
		payload = c.Text()
	}
	if payload != "" {
		attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(payload, 256)))
	}
	return attrs
}
