package router

import (
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/pixelbot/core/logger"
	tg "github.com/m3rciful/pixelbot/core/telegram"
	"github.com/m3rciful/pixelbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// InlineHandlers maps a lowercase query prefix such as "shop" to its handler.
// The query "shop:phone" is routed to the "shop" handler.
type InlineHandlers map[string]tele.HandlerFunc

// InlinePrefix splits an inline query into its lowercase prefix and the text after the first colon.
func InlinePrefix(query string) (string, string) {
	prefix, rest, ok := strings.Cut(query, ":")
	if !ok {
		return "", strings.TrimSpace(query)
	}
	return strings.ToLower(strings.TrimSpace(prefix)), strings.TrimSpace(rest)
}

// InlineRoute dispatches inline queries by prefix. Empty or unknown queries are acknowledged and ignored.
func InlineRoute(handlers InlineHandlers) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		q := c.Query()
		if q == nil {
			return nil
		}
		prefix, _ := InlinePrefix(q.Text)
		h, ok := handlers[prefix]
		if strings.TrimSpace(q.Text) == "" || !ok || h == nil {
			skipped(c, "inline.unknown", start, slog.String("query", logger.SanitizeLimit(q.Text, 64)))
			return nil
		}
		return handle(c, "inline."+prefix, start, func() error {
			return h(c)
		})
	}
	return tg.Route{
		Endpoint: tele.OnQuery,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
