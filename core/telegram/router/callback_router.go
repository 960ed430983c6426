package router

import (
	"log/slog"
	"time"

	tg "github.com/m3rciful/pixelbot/core/telegram"
	"github.com/m3rciful/pixelbot/core/telegram/callbacks"
	"github.com/m3rciful/pixelbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for callbacks.
type CallbackOptions struct {
	// NotFound handles keys with no registered handler. When nil the
	// registry's CallbackNotFound answers instead.
	NotFound tele.HandlerFunc
	// Recover wraps the handler; RecoverMiddleware when nil.
	Recover tele.MiddlewareFunc
}

// CallbackRoute dispatches button presses by their unique key.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		cb := c.Callback()
		if cb == nil {
			return nil
		}
		key, _ := callbacks.Parse(cb)
		name := "callback." + handlerName(key)
		attrs := []slog.Attr{slog.String("cb_key", key)}

		if h, ok := reg.GetCallback(key); ok {
			// Stops the client spinner before the handler starts sending.
			_ = c.Respond()
			return handle(c, name, start, func() error { return h(c) }, attrs...)
		}

		attrs = append(attrs, slog.String("reason", "not_found"))
		if opts.NotFound == nil {
			return handle(c, name, start, func() error { return reg.CallbackNotFound()(c) }, attrs...)
		}
		_ = c.Respond()
		return handle(c, name, start, func() error { return opts.NotFound(c) }, attrs...)
	}

	recoverMW := opts.Recover
	if recoverMW == nil {
		recoverMW = middleware.RecoverMiddleware
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  recoverMW(middleware.LoggerMiddleware(handler)),
	}
}
