package router

import (
	"log/slog"
	"time"

	"github.com/m3rciful/pixelbot/core/logger"
	tg "github.com/m3rciful/pixelbot/core/telegram"
	"github.com/m3rciful/pixelbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
	// Recover wraps handlers; RecoverMiddleware when nil.
	Recover tele.MiddlewareFunc
}

// CommandRoutes prepares command handlers wrapped with shared middleware.
// Every alias gets its own route bound to the same handler.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}
	recoverMW := opts.Recover
	if recoverMW == nil {
		recoverMW = middleware.RecoverMiddleware
	}

	adminOpts := middleware.AdminOptions{
		AdminID:  opts.AdminID,
		OnReject: opts.OnAdminReject,
	}

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for cmd, def := range reg.Commands() {
		name := handlerName(cmd)
		inner := def.Handler
		h := func(c tele.Context) error {
			return handle(c, name, time.Now(), func() error {
				return inner(c)
			})
		}
		if def.AdminOnly {
			h = middleware.AdminOnlyMiddleware(adminOpts)(h)
		}
		h = recoverMW(middleware.LoggerMiddleware(h))

		routes = append(routes, tg.Route{Endpoint: cmd, Handler: h})
		for _, alias := range def.Aliases {
			routes = append(routes, tg.Route{Endpoint: alias, Handler: h})
		}
	}

	logger.TWire.Info("tg.wire",
		slog.String("event", "complete"),
		slog.Int("commands", len(reg.Commands())),
		slog.Int("routes", len(routes)),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)

	return routes
}
