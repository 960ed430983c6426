// Package bot binds the workflow service to Telegram: commands, inline
// queries, callbacks and message delivery.
package bot

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/m3rciful/pixelbot/core/logger"
	tg "github.com/m3rciful/pixelbot/core/telegram"
	tghelpers "github.com/m3rciful/pixelbot/core/telegram/helpers"
	"github.com/m3rciful/pixelbot/core/telegram/middleware"
	"github.com/m3rciful/pixelbot/core/telegram/router"
	"github.com/m3rciful/pixelbot/internal/config"
	"github.com/m3rciful/pixelbot/internal/workflow"

	tele "gopkg.in/telebot.v4"
)

type Options struct {
	Config   *config.Config
	Workflow *workflow.Service
	// NewID generates inline result ids; uuid.NewString when nil.
	NewID func() string
}

// App is the Telegram application. It implements the process runner's TelegramApp.
type App struct {
	cfg   *config.Config
	svc   *workflow.Service
	reg   *tg.Registry
	newID func() string
}

func New(opts Options) *App {
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	a := &App{cfg: opts.Config, svc: opts.Workflow, reg: tg.NewRegistry(), newID: newID}
	a.register()
	return a
}

// Registry exposes the command registry.
func (a *App) Registry() *tg.Registry { return a.reg }

// TelegramRunOptions wires middlewares and routes for the runtime.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	core := a.cfg.CoreConfig()
	recoverMW := middleware.RecoverWith(a.onPanic)

	routes := router.CommandRoutes(a.reg, router.CommandRouteOptions{
		AdminID:       core.Telegram.AdminID,
		OnAdminReject: a.adminReject,
		Recover:       recoverMW,
	})
	routes = append(routes, router.TextRoutes(fsm{a}, a.reg, router.TextOptions{
		UnknownDocument: a.unexpectedDocument,
		Recover:         recoverMW,
	})...)
	routes = append(routes,
		router.CallbackRoute(a.reg, router.CallbackOptions{NotFound: a.staleButton, Recover: recoverMW}),
		router.InlineRoute(router.InlineHandlers{
			inlineNotes: a.inlineNotes,
			inlineShop:  a.inlineShop,
		}),
	)

	return tg.RunOptions{
		Config:      core,
		Registry:    a.reg,
		Middlewares: tg.DefaultMiddlewares(core, tg.MiddlewareHooks{OnLimited: a.rateLimited, OnPanic: a.onPanic}),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt tg.Runtime) error {
			logger.TWire.LogAttrs(ctx, slog.LevelInfo, "tg.wire",
				slog.String("event", "start"),
				slog.Int("routes", len(routes)),
				slog.Bool("database", a.cfg.DatabaseEnabled()),
			)
			return nil
		},
		OnStop: func(ctx context.Context, rt tg.Runtime) error {
			logger.TWire.LogAttrs(ctx, slog.LevelInfo, "tg.wire",
				slog.String("event", "stop"),
				slog.Int("sessions", a.svc.SessionCount()),
				slog.Uint64("send_errors", rt.Dispatcher.ErrorCount()),
			)
			return nil
		},
	}, nil
}

// fsm lets the text router hand live conversations to the workflow.
type fsm struct{ a *App }

func (f fsm) InProgress(userID int64) bool { return f.a.svc.Sessions().InProgress(userID) }

func (f fsm) ManagerHandler(c tele.Context) error {
	handled, err := f.a.svc.HandleText(tghelpers.BuildContext(c), tghelpers.SenderID(c), c.Text(), newOutbox(c))
	if !handled {
		return f.a.fallback(c)
	}
	return err
}

// onPanic runs after the workflow guard has already reset the session.
func (a *App) onPanic(c tele.Context, _ any) {
	_ = tghelpers.SendText(c, msgPanic)
}
