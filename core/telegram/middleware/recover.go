package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/m3rciful/pixelbot/core/logger"
	tghelpers "github.com/m3rciful/pixelbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// PanicHook runs after a handler panic has been recovered.
type PanicHook func(c tele.Context, recovered any)

// RecoverMiddleware catches panics in handlers and prevents the bot from crashing.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return RecoverWith(nil)(next)
}

// RecoverWith is RecoverMiddleware with a hook, used to reset per-user state
// when a handler dies halfway through a flow.
func RecoverWith(hook PanicHook) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				logger.Error(tghelpers.BuildContext(c), "tg", "tg.panic",
					slog.String("status", "fail"),
					slog.String("err", fmt.Sprint(r)),
					slog.String("stack", string(debug.Stack())),
				)
				if hook != nil {
					hook(c, r)
				}
				err = fmt.Errorf("handler panic: %v", r)
			}()
			return next(c)
		}
	}
}
