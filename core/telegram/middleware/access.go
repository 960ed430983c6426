package middleware

import (
	tghelpers "github.com/m3rciful/pixelbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// AdminOptions names the single admin and what strangers get instead.
type AdminOptions struct {
	AdminID  int64
	OnReject tele.HandlerFunc
}

// IsAdmin reports whether userID is the configured admin. A zero AdminID matches nobody.
func (o AdminOptions) IsAdmin(userID int64) bool {
	return o.AdminID != 0 && userID == o.AdminID
}

// AdminOnlyMiddleware passes only the admin's updates to next.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if opts.IsAdmin(tghelpers.SenderID(c)) {
				return next(c)
			}
			if opts.OnReject == nil {
				return nil
			}
			return opts.OnReject(c)
		}
	}
}
