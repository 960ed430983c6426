package helpers

import (
	"context"

	"github.com/m3rciful/pixelbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// Keys under which middleware leaves per-update values in tele.Context.
const (
	contextKey = "logger_ctx"
	ridKey     = "rid"
)

// SenderID returns the id of the user behind the update, or 0 for channel posts.
func SenderID(c tele.Context) int64 {
	if c == nil {
		return 0
	}
	if u := c.Sender(); u != nil {
		return u.ID
	}
	return 0
}

// ChatID returns the chat the update belongs to, or 0 for inline queries.
func ChatID(c tele.Context) int64 {
	if c == nil {
		return 0
	}
	if ch := c.Chat(); ch != nil {
		return ch.ID
	}
	return 0
}

// SetRID records the request id chosen by middleware for this update.
func SetRID(c tele.Context, rid string) {
	if c != nil && rid != "" {
		c.Set(ridKey, rid)
	}
}

// StoreContext caches ctx on c so later handlers reuse the same log metadata.
func StoreContext(c tele.Context, ctx context.Context) {
	if c != nil && ctx != nil {
		c.Set(contextKey, ctx)
	}
}

// ContextFrom returns the context cached by StoreContext.
func ContextFrom(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	ctx, ok := c.Get(contextKey).(context.Context)
	return ctx, ok && ctx != nil
}

// BuildContext returns the per-update context carrying request id, update, user
// and chat ids. It is built once and then cached on c.
func BuildContext(c tele.Context) context.Context {
	if ctx, ok := ContextFrom(c); ok {
		return ctx
	}
	updateID := c.Update().ID
	userID, chatID := SenderID(c), ChatID(c)

	rid, _ := c.Get(ridKey).(string)
	if rid == "" {
		rid = logger.BuildRID(updateID, chatID, userID)
	}
	ctx := logger.WithUpdateMeta(logger.WithRID(logger.Background(), rid), updateID, userID, chatID)
	ctx = logger.WithLogger(ctx, logger.Component("tg"))
	StoreContext(c, ctx)
	return ctx
}

// WithHandler tags the cached context with the handler name.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler != "" {
		ctx = logger.WithHandler(ctx, handler)
		StoreContext(c, ctx)
	}
	return ctx
}
