// Package helpers holds tele.Context utilities shared by handlers: the cached
// logging context and message sends routed through the dispatcher.
package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/pixelbot/core/logger"
	"github.com/m3rciful/pixelbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var dispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher routes helper sends through d. With nil they run inline.
func SetDispatcher(d *sender.Dispatcher) { dispatcher.Store(d) }

// deliver hands send to the dispatcher, or runs it inline when there is none
// or its queue cannot take the job.
func deliver(c tele.Context, action string, send func() error) error {
	d := dispatcher.Load()
	if d == nil {
		return send()
	}
	ctx := BuildContext(c)
	err := d.Enqueue(ctx, action, "sendMessage", send)
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("action", action),
			slog.String("err", err.Error()),
		)
		return send()
	}
	return err
}

// SendText sends text without a parse mode unless opts sets one.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	return deliver(c, "send.text", func() error {
		if len(opts) > 0 && opts[0] != nil {
			return c.Send(text, opts[0])
		}
		return c.Send(text)
	})
}

// SendMD sends text in legacy Markdown mode, optionally with a keyboard.
func SendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown}
	if len(markup) > 0 {
		opts.ReplyMarkup = markup[0]
	}
	return deliver(c, "send.md", func() error { return c.Send(text, opts) })
}
