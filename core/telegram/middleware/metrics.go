package middleware

import (
	"sync/atomic"

	tele "gopkg.in/telebot.v4"
)

const statsKey = "reply_stats"

// replyStats counts what a handler sent back. Sends may run on dispatcher
// workers, so the fields are atomic.
type replyStats struct {
	messages atomic.Int32
	keyboard atomic.Bool
}

func (s *replyStats) record(err error, opts []any) error {
	if err != nil {
		return err
	}
	s.messages.Add(1)
	if carriesMarkup(opts) {
		s.keyboard.Store(true)
	}
	return nil
}

func carriesMarkup(opts []any) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		}
	}
	return false
}

// countingContext reports every successful outgoing message to stats.
type countingContext struct {
	tele.Context
	stats *replyStats
}

func (c countingContext) Send(what any, opts ...any) error {
	return c.stats.record(c.Context.Send(what, opts...), opts)
}

func (c countingContext) Reply(what any, opts ...any) error {
	return c.stats.record(c.Context.Reply(what, opts...), opts)
}

func (c countingContext) Edit(what any, opts ...any) error {
	return c.stats.record(c.Context.Edit(what, opts...), opts)
}

func (c countingContext) EditOrSend(what any, opts ...any) error {
	return c.stats.record(c.Context.EditOrSend(what, opts...), opts)
}

func (c countingContext) EditOrReply(what any, opts ...any) error {
	return c.stats.record(c.Context.EditOrReply(what, opts...), opts)
}

// MessageMetricsMiddleware counts messages sent while handling the update and
// whether any of them carried a keyboard.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		stats := &replyStats{}
		c.Set(statsKey, stats)
		return next(countingContext{Context: c, stats: stats})
	}
}

// ReplyStats returns the number of messages sent so far and whether a
// keyboard was attached. It is zero outside MessageMetricsMiddleware.
func ReplyStats(c tele.Context) (messages int, keyboard bool) {
	stats, ok := c.Get(statsKey).(*replyStats)
	if !ok || stats == nil {
		return 0, false
	}
	return int(stats.messages.Load()), stats.keyboard.Load()
}
