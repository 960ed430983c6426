package logger

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"

	timeFormatMillis = "2006-01-02T15:04:05.000Z07:00"
)

// leadingKeys are emitted right after ts, level and component, in this order.
var leadingKeys = []string{"event", "status", "rid", "rid_full"}

type handlerConfig struct {
	level  slog.Leveler
	writer *asyncWriter
	format logFormat
}

// contextHandler decorates a slog text or JSON handler with request metadata
// carried in context and a stable leading key order.
type contextHandler struct {
	inner  slog.Handler
	isJSON bool
}

func newContextHandler(cfg handlerConfig) *contextHandler {
	if cfg.level == nil {
		cfg.level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: cfg.level, ReplaceAttr: replaceAttr}
	h := &contextHandler{isJSON: cfg.format == formatJSON}
	if h.isJSON {
		h.inner = slog.NewJSONHandler(cfg.writer, opts)
	} else {
		h.inner = slog.NewTextHandler(cfg.writer, opts)
	}
	return h
}

// Enabled reports whether the handler allows processing the provided level.
func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle reorders record attributes and appends context fields before delegating.
func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	attrs := make(map[string]slog.Attr, r.NumAttrs()+8)
	var order []string
	put := func(a slog.Attr) {
		if a.Key == "" || isEmptyValue(a.Value) {
			return
		}
		if _, seen := attrs[a.Key]; !seen {
			order = append(order, a.Key)
		}
		attrs[a.Key] = a
	}
	r.Attrs(func(a slog.Attr) bool {
		put(a)
		return true
	})

	if _, ok := attrs["event"]; !ok {
		event := strings.TrimSpace(r.Message)
		if event == "" {
			event = "unknown"
		}
		put(slog.String("event", event))
	}
	for _, a := range contextAttrs(ctx) {
		if _, ok := attrs[a.Key]; !ok {
			put(a)
		}
	}
	if a, ok := attrs["rid"]; ok {
		raw := a.Value.String()
		if compact := CompactRID(raw); compact != "" && compact != raw {
			attrs["rid"] = slog.String("rid", compact)
			if h.isJSON {
				put(slog.String("rid_full", raw))
			}
		}
	}

	out := slog.NewRecord(r.Time.UTC(), r.Level, "", r.PC)
	written := make(map[string]struct{}, len(attrs))
	for _, key := range leadingKeys {
		if a, ok := attrs[key]; ok {
			out.AddAttrs(a)
			written[key] = struct{}{}
		}
	}
	for _, key := range order {
		if _, done := written[key]; done {
			continue
		}
		out.AddAttrs(attrs[key])
	}
	return h.inner.Handle(ctx, out)
}

// WithAttrs returns a handler whose inner handler is enriched with attrs.
func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{inner: h.inner.WithAttrs(attrs), isJSON: h.isJSON}
}

// WithGroup returns a handler with an additional group prefix.
func (h *contextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &contextHandler{inner: h.inner.WithGroup(name), isJSON: h.isJSON}
}

func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 {
		switch a.Key {
		case slog.TimeKey:
			return slog.String("ts", a.Value.Time().UTC().Truncate(time.Millisecond).Format(timeFormatMillis))
		case slog.MessageKey:
			return slog.Attr{}
		}
	}
	if a.Value.Kind() == slog.KindDuration {
		return slog.Int64(durationKey(a.Key), RoundMS(a.Value.Duration()).Milliseconds())
	}
	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, strings.TrimSpace(a.Value.String()))
	}
	return a
}

func durationKey(key string) string {
	switch {
	case key == "duration":
		return "duration_ms"
	case strings.HasSuffix(key, "_duration"):
		return strings.TrimSuffix(key, "_duration") + "_duration_ms"
	case !strings.HasSuffix(key, "_ms"):
		return key + "_ms"
	}
	return key
}

func isEmptyValue(v slog.Value) bool {
	switch v.Kind() {
	case slog.KindString:
		return strings.TrimSpace(v.String()) == ""
	case slog.KindAny:
		return v.Any() == nil
	}
	return false
}

func contextAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var attrs []slog.Attr
	if rid := RIDFrom(ctx); rid != "" {
		attrs = append(attrs, slog.String("rid", rid))
	}
	if updateID := UpdateIDFrom(ctx); updateID != 0 {
		attrs = append(attrs, slog.Int("update_id", updateID))
	}
	if uid := UserIDFrom(ctx); uid != 0 {
		attrs = append(attrs, slog.Int64("user_id", uid))
	}
	if cid := ChatIDFrom(ctx); cid != 0 {
		attrs = append(attrs, slog.Int64("chat_id", cid))
	}
	if hid := HandlerFrom(ctx); hid != "" {
		attrs = append(attrs, slog.String("handler", hid))
	}
	if flow := FlowFrom(ctx); flow != "" {
		attrs = append(attrs, slog.String("flow", flow))
	}
	return attrs
}
