package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Parse returns the callback key and payload. Telebot encodes inline button
// data as \f<unique>|<payload>; once Telebot has split it, Unique and Data
// already hold the two halves.
func Parse(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	raw := strings.TrimPrefix(cb.Data, "\f")
	raw = strings.TrimPrefix(raw, "\\f")
	parts := strings.SplitN(raw, "|", 2)
	key := strings.TrimSpace(parts[0])
	payload := ""
	if len(parts) == 2 {
		payload = parts[1]
	}
	return key, payload
}

// Key returns the callback key of the current update.
func Key(c tele.Context) string {
	k, _ := Parse(c.Callback())
	return k
}

// Payload returns the payload after '|' of the current update.
func Payload(c tele.Context) string {
	_, p := Parse(c.Callback())
	return p
}
