// Package commands describes slash commands and their canonical names.
package commands

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Command represents a bot command with its handler, description, and metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
	Aliases     []string
}

// MaxNameLen is the longest command name Telegram accepts, without the slash.
const MaxNameLen = 32

// Normalize returns the canonical "/name" form of text, or "" when text is not
// a command. Slash commands lose their "@botname" suffix and arguments; bare
// words must be the whole text.
func Normalize(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "/") {
		if i := strings.IndexFunc(text, isSpace); i >= 0 {
			text = text[:i]
		}
		text, _, _ = strings.Cut(text, "@")
	} else {
		text = "/" + text
	}
	name := strings.ToLower(text)
	if !Valid(name) {
		return ""
	}
	return name
}

// Valid reports whether name is "/" followed by 1 to 32 lowercase letters, digits or underscores.
func Valid(name string) bool {
	body, ok := strings.CutPrefix(name, "/")
	if !ok || body == "" || len(body) > MaxNameLen {
		return false
	}
	for _, r := range body {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	return true
}

func isSpace(r rune) bool { return r == ' ' || r == '\t' || r == '\n' }
