package render

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Wrap greedily packs the whitespace separated words of text into lines of at
// most width display columns. A word wider than width gets a line of its own
// and is never split. Blank text yields no lines.
func Wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if width <= 0 {
		return []string{strings.Join(words, " ")}
	}

	var (
		lines []string
		cur   strings.Builder
		curW  int
	)
	for _, w := range words {
		ww := runewidth.StringWidth(w)
		if curW > 0 && curW+1+ww > width {
			lines = append(lines, cur.String())
			cur.Reset()
			curW = 0
		}
		if curW > 0 {
			cur.WriteByte(' ')
			curW++
		}
		cur.WriteString(w)
		curW += ww
	}
	return append(lines, cur.String())
}
