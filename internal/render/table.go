// Package render draws monospace box tables for Telegram code blocks.
package render

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Option tunes a Table call.
type Option func(*tableConfig)

type tableConfig struct {
	wrap map[int]int
}

// WrapColumn wraps cells of column i to at most width display columns.
func WrapColumn(i, width int) Option {
	return func(c *tableConfig) {
		if width > 0 {
			c.wrap[i] = width
		}
	}
}

type grid struct {
	top, headerSep, rowSep, bottom [4]string
}

// fancy grid: left, fill, join, right
var fancy = grid{
	top:       [4]string{"╒", "═", "╤", "╕"},
	headerSep: [4]string{"╞", "═", "╪", "╡"},
	rowSep:    [4]string{"├", "─", "┼", "┤"},
	bottom:    [4]string{"╘", "═", "╧", "╛"},
}

const vertical = "│"

// Table renders headers and rows as a box grid. The header is separated by a
// double rule and rows by single rules. Cells may span several lines.
func Table(headers []string, rows [][]string, opts ...Option) string {
	cfg := tableConfig{wrap: map[int]int{}}
	for _, o := range opts {
		o(&cfg)
	}

	cols := len(headers)
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	if cols == 0 {
		return ""
	}

	head := cellLines(padRow(headers, cols), nil)
	body := make([][][]string, len(rows))
	for i, r := range rows {
		body[i] = cellLines(padRow(r, cols), cfg.wrap)
	}

	widths := make([]int, cols)
	measure := func(cells [][]string) {
		for c, lines := range cells {
			for _, l := range lines {
				if w := runewidth.StringWidth(l); w > widths[c] {
					widths[c] = w
				}
			}
		}
	}
	measure(head)
	for _, cells := range body {
		measure(cells)
	}

	var b strings.Builder
	rule(&b, fancy.top, widths)
	writeRow(&b, head, widths)
	for i, cells := range body {
		if i == 0 {
			rule(&b, fancy.headerSep, widths)
		} else {
			rule(&b, fancy.rowSep, widths)
		}
		writeRow(&b, cells, widths)
	}
	rule(&b, fancy.bottom, widths)
	return strings.TrimSuffix(b.String(), "\n")
}

func padRow(row []string, cols int) []string {
	out := make([]string, cols)
	copy(out, row)
	return out
}

func cellLines(row []string, wrap map[int]int) [][]string {
	out := make([][]string, len(row))
	for i, cell := range row {
		var lines []string
		for _, para := range strings.Split(cell, "\n") {
			if w, ok := wrap[i]; ok {
				wrapped := Wrap(para, w)
				if len(wrapped) == 0 {
					wrapped = []string{""}
				}
				lines = append(lines, wrapped...)
				continue
			}
			lines = append(lines, strings.TrimSpace(para))
		}
		out[i] = lines
	}
	return out
}

func rule(b *strings.Builder, g [4]string, widths []int) {
	b.WriteString(g[0])
	for i, w := range widths {
		if i > 0 {
			b.WriteString(g[2])
		}
		b.WriteString(strings.Repeat(g[1], w+2))
	}
	b.WriteString(g[3])
	b.WriteByte('\n')
}

func writeRow(b *strings.Builder, cells [][]string, widths []int) {
	height := 1
	for _, lines := range cells {
		if len(lines) > height {
			height = len(lines)
		}
	}
	for line := 0; line < height; line++ {
		b.WriteString(vertical)
		for c, lines := range cells {
			text := ""
			if line < len(lines) {
				text = lines[line]
			}
			b.WriteByte(' ')
			b.WriteString(runewidth.FillRight(text, widths[c]))
			b.WriteByte(' ')
			b.WriteString(vertical)
		}
		b.WriteByte('\n')
	}
}
