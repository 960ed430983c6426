package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeMarkdown(t *testing.T) {
	v1, err := EscapeMarkdown("a_b*c", MarkdownV1)
	require.NoError(t, err)
	assert.Equal(t, `a\_b\*c`, v1)

	v2, err := EscapeMarkdown("1.5 (ok)!", MarkdownV2)
	require.NoError(t, err)
	assert.Equal(t, `1\.5 \(ok\)\!`, v2)

	_, err = EscapeMarkdown("x", 3)
	assert.Error(t, err)
}

func TestCodeBlockStripsBackticks(t *testing.T) {
	assert.Equal(t, "```\na'b\n```", CodeBlock("a`b"))
}

func TestCodeBlocksSplitsOnLines(t *testing.T) {
	line := strings.Repeat("═", 100)
	var lines []string
	for i := 0; i < 40; i++ {
		lines = append(lines, line)
	}
	blocks := CodeBlocks(strings.Join(lines, "\n"))
	require.Greater(t, len(blocks), 1)

	total := 0
	for _, b := range blocks {
		assert.LessOrEqual(t, len(b), MaxMessageLen)
		assert.True(t, strings.HasPrefix(b, "```\n"))
		body := strings.TrimSuffix(strings.TrimPrefix(b, "```\n"), "\n```")
		for _, l := range strings.Split(body, "\n") {
			assert.Equal(t, line, l, "lines must not be cut")
			total++
		}
	}
	assert.Equal(t, 40, total)
}

func TestCodeBlocksShortText(t *testing.T) {
	assert.Equal(t, []string{"```\nhi\n```"}, CodeBlocks("hi"))
}
