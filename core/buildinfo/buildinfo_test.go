package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	v, c, d := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = v, c, d })

	Version, Commit, Date = "v1.2.3", "abcdef0123", ""
	assert.Equal(t, "v1.2.3 (abcdef0)", String())

	Date = "2026-10-14T12:00:00Z"
	assert.Equal(t, "v1.2.3 (abcdef0, 2026-10-14T12:00:00Z)", String())
}
