package logger

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	assert.Equal(t, "ok", Status(nil))
	assert.Equal(t, "fail", Status(errors.New("x")))
}

func TestRoundMS(t *testing.T) {
	assert.Equal(t, 2*time.Millisecond, RoundMS(1600*time.Microsecond))
	assert.Zero(t, RoundMS(-time.Second))
	assert.Equal(t, 1500, Millis(1500*time.Millisecond))
}

func TestPreview(t *testing.T) {
	files := []string{"1_init.up.sql", "2_notes.up.sql", "3_translations.up.sql"}
	assert.Equal(t, "1_init.up.sql, 2_notes.up.sql (+1 more)", Preview(files, 2))
	assert.Equal(t, "1_init.up.sql, 2_notes.up.sql, 3_translations.up.sql", Preview(files, 6))
	assert.Equal(t, " (+3 more)", Preview(files, 0))
}
