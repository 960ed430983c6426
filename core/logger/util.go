package logger

import (
	"fmt"
	"strings"
	"time"
)

// Status is the status attribute for an operation that returned err.
func Status(err error) string {
	if err == nil {
		return "ok"
	}
	return "fail"
}

// RoundMS rounds d to milliseconds; negative durations become zero.
func RoundMS(d time.Duration) time.Duration {
	return max(d, 0).Round(time.Millisecond)
}

// Took is RoundMS(time.Since(start)).
func Took(start time.Time) time.Duration { return RoundMS(time.Since(start)) }

// Millis is d in whole milliseconds.
func Millis(d time.Duration) int { return int(RoundMS(d).Milliseconds()) }

// Preview joins at most limit values and notes how many were left out,
// e.g. "a, b (+3 more)".
func Preview(values []string, limit int) string {
	limit = max(limit, 0)
	if len(values) <= limit {
		return strings.Join(values, ", ")
	}
	return fmt.Sprintf("%s (+%d more)", strings.Join(values[:limit], ", "), len(values)-limit)
}
