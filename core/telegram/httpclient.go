package telegram

import (
	"net/http"
	"time"

	"github.com/m3rciful/pixelbot/core/telegram/netutil"
)

// BuildHTTPClient returns an HTTP client tuned for Telegram API calls.
// Long polling holds requests open, so the client timeout exceeds the poll timeout.
func BuildHTTPClient(longPollTimeout time.Duration) *http.Client {
	timeout := 30 * time.Second
	if longPollTimeout+10*time.Second > timeout {
		timeout = longPollTimeout + 10*time.Second
	}
	return netutil.NewClient(netutil.ClientOptions{
		Timeout:         timeout,
		ResponseTimeout: timeout,
		MaxRetries:      3,
		RetryBackoff:    2 * time.Second,
	})
}
