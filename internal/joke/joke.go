// Package joke fetches a random two-part joke from the Official Joke API.
package joke

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/m3rciful/pixelbot/core/logger"
	"github.com/m3rciful/pixelbot/core/telegram/netutil"
)

// DefaultURL returns one random joke per request.
const DefaultURL = "https://official-joke-api.appspot.com/random_joke"

// ErrUnavailable covers transport failures, bad statuses and incomplete jokes.
var ErrUnavailable = errors.New("joke: source unavailable")

// Joke is delivered as two messages with a pause in between.
type Joke struct {
	Setup     string `json:"setup"`
	Punchline string `json:"punchline"`
}

// Source returns a random joke.
type Source interface {
	Random(ctx context.Context) (Joke, error)
}

type Options struct {
	URL        string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client is the HTTP Source.
type Client struct {
	url  string
	http *http.Client
}

func New(opts Options) *Client {
	u := strings.TrimSpace(opts.URL)
	if u == "" {
		u = DefaultURL
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = netutil.NewClient(netutil.ClientOptions{Timeout: opts.Timeout, MaxRetries: 1})
	}
	return &Client{url: u, http: hc}
}

func (c *Client) Random(ctx context.Context) (Joke, error) {
	start := time.Now()
	j, err := c.fetch(ctx)
	logger.SVCJokes.LogAttrs(ctx, levelFor(err), "joke.fetch",
		slog.String("status", logger.Status(err)),
		slog.Duration("took", logger.Took(start)),
	)
	return j, err
}

func (c *Client) fetch(ctx context.Context) (Joke, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Joke{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return Joke{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Joke{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	var j Joke
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&j); err != nil {
		return Joke{}, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	j.Setup = strings.TrimSpace(j.Setup)
	j.Punchline = strings.TrimSpace(j.Punchline)
	if j.Setup == "" || j.Punchline == "" {
		return Joke{}, fmt.Errorf("%w: incomplete joke", ErrUnavailable)
	}
	return j, nil
}

func levelFor(err error) slog.Level {
	if err != nil {
		return slog.LevelWarn
	}
	return slog.LevelInfo
}
