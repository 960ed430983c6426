package catalog

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/m3rciful/pixelbot/core/logger"
	"github.com/m3rciful/pixelbot/internal/extract"
)

func (c *Client) fetchDocument(ctx context.Context, target string) (*goquery.Document, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &FetchError{URL: target, Err: err}
	}
	req.Header.Set("Accept", "text/html")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &FetchError{URL: target, Status: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{URL: target, Err: err}
	}

	logger.SVCShop.LogAttrs(ctx, slog.LevelDebug, "catalog.page.fetch",
		slog.String("url", logger.SanitizeLimit(target, 256)),
		slog.Int("bytes", len(body)),
		slog.Duration("took", logger.Took(start)),
	)
	return extract.Parse(string(body))
}
