// Package catalog scrapes product listings and product pages from e-catalog.md.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/m3rciful/pixelbot/core/logger"
	"github.com/m3rciful/pixelbot/core/telegram/netutil"
	"github.com/m3rciful/pixelbot/internal/extract"
)

const (
	DefaultBaseURL  = "https://e-catalog.md"
	DefaultMaxPages = 10
	DefaultCacheTTL = 2 * time.Minute
	searchPath      = "/ro/search"
	maxBodyBytes    = 8 << 20
)

// Options configures a Client. Zero values take defaults.
type Options struct {
	BaseURL    string
	MaxPages   int
	CacheTTL   time.Duration
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
}

// Client fetches catalog pages. Requests are never retried.
type Client struct {
	base     *url.URL
	http     *http.Client
	maxPages int
	results  *cache.Cache
}

// New validates opts and builds a Client.
func New(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(raw)
	if err != nil || base.Host == "" || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, fmt.Errorf("catalog: invalid base url %q", raw)
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = netutil.NewClient(netutil.ClientOptions{
			Timeout:   opts.Timeout,
			UserAgent: opts.UserAgent,
		})
	}
	return &Client{
		base:     base,
		http:     hc,
		maxPages: opts.MaxPages,
		results:  cache.New(opts.CacheTTL, 2*opts.CacheTTL),
	}, nil
}

// IsDetailURL reports whether raw is an absolute link to a page on the catalog host.
func (c *Client) IsDetailURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	want := strings.TrimPrefix(strings.ToLower(c.base.Hostname()), "www.")
	if host != want || u.Port() != c.base.Port() {
		return false
	}
	return strings.Trim(u.Path, "/") != ""
}

// Search collects up to limit listing items for query, walking pages from 1
// until the limit is met, a page yields no usable item or the page bound is
// reached.
// Any failed page aborts the search without a partial result.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]ListingItem, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if limit <= 0 || query == "" {
		return []ListingItem{}, nil
	}
	key := query + "|" + strconv.Itoa(limit)
	if v, ok := c.results.Get(key); ok {
		cached := v.([]ListingItem)
		logger.SVCShop.LogAttrs(ctx, slog.LevelDebug, "catalog.search.cache_hit",
			slog.Int("items", len(cached)),
		)
		return append([]ListingItem(nil), cached...), nil
	}

	start := time.Now()
	items := make([]ListingItem, 0, limit)
	pages := 0
	for page := 1; page <= c.maxPages && len(items) < limit; page++ {
		doc, err := c.fetchDocument(ctx, c.searchURL(query, page))
		if err != nil {
			logger.SVCShop.LogAttrs(ctx, slog.LevelWarn, "catalog.search",
				slog.String("status", "fail"),
				slog.Int("page", page),
				slog.String("err", err.Error()),
			)
			return nil, err
		}
		pages++
		before := len(items)
		for _, row := range extract.ApplyRows(doc.Selection, listingRow, listingSchema) {
			if len(items) == limit {
				break
			}
			if item, ok := c.listingItem(row); ok {
				items = append(items, item)
			}
		}
		if len(items) == before {
			break
		}
	}

	c.results.SetDefault(key, append([]ListingItem(nil), items...))
	logger.SVCShop.LogAttrs(ctx, slog.LevelInfo, "catalog.search",
		slog.String("status", "ok"),
		slog.Int("pages", pages),
		slog.Int("items", len(items)),
		slog.Duration("took", logger.Took(start)),
	)
	return items, nil
}

func (c *Client) listingItem(row extract.Result) (ListingItem, bool) {
	if !row.Has("title", "href") {
		return ListingItem{}, false
	}
	item := ListingItem{
		Title:     row.Get("title").String(),
		PriceText: row.Get("price").Or(PriceNotFound),
		DetailURL: c.resolve(row.Get("href").String()),
	}
	if item.PriceText == "" {
		item.PriceText = PriceNotFound
	}
	if thumb := row.Get("thumb"); thumb.Ok() && thumb.String() != "" {
		item.ThumbnailURL = c.resolve(thumb.String())
	}
	return item, true
}

// Specs scrapes the specification table of a product page.
func (c *Client) Specs(ctx context.Context, detailURL string) ([]SpecRow, error) {
	rows, err := c.detailRows(ctx, detailURL, specRow, specSchema)
	if err != nil {
		return nil, err
	}
	out := make([]SpecRow, 0, len(rows))
	for _, r := range rows {
		if !r.Has("name") {
			continue
		}
		out = append(out, SpecRow{Category: r.Get("name").String(), Description: r.Get("value").String()})
	}
	return out, nil
}

// Reviews scrapes customer reviews. Reviews with an empty body are skipped.
func (c *Client) Reviews(ctx context.Context, detailURL string) ([]Review, error) {
	rows, err := c.detailRows(ctx, detailURL, reviewRow, reviewSchema)
	if err != nil {
		return nil, err
	}
	out := make([]Review, 0, len(rows))
	for _, r := range rows {
		if !r.Has("body") {
			continue
		}
		out = append(out, Review{
			Author: r.Get("author").String(),
			Date:   r.Get("date").String(),
			Body:   r.Get("body").String(),
		})
	}
	return out, nil
}

// Offers scrapes merchant prices from a product page.
func (c *Client) Offers(ctx context.Context, detailURL string) ([]ShopOffer, error) {
	rows, err := c.detailRows(ctx, detailURL, offerRow, offerSchema)
	if err != nil {
		return nil, err
	}
	out := make([]ShopOffer, 0, len(rows))
	for _, r := range rows {
		if !r.Has("merchant", "price") {
			continue
		}
		offer := ShopOffer{Merchant: r.Get("merchant").String(), Price: r.Get("price").String()}
		if link := r.Get("link").String(); link != "" {
			offer.Link = c.resolve(link)
		}
		out = append(out, offer)
	}
	return out, nil
}

func (c *Client) detailRows(ctx context.Context, detailURL, rowSelector string, schema extract.Schema) ([]extract.Result, error) {
	if !c.IsDetailURL(detailURL) {
		return nil, &FetchError{URL: detailURL, Err: errors.New("not a catalog page")}
	}
	doc, err := c.fetchDocument(ctx, detailURL)
	if err != nil {
		return nil, err
	}
	return extract.ApplyRows(doc.Selection, rowSelector, schema), nil
}

func (c *Client) searchURL(query string, page int) string {
	u := c.base.ResolveReference(&url.URL{Path: searchPath})
	q := url.Values{}
	q.Set("q", query)
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Client) resolve(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return c.base.ResolveReference(u).String()
}
