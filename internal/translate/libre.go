package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/m3rciful/pixelbot/core/logger"
	"github.com/m3rciful/pixelbot/core/telegram/netutil"
)

// DefaultBaseURL is the public LibreTranslate instance.
const DefaultBaseURL = "https://libretranslate.com"

// LibreOptions configures a LibreTranslate client.
type LibreOptions struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Resolver   *Resolver
}

// Libre is a Provider over the LibreTranslate /translate endpoint.
type Libre struct {
	endpoint string
	apiKey   string
	http     *http.Client
	langs    *Resolver
}

// NewLibre builds a client. Requests are not retried.
func NewLibre(opts LibreOptions) *Libre {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = netutil.NewClient(netutil.ClientOptions{Timeout: opts.Timeout})
	}
	langs := opts.Resolver
	if langs == nil {
		langs = NewResolver()
	}
	return &Libre{endpoint: base + "/translate", apiKey: opts.APIKey, http: hc, langs: langs}
}

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreResponse struct {
	TranslatedText   string `json:"translatedText"`
	Error            string `json:"error"`
	DetectedLanguage *struct {
		Language string `json:"language"`
	} `json:"detectedLanguage"`
}

// Translate resolves both hints before any request is made.
func (l *Libre) Translate(ctx context.Context, text, srcHint, dstHint string) (Result, error) {
	src, ok := l.langs.Resolve(srcHint, true)
	if !ok {
		return Result{}, &LanguageError{Hint: srcHint}
	}
	dst, ok := l.langs.Resolve(dstHint, false)
	if !ok {
		return Result{}, &LanguageError{Hint: dstHint}
	}

	start := time.Now()
	body, err := json.Marshal(libreRequest{Q: text, Source: src, Target: dst, Format: "text", APIKey: l.apiKey})
	if err != nil {
		return Result{}, fmt.Errorf("translate: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var out libreResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil && resp.StatusCode == http.StatusOK {
		return Result{}, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		logger.SVCTranslate.LogAttrs(ctx, slog.LevelWarn, "translate.request",
			slog.String("status", "fail"),
			slog.Int("http_status", resp.StatusCode),
			slog.String("err", logger.SanitizeLimit(out.Error, 128)),
		)
		if resp.StatusCode == http.StatusBadRequest && strings.Contains(strings.ToLower(out.Error), "not supported") {
			return Result{}, fmt.Errorf("%w: %s", ErrInvalidLanguage, out.Error)
		}
		return Result{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	res := Result{Text: out.TranslatedText, SourceLang: src, TargetLang: dst}
	if src == Auto && out.DetectedLanguage != nil && out.DetectedLanguage.Language != "" {
		res.SourceLang = out.DetectedLanguage.Language
	}
	logger.SVCTranslate.LogAttrs(ctx, slog.LevelInfo, "translate.request",
		slog.String("status", "ok"),
		slog.String("src", res.SourceLang),
		slog.String("dst", res.TargetLang),
		slog.Int("chars", len([]rune(text))),
		slog.Duration("took", logger.Took(start)),
	)
	return res, nil
}
