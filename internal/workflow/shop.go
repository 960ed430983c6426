package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/pixelbot/core/logger"
	"github.com/m3rciful/pixelbot/internal/catalog"
	"github.com/m3rciful/pixelbot/internal/conversation"
	"github.com/m3rciful/pixelbot/internal/render"
)

// ErrNotSelectable is returned when the selected text is not a catalog page.
var ErrNotSelectable = errors.New("workflow: selection is not a catalog product")

// StepResult is the outcome of one chain step.
type StepResult struct {
	Step conversation.ShopStep
	Rows int
	Took time.Duration
	Err  error
}

// ChainReport lists the steps that ran, in order. A failed step is always last.
type ChainReport struct {
	DetailURL string
	Steps     []StepResult
}

// Completed reports whether every step ran without error.
func (r ChainReport) Completed() bool {
	return len(r.Steps) == len(chainSteps) && r.Err() == nil
}

// Err returns the error of the failed step, if any.
func (r ChainReport) Err() error {
	if n := len(r.Steps); n > 0 {
		return r.Steps[n-1].Err
	}
	return nil
}

type chainStep struct {
	step conversation.ShopStep
	run  func(s *Service, ctx context.Context, detailURL string) ([]Reply, int, error)
}

var chainSteps = []chainStep{
	{step: conversation.ShopDetail, run: (*Service).specsStep},
	{step: conversation.ShopReviews, run: (*Service).reviewsStep},
	{step: conversation.ShopOffers, run: (*Service).offersStep},
}

// InlineShop searches the catalog and, when anything is found, moves the
// user to product selection. A failed search leaves the user Idle. A user
// with a running chain gets ErrBusy and the session stays as it was.
func (s *Service) InlineShop(ctx context.Context, userID int64, query string) ([]catalog.ListingItem, error) {
	query = strings.TrimSpace(query)
	if query == "" || s.catalog == nil {
		return nil, nil
	}
	txn, err := s.sessions.Begin(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer finish(txn)

	items, err := s.catalog.Search(txn.Context(), query, SearchLimit)
	if err != nil {
		txn.Reset()
		logger.SVCShop.LogAttrs(ctx, slog.LevelWarn, "shop.search",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return nil, err
	}
	if len(items) > 0 {
		if _, err := txn.Apply(conversation.Event{Kind: conversation.EventShopQuery, Text: query}); err != nil {
			return nil, err
		}
	}
	logger.SVCShop.LogAttrs(ctx, slog.LevelInfo, "shop.search",
		slog.String("status", "ok"),
		slog.String("query", logger.SanitizeLimit(query, 64)),
		slog.Int("items", len(items)),
	)
	return items, nil
}

// RunChain treats detailURL as the user's product selection and runs the
// detail, reviews and offers steps.
func (s *Service) RunChain(ctx context.Context, userID int64, detailURL string, out Outbox) (ChainReport, error) {
	txn, ok := s.begin(ctx, userID, out)
	if !ok {
		return ChainReport{DetailURL: detailURL}, conversation.ErrBusy
	}
	defer finish(txn)
	return s.selectProduct(txn, detailURL, out)
}

func (s *Service) selectProduct(txn *conversation.Txn, text string, out Outbox) (ChainReport, error) {
	ctx := txn.Context()
	detailURL := strings.TrimSpace(text)
	report := ChainReport{DetailURL: detailURL}
	if s.catalog == nil || !s.catalog.IsDetailURL(detailURL) {
		s.send(ctx, out, Reply{Text: msgPickProduct})
		return report, ErrNotSelectable
	}
	tr, err := txn.Apply(conversation.Event{Kind: conversation.EventText, Text: detailURL})
	if err != nil {
		return report, err
	}
	if tr.Effect != conversation.EffectRunChain {
		return report, conversation.ErrNoTransition
	}

	s.send(ctx, out, Reply{Text: msgChainStart})
	s.send(ctx, out, Reply{Text: msgChainTip})

	for _, cs := range chainSteps {
		start := time.Now()
		replies, rows, err := cs.run(s, ctx, detailURL)
		res := StepResult{Step: cs.step, Rows: rows, Took: logger.Took(start), Err: err}
		report.Steps = append(report.Steps, res)
		logChainStep(ctx, res)
		if err != nil {
			return report, s.abortChain(ctx, txn, err, out)
		}
		for _, r := range replies {
			if r.Code {
				if err := pause(ctx, s.delays.Chain); err != nil {
					report.Steps[len(report.Steps)-1].Err = err
					return report, s.abortChain(ctx, txn, err, out)
				}
			}
			s.send(ctx, out, r)
		}
		if _, err := txn.Apply(conversation.Event{Kind: conversation.EventChainStep, Step: cs.step}); err != nil {
			txn.Reset()
			return report, err
		}
	}
	return report, nil
}

// abortChain resets the session before the user hears about the failure.
func (s *Service) abortChain(ctx context.Context, txn *conversation.Txn, err error, out Outbox) error {
	txn.Reset()
	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		s.send(context.WithoutCancel(ctx), out, Reply{Text: msgChainCancelled})
		return err
	}
	s.send(ctx, out, Reply{Text: msgChainFailed})
	return err
}

func logChainStep(ctx context.Context, res StepResult) {
	level := slog.LevelInfo
	if res.Err != nil {
		level = slog.LevelWarn
	}
	attrs := []slog.Attr{
		slog.String("status", logger.Status(res.Err)),
		slog.String("step", res.Step.String()),
		slog.Int("rows", res.Rows),
		slog.Duration("took", res.Took),
	}
	if res.Err != nil {
		attrs = append(attrs, slog.String("err", res.Err.Error()))
	}
	logger.SVCShop.LogAttrs(ctx, level, "shop.chain.step", attrs...)
}

func (s *Service) specsStep(ctx context.Context, detailURL string) ([]Reply, int, error) {
	specs, err := s.catalog.Specs(ctx, detailURL)
	if err != nil {
		return nil, 0, err
	}
	rows := make([][]string, 0, len(specs))
	for _, sp := range specs {
		rows = append(rows, []string{sp.Category, sp.Description})
	}
	return []Reply{
		{Text: msgSpecsTitle},
		{Text: render.Table([]string{"Category", "Description"}, rows), Code: true},
	}, len(rows), nil
}

func (s *Service) reviewsStep(ctx context.Context, detailURL string) ([]Reply, int, error) {
	reviews, err := s.catalog.Reviews(ctx, detailURL)
	if err != nil {
		return nil, 0, err
	}
	if len(reviews) == 0 {
		return []Reply{{Text: msgReviewsTitle}, {Text: msgNoReviews}}, 0, nil
	}
	rows := make([][]string, 0, len(reviews))
	for _, r := range reviews {
		rows = append(rows, []string{r.Author, r.Date, r.Body})
	}
	table := render.Table([]string{"User", "Date", "Content"}, rows, render.WrapColumn(2, ReviewWidth))
	return []Reply{{Text: msgReviewsTitle}, {Text: table, Code: true}}, len(rows), nil
}

func (s *Service) offersStep(ctx context.Context, detailURL string) ([]Reply, int, error) {
	offers, err := s.catalog.Offers(ctx, detailURL)
	if err != nil {
		return nil, 0, err
	}
	if len(offers) > MaxOffers {
		offers = offers[:MaxOffers]
	}
	rows := make([][]string, 0, len(offers))
	for _, o := range offers {
		rows = append(rows, []string{o.Merchant, o.Price, o.Link})
	}
	return []Reply{
		{Text: msgOffersTitle},
		{Text: render.Table([]string{"Name", "Price", "Link"}, rows), Code: true},
	}, len(rows), nil
}
