package bot

import (
	"errors"
	"log/slog"
	"time"

	"github.com/m3rciful/pixelbot/core/logger"
	tghelpers "github.com/m3rciful/pixelbot/core/telegram/helpers"
	"github.com/m3rciful/pixelbot/core/telegram/router"
	"github.com/m3rciful/pixelbot/core/telegram/ui"
	"github.com/m3rciful/pixelbot/internal/catalog"
	"github.com/m3rciful/pixelbot/internal/conversation"
	"github.com/m3rciful/pixelbot/internal/records"

	tele "gopkg.in/telebot.v4"
)

const thumbSize = 48

func (a *App) inlineNotes(c tele.Context) error {
	_, query := router.InlinePrefix(c.Query().Text)
	notes, err := a.svc.SearchNotes(tghelpers.BuildContext(c), tghelpers.SenderID(c), query)
	if err != nil {
		_ = answer(c, nil)
		return err
	}
	return answer(c, noteArticles(notes, a.newID))
}

func (a *App) inlineShop(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	_, query := router.InlinePrefix(c.Query().Text)
	items, err := a.svc.InlineShop(ctx, tghelpers.SenderID(c), query)
	switch {
	case errors.Is(err, conversation.ErrBusy):
		logger.SVCShop.LogAttrs(ctx, slog.LevelDebug, "shop.search", slog.String("status", "skip"), slog.String("reason", "busy"))
		return answer(c, nil)
	case err != nil:
		_ = answer(c, nil)
		return err
	}
	return answer(c, shopArticles(items, a.newID))
}

func answer(c tele.Context, articles []ui.Article) error {
	return c.Answer(&tele.QueryResponse{
		Results:    ui.ArticleResults(articles),
		CacheTime:  0,
		IsPersonal: true,
	})
}

func noteArticles(notes []records.Note, newID func() string) []ui.Article {
	out := make([]ui.Article, 0, len(notes))
	for _, n := range notes {
		out = append(out, ui.Article{
			ID:          newID(),
			Title:       n.Text,
			Description: noteCreated + n.CreatedAt.Local().Format(time.DateTime),
			Text:        notePrefix + n.Text,
		})
	}
	return out
}

func shopArticles(items []catalog.ListingItem, newID func() string) []ui.Article {
	out := make([]ui.Article, 0, len(items))
	for _, it := range items {
		out = append(out, ui.Article{
			ID:          newID(),
			Title:       shopName + it.Title,
			Description: shopPrice + it.PriceText,
			Text:        it.DetailURL,
			ThumbURL:    it.ThumbnailURL,
			ThumbSize:   thumbSize,
		})
	}
	return out
}
