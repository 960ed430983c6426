package ui

import tele "gopkg.in/telebot.v4"

// Article describes one inline query answer rendered as an article.
type Article struct {
	ID          string
	Title       string
	Description string
	Text        string
	ThumbURL    string
	// ThumbSize sets width and height when ThumbURL is set; zero leaves them unset.
	ThumbSize int
}

// NewArticleResult converts a to a Telebot article result.
func NewArticleResult(a Article) *tele.ArticleResult {
	result := &tele.ArticleResult{
		Title:       a.Title,
		Description: a.Description,
		Text:        a.Text,
	}
	if a.ThumbURL != "" {
		result.ThumbURL = a.ThumbURL
		if a.ThumbSize > 0 {
			result.ThumbWidth = a.ThumbSize
			result.ThumbHeight = a.ThumbSize
		}
	}
	result.SetResultID(a.ID)
	return result
}

// ArticleResults converts a batch of articles, dropping those without a title or text.
func ArticleResults(articles []Article) tele.Results {
	results := make(tele.Results, 0, len(articles))
	for _, a := range articles {
		if a.Title == "" || a.Text == "" {
			continue
		}
		results = append(results, NewArticleResult(a))
	}
	return results
}
