// Package keyboard builds the reply and inline markups the bot attaches to messages.
package keyboard

import tele "gopkg.in/telebot.v4"

// CancelText labels inline cancel buttons.
const CancelText = "❌ Cancel"

// RemoveKeyboard hides any reply keyboard the client is showing.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// ReplyButtons lays out one reply keyboard row per argument.
func ReplyButtons(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	for _, labels := range rows {
		row := make([]tele.ReplyButton, len(labels))
		for i, label := range labels {
			row[i] = tele.ReplyButton{Text: label}
		}
		markup.ReplyKeyboard = append(markup.ReplyKeyboard, row)
	}
	return markup
}

// OneTime hides the reply keyboard after its first use.
func OneTime(markup *tele.ReplyMarkup) *tele.ReplyMarkup {
	markup.OneTimeKeyboard = true
	return markup
}

// InlineQueryButton opens an inline query prefilled with query in the current chat.
func InlineQueryButton(text, query string) *tele.ReplyMarkup {
	return &tele.ReplyMarkup{InlineKeyboard: [][]tele.InlineButton{{
		{Text: text, InlineQueryChat: query},
	}}}
}

// SingleCancelMarkup is one inline button that fires the callback unique.
func SingleCancelMarkup(unique string) *tele.ReplyMarkup {
	return &tele.ReplyMarkup{InlineKeyboard: [][]tele.InlineButton{{
		{Unique: unique, Text: CancelText, Data: "cancel"},
	}}}
}
