package bot

import (
	"fmt"
	"html"

	"github.com/m3rciful/pixelbot/core/logger"
	"github.com/m3rciful/pixelbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/pixelbot/core/telegram/helpers"
	"github.com/m3rciful/pixelbot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

const (
	inlineNotes = "notes"
	inlineShop  = "shop"

	cbTranslateCancel = "translate_cancel"
)

func (a *App) register() {
	cmds := map[string]commands.Command{
		"/start":       {Handler: a.start, Description: "Say hello"},
		"/menu":        {Handler: a.menu, Description: "Main menu"},
		"/repeat":      {Handler: a.repeat, Description: "Repeat after me"},
		"/cancel":      {Handler: a.cancel, Description: "Cancel the current task", Aliases: []string{"stop_repeat"}},
		"/notes":       {Handler: a.notesMenu, Description: "Notes"},
		"/note_new":    {Handler: a.noteNew, Description: "Create a note"},
		"/note_last":   {Handler: a.noteLast, Description: "Show the last note"},
		"/note_search": {Handler: a.noteSearch, Description: "Search notes"},
		"/extra":       {Handler: a.extraMenu, Description: "Extra features"},
		"/joke":        {Handler: a.joke, Description: "Random joke"},
		"/translate":   {Handler: a.translate, Description: "Translate text"},
		"/shop":        {Handler: a.shop, Description: "Search products in shops"},
		"/sessions":    {Handler: a.sessions, Description: "Live sessions", AdminOnly: true, Hidden: true},
	}
	for name, cmd := range cmds {
		_ = a.reg.RegisterCommand(name, cmd)
	}
	_ = a.reg.RegisterCallback(cbTranslateCancel, a.cancel)
	a.reg.SetTextFallback(a.fallback)
}

func (a *App) start(c tele.Context) error {
	name := "friend"
	if u := c.Sender(); u != nil && u.FirstName != "" {
		name = u.FirstName
	}
	return tghelpers.SendText(c, fmt.Sprintf(msgGreeting, html.EscapeString(name)), &tele.SendOptions{ParseMode: tele.ModeHTML})
}

func (a *App) menu(c tele.Context) error {
	markup := keyboard.OneTime(keyboard.ReplyButtons(
		[]string{"/repeat", "/notes"},
		[]string{"/extra", "/shop"},
	))
	return tghelpers.SendText(c, msgMenu, &tele.SendOptions{ReplyMarkup: markup})
}

func (a *App) notesMenu(c tele.Context) error {
	markup := keyboard.ReplyButtons(
		[]string{"/note_new", "/note_last"},
		[]string{"/note_search"},
	)
	return tghelpers.SendText(c, msgChoose, &tele.SendOptions{ReplyMarkup: markup})
}

func (a *App) extraMenu(c tele.Context) error {
	markup := keyboard.ReplyButtons([]string{"/joke", "/translate"})
	return tghelpers.SendText(c, msgChoose, &tele.SendOptions{ReplyMarkup: markup})
}

func (a *App) repeat(c tele.Context) error {
	a.svc.StartRepeat(tghelpers.BuildContext(c), tghelpers.SenderID(c), newOutbox(c))
	return nil
}

func (a *App) cancel(c tele.Context) error {
	a.svc.Cancel(tghelpers.BuildContext(c), tghelpers.SenderID(c), newOutbox(c))
	return nil
}

func (a *App) noteNew(c tele.Context) error {
	a.svc.StartNote(tghelpers.BuildContext(c), tghelpers.SenderID(c), newOutbox(c))
	return nil
}

func (a *App) noteLast(c tele.Context) error {
	return a.svc.LastNote(tghelpers.BuildContext(c), tghelpers.SenderID(c), newOutbox(c))
}

func (a *App) noteSearch(c tele.Context) error {
	return tghelpers.SendText(c, msgNoteSearch, &tele.SendOptions{
		ReplyMarkup: keyboard.InlineQueryButton(msgSearch, inlineNotes+":"),
	})
}

func (a *App) joke(c tele.Context) error {
	return a.svc.Joke(tghelpers.BuildContext(c), newOutbox(c))
}

func (a *App) translate(c tele.Context) error {
	a.svc.StartTranslate(tghelpers.BuildContext(c), tghelpers.SenderID(c), newOutbox(c))
	return nil
}

func (a *App) shop(c tele.Context) error {
	return tghelpers.SendText(c, msgShopSearch, &tele.SendOptions{
		ReplyMarkup: keyboard.InlineQueryButton(msgSearch, inlineShop+":"),
	})
}

func (a *App) sessions(c tele.Context) error {
	return tghelpers.SendText(c, fmt.Sprintf(msgSessions, a.svc.SessionCount()))
}

func (a *App) fallback(c tele.Context) error {
	return tghelpers.SendText(c, msgFallback)
}

func (a *App) unexpectedDocument(c tele.Context) error {
	return tghelpers.SendText(c, msgDocument)
}

func (a *App) adminReject(c tele.Context) error {
	logger.Warn(tghelpers.BuildContext(c), "tg", "admin.reject")
	return tghelpers.SendText(c, msgAdminOnly)
}

func (a *App) rateLimited(c tele.Context) error {
	if c.Query() != nil {
		return nil
	}
	return tghelpers.SendText(c, msgRateLimited)
}

func (a *App) staleButton(c tele.Context) error {
	return tghelpers.SendText(c, msgStaleButton)
}
