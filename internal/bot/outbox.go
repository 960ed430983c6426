package bot

import (
	"context"

	"github.com/m3rciful/pixelbot/core/telegram/format"
	tghelpers "github.com/m3rciful/pixelbot/core/telegram/helpers"
	"github.com/m3rciful/pixelbot/core/telegram/keyboard"
	"github.com/m3rciful/pixelbot/internal/workflow"

	tele "gopkg.in/telebot.v4"
)

// outbox delivers workflow replies to the chat of one update through the
// async sender, so replies keep their order.
type outbox struct {
	c tele.Context
}

func newOutbox(c tele.Context) *outbox { return &outbox{c: c} }

func (o *outbox) Send(_ context.Context, r workflow.Reply) error {
	markup := markupFor(r.Keyboard)
	if !r.Code {
		if markup == nil {
			return tghelpers.SendText(o.c, r.Text)
		}
		return tghelpers.SendText(o.c, r.Text, &tele.SendOptions{ReplyMarkup: markup})
	}
	blocks := format.CodeBlocks(r.Text)
	for i, block := range blocks {
		var err error
		if i == len(blocks)-1 && markup != nil {
			err = tghelpers.SendMD(o.c, block, markup)
		} else {
			err = tghelpers.SendMD(o.c, block)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func markupFor(k workflow.Keyboard) *tele.ReplyMarkup {
	switch k {
	case workflow.RemoveKeyboard:
		return keyboard.RemoveKeyboard()
	case workflow.RepeatKeyboard:
		return keyboard.ReplyButtons([]string{"/cancel"})
	case workflow.TranslateCancel:
		return keyboard.SingleCancelMarkup(cbTranslateCancel)
	}
	return nil
}
