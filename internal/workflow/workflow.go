// Package workflow turns user events into conversation transitions and runs
// the side effects each transition asks for.
package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/m3rciful/pixelbot/core/logger"
	"github.com/m3rciful/pixelbot/internal/catalog"
	"github.com/m3rciful/pixelbot/internal/conversation"
	"github.com/m3rciful/pixelbot/internal/joke"
	"github.com/m3rciful/pixelbot/internal/records"
	"github.com/m3rciful/pixelbot/internal/translate"
)

// Keyboard selects the reply keyboard attached to a message.
type Keyboard int

const (
	KeepKeyboard Keyboard = iota
	RemoveKeyboard
	// RepeatKeyboard offers the stop button while echoing.
	RepeatKeyboard
	// TranslateCancel is an inline cancel button under a translation prompt.
	TranslateCancel
)

// Reply is one outbound message.
type Reply struct {
	Text string
	// Code renders Text as a monospace block.
	Code     bool
	Keyboard Keyboard
}

// Outbox delivers replies to the user an event came from.
type Outbox interface {
	Send(ctx context.Context, r Reply) error
}

// Catalog is the part of catalog.Client the workflow needs.
type Catalog interface {
	Search(ctx context.Context, query string, limit int) ([]catalog.ListingItem, error)
	IsDetailURL(raw string) bool
	Specs(ctx context.Context, detailURL string) ([]catalog.SpecRow, error)
	Reviews(ctx context.Context, detailURL string) ([]catalog.Review, error)
	Offers(ctx context.Context, detailURL string) ([]catalog.ShopOffer, error)
}

// Delays are the pauses between messages. Zero values disable a pause.
type Delays struct {
	JokeSetup     time.Duration
	JokePunchline time.Duration
	Chain         time.Duration
}

// DefaultDelays match the pacing users of the bot are used to.
var DefaultDelays = Delays{JokeSetup: time.Second, JokePunchline: 3 * time.Second, Chain: time.Second}

const (
	// SearchLimit caps inline results for notes and products.
	SearchLimit = 20
	// MaxOffers is the number of shop offers rendered.
	MaxOffers = 7
	// ReviewWidth is the column width review bodies are wrapped to.
	ReviewWidth = 50
)

type Options struct {
	Sessions   *conversation.Manager
	Records    records.Store
	Catalog    Catalog
	Translator translate.Provider
	Jokes      joke.Source
	Delays     Delays
}

// Service handles one user event per method call. It is safe for
// concurrent use; events of one user are serialised by the session lease.
type Service struct {
	sessions   *conversation.Manager
	records    records.Store
	catalog    Catalog
	translator translate.Provider
	jokes      joke.Source
	delays     Delays
}

func New(opts Options) *Service {
	if opts.Sessions == nil {
		opts.Sessions = conversation.NewManager(conversation.Options{})
	}
	if opts.Records == nil {
		opts.Records = records.NewMemory()
	}
	return &Service{
		sessions:   opts.Sessions,
		records:    opts.Records,
		catalog:    opts.Catalog,
		translator: opts.Translator,
		jokes:      opts.Jokes,
		delays:     opts.Delays,
	}
}

// Sessions exposes the session manager for routing decisions.
func (s *Service) Sessions() *conversation.Manager { return s.sessions }

// begin leases the user's session. A busy user gets a notice and ok=false.
func (s *Service) begin(ctx context.Context, userID int64, out Outbox) (*conversation.Txn, bool) {
	txn, err := s.sessions.Begin(ctx, userID)
	if err != nil {
		if errors.Is(err, conversation.ErrBusy) {
			s.send(ctx, out, Reply{Text: msgBusy})
		}
		return nil, false
	}
	return txn, true
}

// finish ends txn. A panic resets the session first and is re-raised for
// the recover middleware.
func finish(txn *conversation.Txn) {
	if r := recover(); r != nil {
		txn.Reset()
		txn.End()
		panic(r)
	}
	txn.End()
}

// start applies a top level event that replaces any live flow.
func (s *Service) start(ctx context.Context, userID int64, kind conversation.EventKind, out Outbox, replies ...Reply) {
	txn, ok := s.begin(ctx, userID, out)
	if !ok {
		return
	}
	defer finish(txn)
	if _, err := txn.Apply(conversation.Event{Kind: kind}); err != nil {
		logger.FSM.LogAttrs(ctx, slog.LevelWarn, "fsm.transition", slog.String("status", "fail"), slog.String("err", err.Error()))
		return
	}
	for _, r := range replies {
		s.send(txn.Context(), out, r)
	}
}

// StartRepeat makes the bot echo every text until the user cancels.
func (s *Service) StartRepeat(ctx context.Context, userID int64, out Outbox) {
	s.start(ctx, userID, conversation.EventStartRepeat, out, Reply{Text: msgRepeatStart, Keyboard: RepeatKeyboard})
}

// Cancel ends the live flow. A running transition is interrupted instead and
// resets the session itself once its fetch aborts.
func (s *Service) Cancel(ctx context.Context, userID int64, out Outbox) {
	txn, err := s.sessions.Begin(ctx, userID)
	if errors.Is(err, conversation.ErrBusy) {
		if s.sessions.Interrupt(userID) {
			logger.FSM.LogAttrs(ctx, slog.LevelInfo, "fsm.interrupt", slog.Int64("user_id", userID))
		}
		s.send(ctx, out, Reply{Text: msgStopping, Keyboard: RemoveKeyboard})
		return
	}
	if err != nil {
		return
	}
	defer finish(txn)
	was := txn.Session().State()
	_, _ = txn.Apply(conversation.Event{Kind: conversation.EventCancel})
	text := msgCancelled
	if was == conversation.Idle {
		text = msgNothingToCancel
	}
	s.send(ctx, out, Reply{Text: text, Keyboard: RemoveKeyboard})
}

// SessionCount returns the number of live sessions.
func (s *Service) SessionCount() int { return s.sessions.Len() }

// HandleText routes free text to the live flow. It reports false when the
// user is Idle so the caller can answer with its fallback.
func (s *Service) HandleText(ctx context.Context, userID int64, text string, out Outbox) (bool, error) {
	txn, ok := s.begin(ctx, userID, out)
	if !ok {
		return true, nil
	}
	defer finish(txn)

	from := txn.Session()
	if from.Flow == nil {
		return false, nil
	}
	if _, isShop := from.Flow.(conversation.ShopFlow); isShop {
		if _, err := s.selectProduct(txn, text, out); err != nil && !errors.Is(err, ErrNotSelectable) {
			return true, err
		}
		return true, nil
	}

	tr, err := txn.Apply(conversation.Event{Kind: conversation.EventText, Text: text})
	if err != nil {
		return false, nil
	}
	ctx = txn.Context()
	switch tr.Effect {
	case conversation.EffectEcho:
		s.send(ctx, out, Reply{Text: tr.Payload, Keyboard: RepeatKeyboard})
	case conversation.EffectSaveNote:
		return true, s.saveNote(ctx, txn, tr.Payload, out)
	case conversation.EffectAskTargetLang:
		s.send(ctx, out, Reply{Text: msgAskTargetLang, Keyboard: TranslateCancel})
	case conversation.EffectAskText:
		s.send(ctx, out, Reply{Text: msgAskText, Keyboard: TranslateCancel})
	case conversation.EffectTranslate:
		f, _ := from.Flow.(conversation.TranslateFlow)
		return true, s.translate(ctx, txn, f, tr.Payload, out)
	}
	return true, nil
}

func (s *Service) send(ctx context.Context, out Outbox, r Reply) {
	if out == nil || r.Text == "" {
		return
	}
	if err := out.Send(ctx, r); err != nil {
		logger.TG.LogAttrs(ctx, slog.LevelWarn, "outbox.send",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
}

// pause waits for d unless ctx ends first.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
