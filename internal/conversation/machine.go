package conversation

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultMaxLanguageAttempts bounds rejected language choices before giving up.
const DefaultMaxLanguageAttempts = 3

// MaxTranslateRunes is the longest text sent for translation.
const MaxTranslateRunes = 1000

// ErrNoTransition is returned for events that do not apply to the current state.
var ErrNoTransition = errors.New("conversation: no transition")

// EventKind enumerates inputs to the machine.
type EventKind int

const (
	EventStartRepeat EventKind = iota
	EventStartNote
	EventStartTranslate
	EventShopQuery
	EventCancel
	EventText
	EventLanguageRejected
	EventChainStep
)

// Event is one input. Text carries user text or the shop query; Step is the
// completed chain step for EventChainStep.
type Event struct {
	Kind EventKind
	Text string
	Step ShopStep
}

// Effect tells the caller what to do after a transition.
type Effect int

const (
	EffectNone Effect = iota
	EffectEcho
	EffectSaveNote
	EffectAskTargetLang
	EffectAskText
	EffectTranslate
	EffectAskSourceLang
	EffectGiveUpTranslate
	EffectRunChain
)

// Transition is the result of Next.
type Transition struct {
	Session Session
	Effect  Effect
	// Payload holds the text the effect acts on (echo text, note, translation body).
	Payload string
}

// Machine applies events. The zero value uses defaults.
type Machine struct {
	MaxLanguageAttempts int
	Now                 func() time.Time
}

func (m Machine) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m Machine) maxAttempts() int {
	if m.MaxLanguageAttempts > 0 {
		return m.MaxLanguageAttempts
	}
	return DefaultMaxLanguageAttempts
}

// Next is Machine{}.Next.
func Next(s Session, ev Event) (Transition, error) {
	return Machine{}.Next(s, ev)
}

// Next computes the session after ev. Top level events replace any live flow.
func (m Machine) Next(s Session, ev Event) (Transition, error) {
	switch ev.Kind {
	case EventStartRepeat:
		return m.to(s, RepeatFlow{}, EffectNone, ""), nil
	case EventStartNote:
		return m.to(s, NoteFlow{}, EffectNone, ""), nil
	case EventStartTranslate:
		return m.to(s, TranslateFlow{Step: StepSourceLang}, EffectNone, ""), nil
	case EventShopQuery:
		q := strings.TrimSpace(ev.Text)
		if q == "" {
			return Transition{}, fmt.Errorf("%w: empty shop query", ErrNoTransition)
		}
		return m.to(s, ShopFlow{Query: q, Step: ShopSelect}, EffectNone, ""), nil
	case EventCancel:
		return m.to(s, nil, EffectNone, ""), nil
	case EventText:
		return m.onText(s, ev.Text)
	case EventLanguageRejected:
		return m.onLanguageRejected(s)
	case EventChainStep:
		return m.onChainStep(s, ev.Step)
	}
	return Transition{}, fmt.Errorf("%w: unknown event %d", ErrNoTransition, ev.Kind)
}

func (m Machine) to(s Session, f Flow, eff Effect, payload string) Transition {
	return Transition{
		Session: Session{UserID: s.UserID, Flow: f, UpdatedAt: m.now()},
		Effect:  eff,
		Payload: payload,
	}
}

func (m Machine) onText(s Session, text string) (Transition, error) {
	switch f := s.Flow.(type) {
	case RepeatFlow:
		return m.to(s, f, EffectEcho, text), nil
	case NoteFlow:
		return m.to(s, nil, EffectSaveNote, text), nil
	case TranslateFlow:
		lang := strings.TrimSpace(text)
		switch f.Step {
		case StepSourceLang:
			return m.to(s, TranslateFlow{Step: StepTargetLang, SourceLang: lang, Attempts: f.Attempts}, EffectAskTargetLang, ""), nil
		case StepTargetLang:
			return m.to(s, TranslateFlow{Step: StepText, SourceLang: f.SourceLang, TargetLang: lang, Attempts: f.Attempts}, EffectAskText, ""), nil
		default:
			return m.to(s, nil, EffectTranslate, Truncate(text, MaxTranslateRunes)), nil
		}
	case ShopFlow:
		if f.Step != ShopSelect {
			return Transition{}, fmt.Errorf("%w: chain already running", ErrNoTransition)
		}
		return m.to(s, ShopFlow{Query: f.Query, DetailURL: strings.TrimSpace(text), Step: ShopDetail}, EffectRunChain, ""), nil
	}
	return Transition{}, ErrNoTransition
}

// onLanguageRejected sends the flow back to the source language prompt with
// cleared languages, or gives up once the attempts are used.
func (m Machine) onLanguageRejected(s Session) (Transition, error) {
	f, ok := s.Flow.(TranslateFlow)
	if !ok {
		return Transition{}, ErrNoTransition
	}
	attempts := f.Attempts + 1
	if attempts >= m.maxAttempts() {
		return m.to(s, nil, EffectGiveUpTranslate, ""), nil
	}
	return m.to(s, TranslateFlow{Step: StepSourceLang, Attempts: attempts}, EffectAskSourceLang, ""), nil
}

// onChainStep advances the shop chain; finishing offers returns to Idle.
func (m Machine) onChainStep(s Session, done ShopStep) (Transition, error) {
	f, ok := s.Flow.(ShopFlow)
	if !ok || f.Step != done || done < ShopDetail || done > ShopOffers {
		return Transition{}, ErrNoTransition
	}
	next := done + 1
	if next == ShopDone {
		return m.to(s, nil, EffectNone, ""), nil
	}
	return m.to(s, ShopFlow{Query: f.Query, DetailURL: f.DetailURL, Step: next}, EffectNone, ""), nil
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
