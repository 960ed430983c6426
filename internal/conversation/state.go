// Package conversation is the per-user state machine behind every multi-step flow.
package conversation

import "time"

// State is the closed set of conversation states.
type State int

const (
	Idle State = iota
	AwaitingRepeatText
	AwaitingNoteText
	AwaitingTranslateSourceLang
	AwaitingTranslateTargetLang
	AwaitingTranslateText
	AwaitingShopSelection
)

var stateNames = [...]string{
	Idle:                        "idle",
	AwaitingRepeatText:          "awaiting_repeat_text",
	AwaitingNoteText:            "awaiting_note_text",
	AwaitingTranslateSourceLang: "awaiting_translate_source_lang",
	AwaitingTranslateTargetLang: "awaiting_translate_target_lang",
	AwaitingTranslateText:       "awaiting_translate_text",
	AwaitingShopSelection:       "awaiting_shop_selection",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Flow is one live user task. The set of implementations is closed.
type Flow interface {
	State() State
	Name() string
	flow()
}

// RepeatFlow echoes every text back until cancelled.
type RepeatFlow struct{}

// NoteFlow waits for the text of a new note.
type NoteFlow struct{}

// TranslateStep is the position inside a translation flow.
type TranslateStep int

const (
	StepSourceLang TranslateStep = iota
	StepTargetLang
	StepText
)

// TranslateFlow collects languages and the text to translate.
// Attempts counts rejected language choices in a row.
type TranslateFlow struct {
	Step       TranslateStep
	SourceLang string
	TargetLang string
	Attempts   int
}

// ShopStep is the position inside the shop chain.
type ShopStep int

const (
	ShopSelect ShopStep = iota
	ShopDetail
	ShopReviews
	ShopOffers
	ShopDone
)

var shopStepNames = [...]string{
	ShopSelect:  "select",
	ShopDetail:  "detail",
	ShopReviews: "reviews",
	ShopOffers:  "offers",
	ShopDone:    "done",
}

func (s ShopStep) String() string {
	if s < 0 || int(s) >= len(shopStepNames) {
		return "unknown"
	}
	return shopStepNames[s]
}

// ShopFlow tracks a product research chain.
type ShopFlow struct {
	Query     string
	DetailURL string
	Step      ShopStep
}

func (RepeatFlow) State() State { return AwaitingRepeatText }
func (NoteFlow) State() State   { return AwaitingNoteText }
func (ShopFlow) State() State   { return AwaitingShopSelection }

func (f TranslateFlow) State() State {
	switch f.Step {
	case StepTargetLang:
		return AwaitingTranslateTargetLang
	case StepText:
		return AwaitingTranslateText
	default:
		return AwaitingTranslateSourceLang
	}
}

func (RepeatFlow) Name() string    { return "repeat" }
func (NoteFlow) Name() string      { return "note" }
func (TranslateFlow) Name() string { return "translate" }
func (ShopFlow) Name() string      { return "shop" }

func (RepeatFlow) flow()    {}
func (NoteFlow) flow()      {}
func (TranslateFlow) flow() {}
func (ShopFlow) flow()      {}

// Session is the stored conversation of one user. A nil Flow means Idle.
type Session struct {
	UserID    int64
	Flow      Flow
	UpdatedAt time.Time
}

// State derives the state from the live flow.
func (s Session) State() State {
	if s.Flow == nil {
		return Idle
	}
	return s.Flow.State()
}
