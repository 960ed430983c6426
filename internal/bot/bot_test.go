package bot

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/pixelbot/core/config"
	"github.com/m3rciful/pixelbot/internal/catalog"
	"github.com/m3rciful/pixelbot/internal/config"
	"github.com/m3rciful/pixelbot/internal/records"
	"github.com/m3rciful/pixelbot/internal/workflow"

	tele "gopkg.in/telebot.v4"
)

type sent struct {
	text string
	opts []any
}

// fakeContext records what handlers send. Only the methods the bot touches are implemented.
type fakeContext struct {
	tele.Context
	update tele.Update

	mu    sync.Mutex
	store map[string]any
	sent  []sent
}

func newFakeContext(userID int64, text string) *fakeContext {
	msg := &tele.Message{Text: text, Sender: &tele.User{ID: userID, FirstName: "Ana"}, Chat: &tele.Chat{ID: userID}}
	return &fakeContext{update: tele.Update{ID: 1, Message: msg}, store: map[string]any{}}
}

func (f *fakeContext) Update() tele.Update { return f.update }
func (f *fakeContext) Sender() *tele.User  { return f.update.Message.Sender }
func (f *fakeContext) Chat() *tele.Chat    { return f.update.Message.Chat }
func (f *fakeContext) Text() string        { return f.update.Message.Text }
func (f *fakeContext) Query() *tele.Query  { return f.update.Query }
func (f *fakeContext) Get(k string) any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store[k]
}
func (f *fakeContext) Set(k string, v any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.store[k] = v
}

func (f *fakeContext) Send(what any, opts ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{text: what.(string), opts: opts})
	return nil
}

func (f *fakeContext) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	for i, s := range f.sent {
		out[i] = s.text
	}
	return out
}

func newApp() *App {
	n := 0
	cfg := &config.Config{Config: coreconfig.Config{Telegram: coreconfig.TelegramConfig{Token: "t", RunMode: coreconfig.RunModeLongpoll}}}
	return New(Options{
		Config:   cfg,
		Workflow: workflow.New(workflow.Options{Records: records.NewMemory()}),
		NewID: func() string {
			n++
			return "id-" + strconv.Itoa(n)
		},
	})
}

func TestRegistry(t *testing.T) {
	a := newApp()
	key, _, ok := a.Registry().LookupCommand("stop_repeat")
	require.True(t, ok)
	assert.Equal(t, "/cancel", key)

	for _, cmd := range a.Registry().ListCommands(true) {
		assert.NotEqual(t, "sessions", cmd.Text)
	}
	_, _, ok = a.Registry().LookupCommand("/sessions")
	assert.True(t, ok)

	_, ok = a.Registry().GetCallback(cbTranslateCancel)
	assert.True(t, ok)
}

func TestTelegramRunOptions(t *testing.T) {
	opts, err := newApp().TelegramRunOptions()
	require.NoError(t, err)
	assert.NotNil(t, opts.Config)
	assert.NotEmpty(t, opts.Middlewares)

	endpoints := map[any]bool{}
	for _, r := range opts.Routes {
		endpoints[r.Endpoint] = true
	}
	for _, ep := range []any{"/start", "/cancel", "/stop_repeat", tele.OnText, tele.OnCallback, tele.OnQuery} {
		assert.True(t, endpoints[ep], "missing route %v", ep)
	}
}

func TestNoteThroughTextRouter(t *testing.T) {
	a := newApp()
	f := fsm{a}

	c := newFakeContext(10, "/note_new")
	require.NoError(t, a.noteNew(c))
	assert.True(t, f.InProgress(10))

	c = newFakeContext(10, "Call mom")
	require.NoError(t, f.ManagerHandler(c))
	assert.False(t, f.InProgress(10))
	require.Len(t, c.texts(), 1)
	assert.Contains(t, c.texts()[0], "Saved")

	c = newFakeContext(10, "/note_last")
	require.NoError(t, a.noteLast(c))
	assert.Equal(t, []string{"Call mom"}, c.texts())
}

func TestIdleTextFallsBack(t *testing.T) {
	a := newApp()
	c := newFakeContext(11, "hello")
	require.NoError(t, fsm{a}.ManagerHandler(c))
	assert.Equal(t, []string{msgFallback}, c.texts())
}

func TestGreetingEscapesName(t *testing.T) {
	a := newApp()
	c := newFakeContext(12, "/start")
	c.update.Message.Sender.FirstName = "<Bob>"
	require.NoError(t, a.start(c))
	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0].text, "<b>&lt;Bob&gt;</b>")
	opts := c.sent[0].opts[0].(*tele.SendOptions)
	assert.Equal(t, tele.ModeHTML, opts.ParseMode)
}

func TestArticles(t *testing.T) {
	n := 0
	id := func() string { n++; return "r" + strconv.Itoa(n) }

	created := time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local)
	notes := noteArticles([]records.Note{{Text: "milk", CreatedAt: created}}, id)
	require.Len(t, notes, 1)
	assert.Equal(t, "r1", notes[0].ID)
	assert.Equal(t, "milk", notes[0].Title)
	assert.Equal(t, "Your note: milk", notes[0].Text)
	assert.Equal(t, "Created: 2024-05-06 07:08:09", notes[0].Description)

	items := shopArticles([]catalog.ListingItem{{
		Title: "Pixel 9", PriceText: catalog.PriceNotFound, DetailURL: "https://e-catalog.md/p", ThumbnailURL: "https://e-catalog.md/t.png",
	}}, id)
	require.Len(t, items, 1)
	assert.Equal(t, "Name: Pixel 9", items[0].Title)
	assert.Equal(t, "Price: Not found", items[0].Description)
	assert.Equal(t, "https://e-catalog.md/p", items[0].Text)
	assert.Equal(t, thumbSize, items[0].ThumbSize)
}

func TestMarkupFor(t *testing.T) {
	assert.Nil(t, markupFor(workflow.KeepKeyboard))
	assert.True(t, markupFor(workflow.RemoveKeyboard).RemoveKeyboard)
	repeat := markupFor(workflow.RepeatKeyboard)
	require.Len(t, repeat.ReplyKeyboard, 1)
	assert.Equal(t, "/cancel", repeat.ReplyKeyboard[0][0].Text)
	cancel := markupFor(workflow.TranslateCancel)
	require.Len(t, cancel.InlineKeyboard, 1)
	assert.Equal(t, cbTranslateCancel, cancel.InlineKeyboard[0][0].Unique)
}

func TestOutboxSplitsLongTables(t *testing.T) {
	c := newFakeContext(13, "")
	table := strings.Repeat(strings.Repeat("x", 99)+"\n", 100)
	require.NoError(t, newOutbox(c).Send(context.Background(), workflow.Reply{Text: table, Code: true}))

	require.Greater(t, len(c.sent), 1)
	for _, s := range c.sent {
		assert.True(t, strings.HasPrefix(s.text, "```\n"))
		assert.LessOrEqual(t, len(s.text), 4000)
		assert.Equal(t, tele.ModeMarkdown, s.opts[0].(*tele.SendOptions).ParseMode)
	}
}
