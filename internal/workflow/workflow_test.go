package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/pixelbot/internal/catalog"
	"github.com/m3rciful/pixelbot/internal/conversation"
	"github.com/m3rciful/pixelbot/internal/joke"
	"github.com/m3rciful/pixelbot/internal/records"
	"github.com/m3rciful/pixelbot/internal/render"
	"github.com/m3rciful/pixelbot/internal/translate"
)

const product = "https://e-catalog.md/ro/phones/pixel-9"

type outbox struct {
	mu      sync.Mutex
	replies []Reply
}

func (o *outbox) Send(_ context.Context, r Reply) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.replies = append(o.replies, r)
	return nil
}

func (o *outbox) texts() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.replies))
	for i, r := range o.replies {
		out[i] = r.Text
	}
	return out
}

func (o *outbox) last() string {
	t := o.texts()
	if len(t) == 0 {
		return ""
	}
	return t[len(t)-1]
}

type fakeCatalog struct {
	items   []catalog.ListingItem
	specs   []catalog.SpecRow
	reviews []catalog.Review
	offers  []catalog.ShopOffer

	searchErr  error
	reviewsErr error
	offersErr  error
	specsHook  func(ctx context.Context) error
	fetches    atomic.Int32
}

func (f *fakeCatalog) Search(context.Context, string, int) ([]catalog.ListingItem, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.items, nil
}

func (f *fakeCatalog) IsDetailURL(raw string) bool {
	return strings.HasPrefix(raw, "https://e-catalog.md/")
}

func (f *fakeCatalog) Specs(ctx context.Context, _ string) ([]catalog.SpecRow, error) {
	f.fetches.Add(1)
	if f.specsHook != nil {
		if err := f.specsHook(ctx); err != nil {
			return nil, err
		}
	}
	return f.specs, nil
}

func (f *fakeCatalog) Reviews(context.Context, string) ([]catalog.Review, error) {
	f.fetches.Add(1)
	return f.reviews, f.reviewsErr
}

func (f *fakeCatalog) Offers(context.Context, string) ([]catalog.ShopOffer, error) {
	f.fetches.Add(1)
	return f.offers, f.offersErr
}

type translatorFunc func(ctx context.Context, text, src, dst string) (translate.Result, error)

func (f translatorFunc) Translate(ctx context.Context, text, src, dst string) (translate.Result, error) {
	return f(ctx, text, src, dst)
}

type jokeFunc func(ctx context.Context) (joke.Joke, error)

func (f jokeFunc) Random(ctx context.Context) (joke.Joke, error) { return f(ctx) }

func newService(opts Options) (*Service, *records.Memory) {
	mem := records.NewMemory()
	opts.Records = mem
	if opts.Sessions == nil {
		opts.Sessions = conversation.NewManager(conversation.Options{})
	}
	return New(opts), mem
}

func TestNoteFlow(t *testing.T) {
	svc, _ := newService(Options{})
	ctx := context.Background()
	out := &outbox{}

	require.NoError(t, svc.LastNote(ctx, 1, out))
	assert.Equal(t, msgNoNotes, out.last())

	svc.StartNote(ctx, 1, out)
	assert.Equal(t, conversation.AwaitingNoteText, svc.Sessions().Peek(1).State())

	handled, err := svc.HandleText(ctx, 1, "Buy milk", out)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, msgNoteSaved, out.last())
	assert.Equal(t, conversation.Idle, svc.Sessions().Peek(1).State())

	require.NoError(t, svc.LastNote(ctx, 1, out))
	assert.Equal(t, "Buy milk", out.last())

	notes, err := svc.SearchNotes(ctx, 1, " MILK ")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	notes, err = svc.SearchNotes(ctx, 2, "milk")
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestRepeatUntilCancel(t *testing.T) {
	svc, _ := newService(Options{})
	ctx := context.Background()
	out := &outbox{}

	handled, err := svc.HandleText(ctx, 5, "hello?", out)
	require.NoError(t, err)
	assert.False(t, handled, "idle text falls through")

	svc.StartRepeat(ctx, 5, out)
	for _, text := range []string{"one", "two"} {
		handled, err := svc.HandleText(ctx, 5, text, out)
		require.NoError(t, err)
		assert.True(t, handled)
		assert.Equal(t, text, out.last())
	}
	svc.Cancel(ctx, 5, out)
	assert.Equal(t, msgCancelled, out.last())
	assert.Equal(t, conversation.Idle, svc.Sessions().Peek(5).State())

	svc.Cancel(ctx, 5, out)
	assert.Equal(t, msgNothingToCancel, out.last())
}

func TestCommandReplacesLiveFlow(t *testing.T) {
	svc, _ := newService(Options{})
	ctx := context.Background()
	svc.StartNote(ctx, 9, &outbox{})
	svc.StartTranslate(ctx, 9, &outbox{})
	assert.Equal(t, conversation.AwaitingTranslateSourceLang, svc.Sessions().Peek(9).State())
}

func TestTranslateFlow(t *testing.T) {
	var gotText, gotSrc, gotDst string
	tr := translatorFunc(func(_ context.Context, text, src, dst string) (translate.Result, error) {
		gotText, gotSrc, gotDst = text, src, dst
		return translate.Result{Text: "Привет", SourceLang: "en", TargetLang: "ru"}, nil
	})
	svc, mem := newService(Options{Translator: tr})
	ctx := context.Background()
	out := &outbox{}

	svc.StartTranslate(ctx, 3, out)
	require.Len(t, out.texts(), 2)
	assert.Equal(t, TranslateCancel, out.replies[1].Keyboard)

	for _, text := range []string{"English", "ru"} {
		_, err := svc.HandleText(ctx, 3, text, out)
		require.NoError(t, err)
	}
	assert.Equal(t, conversation.AwaitingTranslateText, svc.Sessions().Peek(3).State())

	long := strings.Repeat("ы", 1500)
	_, err := svc.HandleText(ctx, 3, long, out)
	require.NoError(t, err)

	assert.Equal(t, "English", gotSrc)
	assert.Equal(t, "ru", gotDst)
	assert.Equal(t, conversation.MaxTranslateRunes, utf8.RuneCountInString(gotText))
	assert.Equal(t, "Привет", out.last())
	assert.Equal(t, conversation.Idle, svc.Sessions().Peek(3).State())

	saved := mem.Translations()
	require.Len(t, saved, 1)
	assert.Equal(t, "ru", saved[0].TargetLang)
}

func TestTranslateInvalidLanguageReprompts(t *testing.T) {
	var calls int
	tr := translatorFunc(func(context.Context, string, string, string) (translate.Result, error) {
		calls++
		return translate.Result{}, &translate.LanguageError{Hint: "elvish"}
	})
	svc, mem := newService(Options{Translator: tr})
	ctx := context.Background()
	out := &outbox{}

	svc.StartTranslate(ctx, 4, out)
	for attempt := 1; attempt <= conversation.DefaultMaxLanguageAttempts; attempt++ {
		for _, text := range []string{"en", "elvish", "text"} {
			_, err := svc.HandleText(ctx, 4, text, out)
			require.NoError(t, err)
		}
		if attempt < conversation.DefaultMaxLanguageAttempts {
			f, ok := svc.Sessions().Peek(4).Flow.(conversation.TranslateFlow)
			require.True(t, ok)
			assert.Equal(t, conversation.TranslateFlow{Step: conversation.StepSourceLang, Attempts: attempt}, f)
			assert.Contains(t, out.last(), "elvish")
			assert.Contains(t, out.last(), msgAskSourceLang)
		}
	}
	assert.Equal(t, conversation.DefaultMaxLanguageAttempts, calls)
	assert.Equal(t, msgTranslateGaveUp, out.last())
	assert.Equal(t, conversation.Idle, svc.Sessions().Peek(4).State())
	assert.Empty(t, mem.Translations())
}

func TestTranslateUnavailableResets(t *testing.T) {
	tr := translatorFunc(func(context.Context, string, string, string) (translate.Result, error) {
		return translate.Result{}, translate.ErrUnavailable
	})
	svc, _ := newService(Options{Translator: tr})
	ctx := context.Background()
	out := &outbox{}
	svc.StartTranslate(ctx, 4, out)
	for _, text := range []string{"en", "de"} {
		_, _ = svc.HandleText(ctx, 4, text, out)
	}
	_, err := svc.HandleText(ctx, 4, "hi", out)
	assert.ErrorIs(t, err, translate.ErrUnavailable)
	assert.Equal(t, msgTranslateUnavailable, out.last())
	assert.Equal(t, conversation.Idle, svc.Sessions().Peek(4).State())
}

func shopCatalog() *fakeCatalog {
	offers := make([]catalog.ShopOffer, 9)
	for i := range offers {
		offers[i] = catalog.ShopOffer{Merchant: "shop-" + string(rune('a'+i)), Price: "100 lei", Link: "https://e-catalog.md/go/" + string(rune('a'+i))}
	}
	return &fakeCatalog{
		items:   []catalog.ListingItem{{Title: "Pixel 9", PriceText: "9000 lei", DetailURL: product}},
		specs:   []catalog.SpecRow{{Category: "Display", Description: "6.3\""}},
		reviews: []catalog.Review{{Author: "Ana", Date: "2024-01-02", Body: "Great phone"}},
		offers:  offers,
	}
}

func TestShopChain(t *testing.T) {
	cat := shopCatalog()
	svc, _ := newService(Options{Catalog: cat})
	ctx := context.Background()
	out := &outbox{}

	items, err := svc.InlineShop(ctx, 8, " pixel ")
	require.NoError(t, err)
	require.Len(t, items, 1)
	sess := svc.Sessions().Peek(8)
	assert.Equal(t, conversation.AwaitingShopSelection, sess.State())
	assert.Equal(t, "pixel", sess.Flow.(conversation.ShopFlow).Query)

	handled, err := svc.HandleText(ctx, 8, product, out)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, conversation.Idle, svc.Sessions().Peek(8).State())

	offerRows := make([][]string, 0, MaxOffers)
	for _, o := range cat.offers[:MaxOffers] {
		offerRows = append(offerRows, []string{o.Merchant, o.Price, o.Link})
	}
	assert.Equal(t, []string{
		msgChainStart,
		msgChainTip,
		msgSpecsTitle,
		render.Table([]string{"Category", "Description"}, [][]string{{"Display", "6.3\""}}),
		msgReviewsTitle,
		render.Table([]string{"User", "Date", "Content"}, [][]string{{"Ana", "2024-01-02", "Great phone"}}, render.WrapColumn(2, ReviewWidth)),
		msgOffersTitle,
		render.Table([]string{"Name", "Price", "Link"}, offerRows),
	}, out.texts())
	assert.True(t, out.replies[3].Code)
}

func TestShopChainWithoutReviewsContinues(t *testing.T) {
	cat := shopCatalog()
	cat.reviews = nil
	svc, _ := newService(Options{Catalog: cat})
	ctx := context.Background()
	_, err := svc.InlineShop(ctx, 8, "pixel")
	require.NoError(t, err)

	out := &outbox{}
	report, err := svc.RunChain(ctx, 8, product, out)
	require.NoError(t, err)
	assert.True(t, report.Completed())
	assert.Contains(t, out.texts(), msgNoReviews)
	assert.Equal(t, 0, report.Steps[1].Rows)
	assert.Equal(t, msgOffersTitle, out.texts()[len(out.texts())-2])
}

func TestShopChainFetchFailureResets(t *testing.T) {
	cat := shopCatalog()
	cat.reviewsErr = &catalog.FetchError{URL: product, Status: 503}
	svc, _ := newService(Options{Catalog: cat})
	ctx := context.Background()
	_, err := svc.InlineShop(ctx, 8, "pixel")
	require.NoError(t, err)

	out := &outbox{}
	report, err := svc.RunChain(ctx, 8, product, out)
	var fe *catalog.FetchError
	require.ErrorAs(t, err, &fe)
	assert.False(t, report.Completed())
	require.Len(t, report.Steps, 2)
	assert.Equal(t, conversation.ShopReviews, report.Steps[1].Step)
	assert.Equal(t, msgChainFailed, out.last())
	assert.NotContains(t, out.texts(), msgOffersTitle)
	assert.Equal(t, conversation.Idle, svc.Sessions().Peek(8).State())
	assert.Zero(t, svc.SessionCount())
}

func TestShopChainOffersFailureKeepsEarlierSteps(t *testing.T) {
	cat := shopCatalog()
	cat.offersErr = &catalog.FetchError{URL: product, Status: 502}
	svc, _ := newService(Options{Catalog: cat})
	ctx := context.Background()
	_, err := svc.InlineShop(ctx, 8, "pixel")
	require.NoError(t, err)

	out := &outbox{}
	report, err := svc.RunChain(ctx, 8, product, out)
	var fe *catalog.FetchError
	require.ErrorAs(t, err, &fe)
	require.Len(t, report.Steps, 3)
	assert.NoError(t, report.Steps[0].Err)
	assert.NoError(t, report.Steps[1].Err)
	assert.Equal(t, conversation.ShopOffers, report.Steps[2].Step)

	texts := out.texts()
	assert.Equal(t, []string{
		msgChainStart,
		msgChainTip,
		msgSpecsTitle,
		render.Table([]string{"Category", "Description"}, [][]string{{"Display", "6.3\""}}),
		msgReviewsTitle,
		render.Table([]string{"User", "Date", "Content"}, [][]string{{"Ana", "2024-01-02", "Great phone"}}, render.WrapColumn(2, ReviewWidth)),
		msgChainFailed,
	}, texts)
	assert.NotContains(t, texts, msgOffersTitle)
	assert.Equal(t, conversation.Idle, svc.Sessions().Peek(8).State())
	assert.Zero(t, svc.SessionCount())
}

func TestFailedSearchDropsLiveFlow(t *testing.T) {
	cat := shopCatalog()
	cat.searchErr = &catalog.FetchError{URL: "https://e-catalog.md/ro/search", Status: 503}
	svc, mem := newService(Options{Catalog: cat})
	ctx := context.Background()
	out := &outbox{}

	svc.StartNote(ctx, 1, out)
	require.Equal(t, conversation.AwaitingNoteText, svc.Sessions().Peek(1).State())

	items, err := svc.InlineShop(ctx, 1, "pixel")
	var fe *catalog.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Empty(t, items)
	assert.Equal(t, conversation.Idle, svc.Sessions().Peek(1).State())
	assert.Zero(t, svc.SessionCount())

	handled, err := svc.HandleText(ctx, 1, "shop:pixel error text", out)
	require.NoError(t, err)
	assert.False(t, handled)
	notes, err := mem.SearchNotes(ctx, 1, "pixel", 10)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestSelectionMustBeCatalogPage(t *testing.T) {
	cat := shopCatalog()
	svc, _ := newService(Options{Catalog: cat})
	ctx := context.Background()
	_, err := svc.InlineShop(ctx, 8, "pixel")
	require.NoError(t, err)

	out := &outbox{}
	handled, err := svc.HandleText(ctx, 8, "https://elsewhere.example/x", out)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, msgPickProduct, out.last())
	assert.Equal(t, conversation.AwaitingShopSelection, svc.Sessions().Peek(8).State())
	assert.Zero(t, cat.fetches.Load())
}

func TestBusyUserIsRefusedAndCancelInterrupts(t *testing.T) {
	entered := make(chan struct{})
	cat := shopCatalog()
	cat.specsHook = func(ctx context.Context) error {
		close(entered)
		<-ctx.Done()
		return &catalog.FetchError{URL: product, Err: ctx.Err()}
	}
	svc, _ := newService(Options{Catalog: cat})
	ctx := context.Background()
	_, err := svc.InlineShop(ctx, 8, "pixel")
	require.NoError(t, err)

	chainOut := &outbox{}
	done := make(chan error, 1)
	go func() {
		_, err := svc.HandleText(ctx, 8, product, chainOut)
		done <- err
	}()
	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("chain did not start")
	}

	other := &outbox{}
	handled, err := svc.HandleText(ctx, 8, "are you there?", other)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, []string{msgBusy}, other.texts())

	_, err = svc.InlineShop(ctx, 8, "another")
	assert.ErrorIs(t, err, conversation.ErrBusy)

	svc.Cancel(ctx, 8, other)
	assert.Equal(t, msgStopping, other.last())

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("chain was not interrupted")
	}
	assert.Equal(t, msgChainCancelled, chainOut.last())
	assert.Equal(t, conversation.Idle, svc.Sessions().Peek(8).State())
	assert.False(t, svc.Sessions().Busy(8))
}

func TestPanicResetsSession(t *testing.T) {
	cat := shopCatalog()
	cat.specsHook = func(context.Context) error { panic("boom") }
	svc, _ := newService(Options{Catalog: cat})
	ctx := context.Background()
	_, err := svc.InlineShop(ctx, 8, "pixel")
	require.NoError(t, err)

	assert.Panics(t, func() { _, _ = svc.HandleText(ctx, 8, product, &outbox{}) })
	assert.Equal(t, conversation.Idle, svc.Sessions().Peek(8).State())
	assert.False(t, svc.Sessions().Busy(8))
}

func TestJoke(t *testing.T) {
	src := jokeFunc(func(context.Context) (joke.Joke, error) {
		return joke.Joke{Setup: "Why?", Punchline: "Because."}, nil
	})
	svc, _ := newService(Options{Jokes: src})
	out := &outbox{}
	require.NoError(t, svc.Joke(context.Background(), out))
	assert.Equal(t, []string{msgJokeIntro, "Why?", "Because."}, out.texts())

	failing := jokeFunc(func(context.Context) (joke.Joke, error) { return joke.Joke{}, joke.ErrUnavailable })
	svc, _ = newService(Options{Jokes: failing})
	out = &outbox{}
	assert.True(t, errors.Is(svc.Joke(context.Background(), out), joke.ErrUnavailable))
	assert.Equal(t, []string{msgJokeUnavailable}, out.texts())
}
