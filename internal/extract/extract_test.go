package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const card = `<html><body>
<div class="card"><a class="name" href="/p/1">  Phone X </a><span class="price">100 lei</span><span class="price">90 lei</span><img src="/i.png" alt=""></div>
<div class="card"><a class="name" href="/p/2">Phone Y</a></div>
</body></html>`

func TestFieldsFoundAndMissing(t *testing.T) {
	res, err := Fields(card, Schema{
		{Name: "title", Selector: ".card .name"},
		{Name: "href", Selector: ".card .name", Attr: "href"},
		{Name: "price", Selector: ".card .price"},
		{Name: "rating", Selector: ".rating"},
		{Name: "alt", Selector: "img", Attr: "alt"},
		{Name: "title_attr", Selector: ".card .name", Attr: "title"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Phone X", res.Get("title").String(), "text is trimmed")
	assert.Equal(t, "/p/1", res.Get("href").String())
	assert.Equal(t, "100 lei", res.Get("price").String(), "first match wins")

	assert.Equal(t, NotFound, res.Get("rating"))
	assert.Equal(t, "n/a", res.Get("rating").Or("n/a"))
	assert.Equal(t, NotFound, res.Get("title_attr"), "missing attribute is NotFound")
	assert.Equal(t, NotFound, res.Get("unknown"))

	alt := res.Get("alt")
	assert.True(t, alt.Ok(), "empty but present differs from NotFound")
	assert.Equal(t, "", alt.String())
	assert.False(t, res.Has("alt"))
	assert.True(t, res.Has("title", "href"))
}

func TestRowsAppliesSchemaPerRow(t *testing.T) {
	rows, err := Rows(card, ".card", Schema{
		{Name: "title", Selector: ".name"},
		{Name: "price", Selector: ".price"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Phone Y", rows[1].Get("title").String())
	assert.False(t, rows[1].Get("price").Ok())
}

func TestParseErrors(t *testing.T) {
	_, err := Fields("   ", Schema{{Name: "x", Selector: "p"}})
	assert.ErrorIs(t, err, ErrParse)

	rows, err := Rows("<p>no rows</p>", ".row", Schema{{Name: "x", Selector: "p"}})
	require.NoError(t, err, "no matches is not a parse failure")
	assert.Empty(t, rows)
}
