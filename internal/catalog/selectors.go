package catalog

import "github.com/m3rciful/pixelbot/internal/extract"

const (
	listingRow = ".products-list__body > .products-list__item"
	specRow    = ".spec > .spec__section > .spec__row"
	reviewRow  = ".reviews-list__content > .reviews-list__item"
	offerRow   = ".listing_container > .available"
)

var listingSchema = extract.Schema{
	{Name: "title", Selector: ".product-card > .product-card__info > .product-card__name > a"},
	{Name: "href", Selector: ".product-card > .product-card__info > .product-card__name > a", Attr: "href"},
	{Name: "price", Selector: ".product-card > .product-card__actions > .product-card__prices > span"},
	{Name: "thumb", Selector: ".product-card > .product-card__image > a > img", Attr: "src"},
}

var specSchema = extract.Schema{
	{Name: "name", Selector: ".spec__name"},
	{Name: "value", Selector: ".spec__value"},
}

var reviewSchema = extract.Schema{
	{Name: "author", Selector: ".review > .review__content > .review__author"},
	{Name: "body", Selector: ".review > .review__content > .review__text"},
	{Name: "date", Selector: ".review > .review__content > .review__date"},
}

var offerSchema = extract.Schema{
	{Name: "merchant", Selector: ".item_info > .item_merchant > .merchant_logo > img", Attr: "alt"},
	{Name: "price", Selector: ".item_price > .item_basic_price"},
	{Name: "link", Selector: ".item_actions > a", Attr: "href"},
}
