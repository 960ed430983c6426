package catalog

// PriceNotFound is shown for listing items without a price badge.
const PriceNotFound = "Not found"

// ListingItem is one search hit.
type ListingItem struct {
	Title        string
	PriceText    string
	DetailURL    string
	ThumbnailURL string
}

// SpecRow is one line of the product specification table.
type SpecRow struct {
	Category    string
	Description string
}

// Review is a customer review attached to a product page.
type Review struct {
	Author string
	Date   string
	Body   string
}

// ShopOffer is one merchant price for a product.
type ShopOffer struct {
	Merchant string
	Price    string
	Link     string
}
