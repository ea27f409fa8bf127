// Package cart holds the shopping cart: an ordered sequence of line items
// hydrated from storage once and written through on every mutation.
package cart

import "github.com/urbanhaven/storefront/internal/catalog"

// Line is a product held in the cart with a positive quantity.
// A cart holds at most one line per product ID.
type Line struct {
	ID          int            `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Price       float64        `json:"price"`
	Image       string         `json:"image"`
	Rating      catalog.Rating `json:"rating"`
	Quantity    int            `json:"quantity"`
}

// Subtotal returns the line price multiplied by its quantity.
func (l Line) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

// Totals are derived cart values, recomputed on every read.
type Totals struct {
	Subtotal  float64
	ItemCount int
}

func lineFromProduct(p catalog.Product) Line {
	return Line{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Image:       p.Image,
		Rating:      p.Rating,
		Quantity:    1,
	}
}
