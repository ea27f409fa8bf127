// Package catalog reads products from the external catalog API. Products are
// consumed read-only and never mutated locally.
package catalog

// Product is one catalog entry as served by the external API.
type Product struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Rating      Rating  `json:"rating"`
}

// Rating is the aggregate review score for a product.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}
