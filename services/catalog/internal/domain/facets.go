package domain

// Facets describe the whole active catalog, independent of the current query.
type Facets struct {
	Categories []CategoryFacet `json:"categories"`
	Tags       []string        `json:"tags"`
	PriceRange PriceRange      `json:"priceRange"`
}

// CategoryFacet is a category with the number of active products in it.
type CategoryFacet struct {
	ID           string  `json:"id"`
	Slug         string  `json:"slug"`
	Name         string  `json:"name"`
	ParentID     *string `json:"parentId,omitempty"`
	ProductCount int     `json:"productCount"`
}

// PriceRange is the cheapest and dearest active price; both zero when the
// catalog is empty.
type PriceRange struct {
	Min Money `json:"min"`
	Max Money `json:"max"`
}
