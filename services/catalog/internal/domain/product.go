// Package domain holds the catalog's read models and request values.
package domain

import (
	"strings"
	"time"
)

// Product is an item for sale, decorated with its review stats when returned
// from a listing or recommendation.
type Product struct {
	ID           string       `json:"id"`
	Slug         string       `json:"slug"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Price        Money        `json:"price"`
	ComparePrice *Money       `json:"comparePrice,omitempty"`
	SKU          string       `json:"sku"`
	Quantity     int          `json:"quantity"`
	Tags         []string     `json:"tags"`
	IsActive     bool         `json:"isActive"`
	IsFeatured   bool         `json:"isFeatured"`
	IsDigital    bool         `json:"isDigital"`
	CategoryID   string       `json:"categoryId"`
	Category     *CategoryRef `json:"category,omitempty"`
	Variants     []Variant    `json:"variants"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	ProductStats
}

// InStock reports whether at least one unit is available.
func (p *Product) InStock() bool {
	return p.Quantity > 0
}

// PriceCents returns the price in minor units.
func (p *Product) PriceCents() int64 {
	return p.Price.Shift(2).IntPart()
}

// Variant is a purchasable option of a product, such as a size or finish.
type Variant struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Value    string           `json:"value"`
	Price    *Money `json:"price,omitempty"`
	Quantity int    `json:"quantity"`
}

// CategoryRef is the category summary embedded in a product.
type CategoryRef struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Category groups products. Categories form a tree through ParentID.
type Category struct {
	ID          string  `json:"id"`
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ParentID    *string `json:"parentId,omitempty"`
}

// SplitTags parses the comma-delimited tags column, trimming blanks.
func SplitTags(raw string) []string {
	tags := []string{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// JoinTags renders tags back into the stored form.
func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}

// NormalizeTags lowercases, trims and deduplicates tags, keeping first
// occurrence order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
