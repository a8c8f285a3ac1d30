package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/domain"
)

const maxSuggestions = 8

// decorate sets ProductStats on items in place and, when withVariants is
// set, attaches their variants.
func (s *CatalogService) decorate(ctx context.Context, items []domain.Product, withVariants bool) error {
	if len(items) == 0 {
		return nil
	}
	totals, err := s.store.RatingTotals(ctx, productIDs(items))
	if err != nil {
		return fmt.Errorf("load ratings: %w", err)
	}
	for i := range items {
		items[i].ProductStats = totals[items[i].ID].Stats()
	}
	if withVariants {
		return s.attachVariants(ctx, items)
	}
	return nil
}

func (s *CatalogService) attachVariants(ctx context.Context, items []domain.Product) error {
	if len(items) == 0 {
		return nil
	}
	variants, err := s.store.Variants(ctx, productIDs(items))
	if err != nil {
		return fmt.Errorf("load variants: %w", err)
	}
	for i := range items {
		if v, ok := variants[items[i].ID]; ok {
			items[i].Variants = v
		} else {
			items[i].Variants = []domain.Variant{}
		}
	}
	return nil
}

// mergeSuggestions lists matching product names, then vocabulary tags
// containing text, without case-insensitive duplicates.
func mergeSuggestions(text string, names, vocabulary []string) []string {
	text = strings.ToLower(text)
	out := make([]string, 0, maxSuggestions)
	seen := make(map[string]struct{}, maxSuggestions)

	add := func(v string) bool {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			return len(out) < maxSuggestions
		}
		if _, dup := seen[key]; !dup {
			seen[key] = struct{}{}
			out = append(out, v)
		}
		return len(out) < maxSuggestions
	}

	for _, n := range names {
		if !add(n) {
			return out
		}
	}
	for _, t := range vocabulary {
		if strings.Contains(strings.ToLower(t), text) && !add(t) {
			return out
		}
	}
	return out
}

func productIDs(items []domain.Product) []string {
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	return ids
}
