package domain

// Mode selects a recommendation strategy.
type Mode string

const (
	ModeSimilar                  Mode = "similar"
	ModeFrequentlyBoughtTogether Mode = "frequently_bought_together"
	ModeTrending                 Mode = "trending"
	ModePersonalized             Mode = "personalized"
	ModeCategory                 Mode = "category"
	ModeFeatured                 Mode = "featured"
)

// Modes lists every known mode.
var Modes = []Mode{
	ModeSimilar, ModeFrequentlyBoughtTogether, ModeTrending,
	ModePersonalized, ModeCategory, ModeFeatured,
}

// ParseMode reports whether s names a known mode.
func ParseMode(s string) (Mode, bool) {
	for _, m := range Modes {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

// RecommendRequest asks for one recommendation panel. RawMode is kept as sent
// so an unknown value can be reported before falling back.
type RecommendRequest struct {
	RawMode    string
	ProductID  string
	UserID     string
	CategoryID string
	Limit      int
}

// Recommendation is a ranked panel and the mode that actually produced it.
type Recommendation struct {
	Mode     Mode
	Products []Product
}

// ProductCount pairs a product with an order-derived count.
type ProductCount struct {
	ProductID string
	Count     int
}

// PurchaseHistory is what a shopper's past orders say about their taste.
type PurchaseHistory struct {
	CategoryIDs []string
	Tags        []string
}

// Empty reports whether the shopper has no usable history.
func (h PurchaseHistory) Empty() bool {
	return len(h.CategoryIDs) == 0
}
