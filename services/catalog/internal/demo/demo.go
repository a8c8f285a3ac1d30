// Package demo builds the Sacred Treasures demonstration catalog used by the
// in-memory store and the seed command.
package demo

import (
	"time"

	"github.com/google/uuid"

	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/slug"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/domain"
)

var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://sacredtreasures.example/catalog"))

// ID derives a stable UUID for a demo record so reseeding is repeatable.
func ID(kind, key string) string {
	return uuid.NewSHA1(namespace, []byte(kind+":"+key)).String()
}

// Dataset is a complete catalog snapshot.
type Dataset struct {
	Categories []domain.Category
	Products   []domain.Product
	Reviews    []domain.Review
	Orders     []domain.Order
}

// Product returns the product with the given name, or nil.
func (d *Dataset) Product(name string) *domain.Product {
	for i := range d.Products {
		if d.Products[i].Name == name {
			return &d.Products[i]
		}
	}
	return nil
}

type productSeed struct {
	name, category, description, tags string
	cents, compareCents              int64
	quantity                         int
	featured, digital, inactive      bool
	ageDays                          int
	variants                         []variantSeed
}

type variantSeed struct {
	name, value string
	cents       int64
	quantity    int
}

var categorySeeds = []struct {
	name, parent, description string
}{
	{"Devotional Items", "", "Objects for daily prayer and devotion"},
	{"Prayer Beads", "Devotional Items", "Tasbih, rosaries and malas"},
	{"Crosses & Crucifixes", "Devotional Items", "Wall crosses, pendants and crucifixes"},
	{"Icons & Art", "", "Hand-painted icons and sacred art"},
	{"Candles & Incense", "", "Liturgical candles, resins and incense"},
	{"Sacred Texts", "", "Scripture, prayer books and commentaries"},
}

var productSeeds = []productSeed{
	{
		name: "Premium Amber Tasbih", category: "Prayer Beads",
		description: "Thirty-three hand-polished Baltic amber beads strung on silk cord",
		tags:        "amber,tasbih,islamic", cents: 4500, quantity: 12, featured: true, ageDays: 20,
		variants: []variantSeed{{"Beads", "33", 0, 8}, {"Beads", "99", 7900, 4}},
	},
	{
		name: "Wooden Cross", category: "Crosses & Crucifixes",
		description: "Olive wood wall cross carved by artisans in Bethlehem",
		tags:        "cross,wood,christian", cents: 1850, quantity: 30, ageDays: 45,
	},
	{
		name: "Olive Wood Rosary", category: "Prayer Beads",
		description: "Olive wood beads with a pewter crucifix and Miraculous Medal",
		tags:        "rosary,olive-wood,catholic", cents: 2400, quantity: 25, featured: true, ageDays: 9,
	},
	{
		name: "Sandalwood Mala Bracelet", category: "Prayer Beads",
		description: "Twenty-seven fragrant sandalwood beads on an elastic cord",
		tags:        "mala,sandalwood,buddhist", cents: 3200, quantity: 0, ageDays: 15,
	},
	{
		name: "Silver Crucifix Pendant", category: "Crosses & Crucifixes",
		description: "Sterling silver crucifix on a fine box chain",
		tags:        "crucifix,silver,catholic", cents: 8900, compareCents: 11000, quantity: 7, featured: true, ageDays: 30,
		variants: []variantSeed{{"Chain", "18 in", 0, 4}, {"Chain", "22 in", 9400, 3}},
	},
	{
		name: "Byzantine Icon of Christ Pantocrator", category: "Icons & Art",
		description: "Egg tempera and gold leaf on seasoned linden wood",
		tags:        "icon,orthodox,byzantine", cents: 12900, quantity: 3, featured: true, ageDays: 60,
	},
	{
		name: "Menorah Candle Set", category: "Candles & Incense",
		description: "Forty-four hand-dipped beeswax candles for Hanukkah",
		tags:        "candles,jewish,hanukkah", cents: 2700, quantity: 40, ageDays: 5,
	},
	{
		name: "Frankincense Resin", category: "Candles & Incense",
		description: "Hojari frankincense tears for church and home censers",
		tags:        "incense,frankincense,resin", cents: 1200, quantity: 100, ageDays: 2,
	},
	{
		name: "Illuminated Book of Psalms", category: "Sacred Texts",
		description: "Cloth-bound psalter with full-colour illuminations",
		tags:        "book,psalms,scripture", cents: 5900, quantity: 10, ageDays: 90,
	},
	{
		name: "Daily Prayer Companion", category: "Sacred Texts",
		description: "Morning and evening prayers for every day of the year",
		tags:        "ebook,prayer", cents: 999, quantity: 9999, digital: true, ageDays: 1,
	},
	{
		name: "Brass Hamsa Wall Hanging", category: "Icons & Art",
		description: "Hand-hammered brass hamsa with turquoise glass beads",
		tags:        "hamsa,brass,jewish", cents: 3500, quantity: 6, ageDays: 25,
	},
	{
		name: "Woven Prayer Rug", category: "Devotional Items",
		description: "Discontinued wool prayer rug",
		tags:        "prayer-rug,islamic", cents: 6500, quantity: 2, inactive: true, ageDays: 120,
	},
}

var reviewSeeds = []struct {
	product, user string
	rating        int
	title         string
}{
	{"Premium Amber Tasbih", "amina", 5, "Beautiful weight and warmth"},
	{"Premium Amber Tasbih", "james", 4, ""},
	{"Premium Amber Tasbih", "ruth", 5, "Gift for my father"},
	{"Premium Amber Tasbih", "omar", 3, "Smaller than expected"},
	{"Olive Wood Rosary", "james", 5, ""},
	{"Olive Wood Rosary", "ruth", 5, "Lovely craftsmanship"},
	{"Olive Wood Rosary", "maria", 4, ""},
	{"Wooden Cross", "maria", 3, ""},
	{"Wooden Cross", "james", 4, "Solid and simple"},
	{"Silver Crucifix Pendant", "maria", 4, ""},
	{"Byzantine Icon of Christ Pantocrator", "ruth", 5, "Museum quality"},
	{"Frankincense Resin", "omar", 4, ""},
}

var orderSeeds = []struct {
	key, user string
	ageDays   int
	products  []string
}{
	{"order-1", "amina", 5, []string{"Premium Amber Tasbih", "Frankincense Resin"}},
	{"order-2", "james", 12, []string{"Premium Amber Tasbih", "Frankincense Resin", "Menorah Candle Set"}},
	{"order-3", "ruth", 40, []string{"Premium Amber Tasbih"}},
	{"order-4", "ruth", 3, []string{"Wooden Cross", "Byzantine Icon of Christ Pantocrator"}},
	{"order-5", "james", 60, []string{"Olive Wood Rosary"}},
	{"order-6", "maria", 8, []string{"Silver Crucifix Pendant", "Wooden Cross"}},
}

// UserID returns the id of a demo shopper such as "ruth".
func UserID(name string) string {
	return ID("user", name)
}

// Build returns the demo catalog with timestamps relative to now.
func Build(now time.Time) *Dataset {
	now = now.UTC().Truncate(time.Second)
	day := 24 * time.Hour
	d := &Dataset{}

	catByName := make(map[string]domain.Category, len(categorySeeds))
	for _, s := range categorySeeds {
		c := domain.Category{
			ID:          ID("category", s.name),
			Slug:        slug.Generate(s.name),
			Name:        s.name,
			Description: s.description,
		}
		if s.parent != "" {
			parent := catByName[s.parent].ID
			c.ParentID = &parent
		}
		catByName[s.name] = c
		d.Categories = append(d.Categories, c)
	}

	for _, s := range productSeeds {
		cat := catByName[s.category]
		created := now.Add(-time.Duration(s.ageDays) * day)
		p := domain.Product{
			ID:          ID("product", s.name),
			Slug:        slug.Generate(s.name),
			Name:        s.name,
			Description: s.description,
			Price:       domain.PriceFromCents(s.cents),
			SKU:         "ST-" + ID("sku", s.name)[:8],
			Quantity:    s.quantity,
			Tags:        domain.SplitTags(s.tags),
			IsActive:    !s.inactive,
			IsFeatured:  s.featured,
			IsDigital:   s.digital,
			CategoryID:  cat.ID,
			Category:    &domain.CategoryRef{ID: cat.ID, Slug: cat.Slug, Name: cat.Name},
			Variants:    []domain.Variant{},
			CreatedAt:   created,
			UpdatedAt:   created,
		}
		if s.compareCents > 0 {
			cp := domain.PriceFromCents(s.compareCents)
			p.ComparePrice = &cp
		}
		for _, v := range s.variants {
			variant := domain.Variant{
				ID:       ID("variant", s.name+"/"+v.name+"/"+v.value),
				Name:     v.name,
				Value:    v.value,
				Quantity: v.quantity,
			}
			if v.cents > 0 {
				vp := domain.PriceFromCents(v.cents)
				variant.Price = &vp
			}
			p.Variants = append(p.Variants, variant)
		}
		d.Products = append(d.Products, p)
	}

	for i, s := range reviewSeeds {
		d.Reviews = append(d.Reviews, domain.Review{
			ID:         ID("review", s.product+"/"+s.user),
			ProductID:  ID("product", s.product),
			UserID:     UserID(s.user),
			Rating:     s.rating,
			Title:      s.title,
			IsVerified: true,
			CreatedAt:  now.Add(-time.Duration(i+1) * time.Hour),
		})
	}

	for _, s := range orderSeeds {
		created := now.Add(-time.Duration(s.ageDays) * day)
		o := domain.Order{ID: ID("order", s.key), UserID: UserID(s.user), CreatedAt: created}
		for _, name := range s.products {
			o.Items = append(o.Items, domain.OrderItem{
				ID:         ID("order-item", s.key+"/"+name),
				ProductID:  ID("product", name),
				Quantity:   1,
				PriceCents: d.Product(name).PriceCents(),
				CreatedAt:  created,
			})
		}
		d.Orders = append(d.Orders, o)
	}

	return d
}
