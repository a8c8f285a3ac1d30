package demo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_StableIDs(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a, b := Build(now), Build(now.Add(time.Hour))
	require.Equal(t, len(a.Products), len(b.Products))
	for i := range a.Products {
		assert.Equal(t, a.Products[i].ID, b.Products[i].ID)
	}
	assert.Equal(t, ID("product", "Wooden Cross"), a.Product("Wooden Cross").ID)
	assert.Nil(t, a.Product("Missing"))
}

func TestBuild_Consistent(t *testing.T) {
	d := Build(time.Now())

	cats := map[string]bool{}
	for _, c := range d.Categories {
		assert.False(t, cats[c.ID], "duplicate category %s", c.Slug)
		cats[c.ID] = true
		if c.ParentID != nil {
			assert.True(t, cats[*c.ParentID], "parent of %s declared first", c.Slug)
		}
	}

	products := map[string]bool{}
	for _, p := range d.Products {
		assert.False(t, products[p.ID])
		products[p.ID] = true
		assert.True(t, cats[p.CategoryID], "%s has a known category", p.Name)
		assert.NotEmpty(t, p.Slug)
	}

	seen := map[string]bool{}
	for _, r := range d.Reviews {
		assert.True(t, products[r.ProductID])
		assert.GreaterOrEqual(t, r.Rating, 1)
		assert.LessOrEqual(t, r.Rating, 5)
		key := r.UserID + "/" + r.ProductID
		assert.False(t, seen[key], "one review per user and product")
		seen[key] = true
	}

	for _, o := range d.Orders {
		require.NotEmpty(t, o.Items)
		for _, it := range o.Items {
			assert.True(t, products[it.ProductID])
			assert.Equal(t, o.CreatedAt, it.CreatedAt)
		}
	}
}

func TestBuild_ScenarioData(t *testing.T) {
	d := Build(time.Now())

	tasbih := d.Product("Premium Amber Tasbih")
	require.NotNil(t, tasbih)
	assert.Equal(t, []string{"amber", "tasbih", "islamic"}, tasbih.Tags)
	assert.Contains(t, tasbih.Description, "beads")

	cross := d.Product("Wooden Cross")
	require.NotNil(t, cross)
	assert.Equal(t, []string{"cross", "wood", "christian"}, cross.Tags)
	assert.Equal(t, "crosses-and-crucifixes", cross.Category.Slug)
}
