package domain

// ProductStats is derived from a product's reviews. It is never persisted.
type ProductStats struct {
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int     `json:"reviewCount"`
}

// ComputeStats averages ratings, rounding half-up to one decimal place.
// An empty set yields zero stats.
func ComputeStats(ratings []int) ProductStats {
	var sum int64
	for _, r := range ratings {
		sum += int64(r)
	}
	return StatsFromTotals(sum, int64(len(ratings)))
}

// StatsFromTotals is ComputeStats for a pre-aggregated SUM and COUNT.
func StatsFromTotals(sum, count int64) ProductStats {
	if count <= 0 {
		return ProductStats{}
	}
	// Integer arithmetic: round(sum/count, 1) half-up == floor((20*sum + count) / (2*count)) / 10.
	tenths := (20*sum + count) / (2 * count)
	return ProductStats{
		AverageRating: float64(tenths) / 10,
		ReviewCount:   int(count),
	}
}

// RatingTotal is the raw review aggregate for one product.
type RatingTotal struct {
	Sum   int64
	Count int64
}

// Stats converts the aggregate into ProductStats.
func (t RatingTotal) Stats() ProductStats {
	return StatsFromTotals(t.Sum, t.Count)
}
