package orbitshare

import "math"

// AverageRating computes the catalog's rating aggregate from a sum of
// ratings and a review count: the mean rounded half-up to one decimal
// place, or 0.0 for an unreviewed resource. Every repository
// implementation funnels through this function so the rounding rule cannot
// drift between backends.
func AverageRating(ratingSum int64, reviewCount int) float64 {
	if reviewCount == 0 {
		return 0.0
	}
	mean := float64(ratingSum) / float64(reviewCount)
	return math.Floor(mean*10+0.5) / 10
}
