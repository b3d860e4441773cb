package domain

import "math"

// RatingMin and RatingMax bound the accepted rating scale.
const (
	RatingMin = 1
	RatingMax = 5
)

// Aggregate is the denormalized rating summary stored on a target entity.
// It is derived state: always recomputed from the full review set, never
// maintained incrementally.
type Aggregate struct {
	AverageRating float64     `json:"average_rating"`
	ReviewCount   int         `json:"review_count"`
	Distribution  map[int]int `json:"distribution"`
}

// ZeroAggregate returns the aggregate of a target with no reviews: average 0,
// count 0, all five buckets present and zero.
func ZeroAggregate() Aggregate {
	return Aggregate{
		AverageRating: 0,
		ReviewCount:   0,
		Distribution:  emptyDistribution(),
	}
}

func emptyDistribution() map[int]int {
	d := make(map[int]int, RatingMax)
	for r := RatingMin; r <= RatingMax; r++ {
		d[r] = 0
	}
	return d
}

// ComputeAggregate derives the aggregate from the full set of a target's
// reviews. The average is rounded to one decimal place, half away from zero.
// Running it twice over the same input yields identical results.
func ComputeAggregate(reviews []Review) Aggregate {
	if len(reviews) == 0 {
		return ZeroAggregate()
	}

	dist := emptyDistribution()
	sum := 0
	for _, rv := range reviews {
		sum += rv.Rating
		dist[rv.Rating]++
	}

	return Aggregate{
		AverageRating: Round1(float64(sum) / float64(len(reviews))),
		ReviewCount:   len(reviews),
		Distribution:  dist,
	}
}

// Round1 rounds to one decimal place, half away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
