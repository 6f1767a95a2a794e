package engine

import (
	"compsage/server/internal/models"
	"math"
	"sort"
)

// Summarize reduces a set of adjusted comps to a price range, a median
// and a single estimated value: the arithmetic mean of the adjusted
// prices rounded to the nearest $1,000, matching the plain
// average-of-adjusted-comps convention used in comparative market
// analysis.
func Summarize(adjusted []models.AdjustedComp) (models.ValuationSummary, error) {
	if len(adjusted) == 0 {
		return models.ValuationSummary{}, ErrEmptyComparisonSet
	}

	prices := make([]int64, len(adjusted))
	var sum int64
	for i, ac := range adjusted {
		prices[i] = ac.AdjustedPrice
		sum += ac.AdjustedPrice
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i] < prices[j] })

	mean := float64(sum) / float64(len(prices))
	return models.ValuationSummary{
		MinAdjustedPrice:    prices[0],
		MaxAdjustedPrice:    prices[len(prices)-1],
		MedianAdjustedPrice: medianOf(prices),
		EstimatedValue:      roundToNearest(mean, 1000),
		SampleSize:          len(adjusted),
	}, nil
}

func medianOf(sorted []int64) int64 {
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return roundToNearest(float64(sorted[mid-1]+sorted[mid])/2, 1)
}

func roundToNearest(v float64, step int64) int64 {
	return int64(math.Round(v/float64(step))) * step
}
