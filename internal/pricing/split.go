package pricing

import (
	"math"
	"sort"
)

// Proportional splits amount across weights as round(amount*w/Σw), half up.
// Shares are not forced to add up to amount; each share is off by at most half a
// unit. Zero total weight yields zero shares.
func Proportional(amount int64, weights []int64) []int64 {
	shares := make([]int64, len(weights))
	var total int64
	for _, w := range weights {
		total += w
	}
	if total <= 0 || amount == 0 {
		return shares
	}
	for i, w := range weights {
		shares[i] = roundHalfUp(amount*w, total)
	}
	return shares
}

// Allocate splits amount across weights so the shares add up to exactly
// amount: every share gets floor(amount*w/Σw) and the units left over go to the
// largest remainders, lower index first on ties. With 0 <= amount <= Σw no
// share exceeds its weight. Zero total weight yields zero shares.
func Allocate(amount int64, weights []int64) []int64 {
	shares := make([]int64, len(weights))
	var total int64
	for _, w := range weights {
		total += w
	}
	if total <= 0 || amount <= 0 {
		return shares
	}

	remainders := make([]int64, len(weights))
	order := make([]int, len(weights))
	left := amount
	for i, w := range weights {
		shares[i] = amount * w / total
		remainders[i] = amount * w % total
		order[i] = i
		left -= shares[i]
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]] > remainders[order[b]]
	})
	for _, i := range order {
		if left == 0 {
			break
		}
		if remainders[i] == 0 {
			continue
		}
		shares[i]++
		left--
	}
	return shares
}

// MinimumAdvance is ceil(total*percentage/100) in percentage mode, the fixed
// amount otherwise; never more than total and never negative.
func MinimumAdvance(total int64, fixed int64, percentage float64, usePercentage bool) int64 {
	if total <= 0 {
		return 0
	}
	required := fixed
	if usePercentage {
		required = int64(math.Ceil(float64(total) * percentage / 100))
	}
	return max(0, min(required, total))
}
