package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProportional_ExactSplit(t *testing.T) {
	assert.Equal(t, []int64{100, 300}, Proportional(400, []int64{1000, 3000}))
}

func TestProportional_Rounding(t *testing.T) {
	shares := Proportional(100, []int64{1, 1, 1})
	assert.Equal(t, []int64{33, 33, 33}, shares)

	shares = Proportional(101, []int64{1, 1})
	assert.Equal(t, []int64{51, 51}, shares)
}

func TestProportional_DriftBounded(t *testing.T) {
	weights := [][]int64{
		{1, 1, 1},
		{333, 333, 334},
		{1, 2, 3, 4, 5, 6, 7},
		{999, 1},
		{5, 5, 5, 5, 5, 5},
	}
	for _, w := range weights {
		var total int64
		for _, x := range w {
			total += x
		}
		for amount := int64(0); amount <= total; amount++ {
			shares := Proportional(amount, w)
			var sum int64
			for i, s := range shares {
				assert.GreaterOrEqual(t, s, int64(0))
				assert.LessOrEqual(t, s, w[i], "share must not exceed its weight")
				sum += s
			}
			drift := sum - amount
			if drift < 0 {
				drift = -drift
			}
			// each share is off by at most half a unit
			assert.LessOrEqual(t, 2*drift, int64(len(w)), "weights=%v amount=%d", w, amount)
		}
	}
}

func TestProportional_ZeroWeights(t *testing.T) {
	assert.Equal(t, []int64{0, 0}, Proportional(50, []int64{0, 0}))
	assert.Equal(t, []int64{}, Proportional(50, nil))
}

func TestAllocate(t *testing.T) {
	testCases := []struct {
		name    string
		amount  int64
		weights []int64
		want    []int64
	}{
		{"exact", 400, []int64{1000, 3000}, []int64{100, 300}},
		{"one unit over two", 1, []int64{1, 1}, []int64{1, 0}},
		{"thirds", 100, []int64{1, 1, 1}, []int64{34, 33, 33}},
		{"largest remainder wins", 10, []int64{1, 2, 4}, []int64{1, 3, 6}},
		{"full amount", 7, []int64{3, 4}, []int64{3, 4}},
		{"zero amount", 0, []int64{3, 4}, []int64{0, 0}},
		{"zero weights", 5, []int64{0, 0}, []int64{0, 0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Allocate(tc.amount, tc.weights))
		})
	}
}

func TestAllocate_SumsExactly(t *testing.T) {
	weights := [][]int64{
		{1, 1},
		{1, 1, 1},
		{333, 333, 334},
		{1, 2, 3, 4, 5, 6, 7},
		{999, 1},
		{0, 5, 0, 5},
	}
	for _, w := range weights {
		var total int64
		for _, x := range w {
			total += x
		}
		for amount := int64(0); amount <= total; amount++ {
			var sum int64
			for i, s := range Allocate(amount, w) {
				assert.GreaterOrEqual(t, s, int64(0))
				assert.LessOrEqual(t, s, w[i], "share must not exceed its weight")
				sum += s
			}
			assert.Equal(t, amount, sum, "weights=%v amount=%d", w, amount)
		}
	}
}

func TestMinimumAdvance(t *testing.T) {
	testCases := []struct {
		name          string
		total         int64
		fixed         int64
		percentage    float64
		usePercentage bool
		want          int64
	}{
		{"fixed", 3600, 1000, 0, false, 1000},
		{"fixed capped at total", 600, 1000, 0, false, 600},
		{"percentage exact", 3600, 0, 25, true, 900},
		{"percentage ceil", 3601, 0, 25, true, 901},
		{"fractional percentage", 1000, 0, 12.5, true, 125},
		{"zero total", 0, 1000, 25, true, 0},
		{"negative fixed", 100, -5, 0, false, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MinimumAdvance(tc.total, tc.fixed, tc.percentage, tc.usePercentage))
		})
	}
}
