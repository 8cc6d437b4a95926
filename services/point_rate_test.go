package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestRatePointCalculator_OnePercent(t *testing.T) {
	calc := NewRatePointCalculator(1)

	cases := []struct {
		price int
		want  int
	}{
		{price: 10000, want: 100},
		{price: 20000, want: 200},
		{price: 30000, want: 300},
		{price: 0, want: 0},
		{price: 99, want: 0},
		{price: 199, want: 1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, calc.CalculateAmount(tc.price), "price %d", tc.price)
	}
}

func TestRatePointCalculator_FloorOfRate(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rate := rapid.IntRange(0, 100).Draw(t, "rate")
		price := rapid.IntRange(0, 1_000_000_000).Draw(t, "price")

		got := NewRatePointCalculator(rate).CalculateAmount(price)

		// got is the largest integer with got*100 <= price*rate
		if got*100 > price*rate || (got+1)*100 <= price*rate {
			t.Fatalf("CalculateAmount(%d) at rate %d = %d", price, rate, got)
		}
	})
}

func TestRatePointCalculator_Saturates(t *testing.T) {
	assert.Equal(t, math.MaxInt, NewRatePointCalculator(50).CalculateAmount(math.MaxInt))
	assert.Equal(t, math.MaxInt/100, NewRatePointCalculator(1).CalculateAmount(math.MaxInt))
}

func TestRatePointCalculator_NegativeRateAwardsNothing(t *testing.T) {
	calc := NewRatePointCalculator(-5)
	assert.Equal(t, 0, calc.Rate())
	assert.Equal(t, 0, calc.CalculateAmount(10000))
}
