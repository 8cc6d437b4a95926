package services

import "math"

// PointCalculator converts a spend amount into earned points.
type PointCalculator interface {
	CalculateAmount(price int) int
}

// RatePointCalculator awards a fixed percentage of the spend, rounded down.
type RatePointCalculator struct {
	rate int
}

// NewRatePointCalculator builds a calculator awarding rate percent of each spend.
// A negative rate awards nothing.
func NewRatePointCalculator(rate int) *RatePointCalculator {
	return &RatePointCalculator{rate: max(rate, 0)}
}

// Rate returns the configured percentage.
func (c *RatePointCalculator) Rate() int { return c.rate }

// CalculateAmount returns price*rate/100 truncated toward zero, saturating at the int range.
func (c *RatePointCalculator) CalculateAmount(price int) int {
	if c.rate == 0 {
		return 0
	}
	// price*rate/100 == q*rate + r*rate/100; |r| < 100 keeps r*rate in range
	q, r := price/100, price%100
	switch {
	case q > (math.MaxInt-c.rate)/c.rate:
		return math.MaxInt
	case q < (math.MinInt+c.rate)/c.rate:
		return math.MinInt
	}
	return q*c.rate + r*c.rate/100
}
