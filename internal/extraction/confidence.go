package extraction

import "github.com/shopspring/decimal"

var (
	itemWeight   = weight("0.02")
	maxItemBonus = weight("0.15")
)

// itemBonus is 0.02 per extracted item, capped at 0.15
func itemBonus(count int) decimal.Decimal {
	return decimal.Min(itemWeight.Mul(decimal.NewFromInt(int64(count))), maxItemBonus)
}

// aggregateConfidence sums the contributions and clamps the result to [0, 1]
func aggregateConfidence(contributions ...decimal.Decimal) decimal.Decimal {
	sum := decimal.Sum(decimal.Zero, contributions...)
	return decimal.Max(decimal.Zero, decimal.Min(sum, decimal.NewFromInt(1)))
}
