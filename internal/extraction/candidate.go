package extraction

import "github.com/shopspring/decimal"

// candidate is a resolved value together with the weight and name of the tier that produced it
type candidate[T any] struct {
	value  T
	weight decimal.Decimal
	tier   string
}

func found[T any](value T, weight decimal.Decimal, tier string) (candidate[T], bool) {
	return candidate[T]{value: value, weight: weight, tier: tier}, true
}

func notFound[T any]() (candidate[T], bool) {
	return candidate[T]{weight: decimal.Zero}, false
}

func weight(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
