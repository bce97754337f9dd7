package extraction

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type defaultTimeSource struct{}

func (defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Contribution records which tier resolved a field and what it added to the confidence
type Contribution struct {
	Tier   string          `json:"tier,omitempty"`
	Weight decimal.Decimal `json:"weight"`
}

// Explanation breaks the confidence score of a Result down by field
type Explanation struct {
	Merchant  Contribution    `json:"merchant"`
	Total     Contribution    `json:"total"`
	Date      Contribution    `json:"date"`
	Items     int             `json:"items"`
	ItemBonus decimal.Decimal `json:"item_bonus"`
}

// Extractor turns recognized receipt text into a Result. It holds no mutable state and
// is safe for concurrent use.
type Extractor struct {
	timeSource TimeSource
}

// Option configures an Extractor
type Option func(*Extractor)

// WithTimeSource sets the clock the date validity window is measured against
func WithTimeSource(ts TimeSource) Option {
	return func(e *Extractor) {
		e.timeSource = ts
	}
}

// New creates an Extractor
func New(opts ...Option) *Extractor {
	e := &Extractor{timeSource: defaultTimeSource{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs the full pipeline over raw recognized text
func (e *Extractor) Extract(raw string) *Result {
	result, _ := e.Explain(raw)
	return result
}

// Explain runs the pipeline and also reports which tier produced each scored field
func (e *Extractor) Explain(raw string) (*Result, Explanation) {
	doc := NewDocument(raw)

	merchant, hasMerchant := resolveMerchant(doc)
	total, hasTotal := resolveTotal(doc)
	subtotal, hasSubtotal := resolveSubtotal(doc)
	date, hasDate := resolveDate(doc, e.timeSource.Now())
	items := resolveItems(doc)

	bonus := itemBonus(len(items))
	confidence := aggregateConfidence(merchant.weight, total.weight, date.weight, bonus)

	var (
		merchantName *string
		totalAmount  *decimal.Decimal
		subtotalAmt  *decimal.Decimal
		dateString   *string
	)
	if hasMerchant {
		merchantName = &merchant.value
	}
	if hasTotal {
		totalAmount = &total.value
	}
	if hasSubtotal {
		subtotalAmt = &subtotal
	}
	if hasDate {
		dateString = &date.value
	}

	explanation := Explanation{
		Merchant:  Contribution{Tier: merchant.tier, Weight: merchant.weight},
		Total:     Contribution{Tier: total.tier, Weight: total.weight},
		Date:      Contribution{Tier: date.tier, Weight: date.weight},
		Items:     len(items),
		ItemBonus: bonus,
	}

	return assemble(doc, merchantName, totalAmount, subtotalAmt, dateString, items, confidence), explanation
}
