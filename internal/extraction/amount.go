package extraction

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	minAmount         = decimal.NewFromInt(1)
	maxAmount         = decimal.NewFromInt(10000)
	minFallbackAmount = decimal.NewFromInt(5)
	fallbackWeight    = weight("0.15")
)

const tierLargestAmount = "largest_amount"

// amountRule matches a total-bearing line; group 1 captures the amount
type amountRule struct {
	pattern *regexp.Regexp
	tier    string
	weight  decimal.Decimal
}

func amountPattern(tier, pattern, w string) amountRule {
	return amountRule{
		pattern: regexp.MustCompile(`(?im)` + pattern),
		tier:    tier,
		weight:  weight(w),
	}
}

var totalRules = []amountRule{
	amountPattern("emphasized_total", `\*{2,4}\s*TOTAL\s*[:\s]*\$?\s*([\d,]+\.?\d{0,2})\b`, "0.40"),
	amountPattern("grand_total", `\bGRAND\s*TOTAL\s*[:\s]*\$?\s*([\d,]+\.?\d{0,2})\b`, "0.38"),
	amountPattern("total", `\bTOTAL\s*[:\s]*\$?\s*([\d,]+\.?\d{0,2})\b`, "0.35"),
	amountPattern("amount_due", `\bAMOUNT\s*(?:DUE)?\s*[:\s]*\$?\s*([\d,]+\.?\d{0,2})\b`, "0.30"),
	amountPattern("balance", `\bBALANCE\s*[:\s]*\$?\s*([\d,]+\.?\d{0,2})\b`, "0.25"),
	amountPattern("total_line_trailing", `TOTAL.*?([\d,]+\.\d{2})\s*$`, "0.30"),
	amountPattern("payment_amount", `\bVISA\s+([\d,]+\.\d{2})\b`, "0.25"),
	amountPattern("amount_label", `\bAMOUNT:\s*\$?([\d,]+\.\d{2})\b`, "0.25"),
}

var subtotalRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bSUBTOTAL\s*[:\s]*\$?\s*([\d,]+\.?\d{0,2})\b`),
	regexp.MustCompile(`(?i)\bSUB\s*TOTAL\s*[:\s]*\$?\s*([\d,]+\.?\d{0,2})\b`),
}

// Fallback candidates are whole numeric runs, so "15000.00" is never read as "5000.00"
// while "12.99F" and "x12.99" still count.
var (
	reNumericRun       = regexp.MustCompile(`\d+(?:\.\d+)?`)
	reTwoDecimalAmount = regexp.MustCompile(`^\d{1,4}\.\d{2}$`)
)

// resolveTotal returns the first in-range amount found by the total tiers, falling back
// to the largest plausible two-decimal amount anywhere in the text
func resolveTotal(doc *Document) (candidate[decimal.Decimal], bool) {
	for _, r := range totalRules {
		value, ok := firstAmount(r.pattern, doc.Text)
		if !ok {
			continue
		}
		return found(value, r.weight, r.tier)
	}

	if value, ok := largestAmount(doc.Text); ok {
		return found(value, fallbackWeight, tierLargestAmount)
	}

	return notFound[decimal.Decimal]()
}

// resolveSubtotal does not contribute to confidence and has no fallback
func resolveSubtotal(doc *Document) (decimal.Decimal, bool) {
	for _, pattern := range subtotalRules {
		if value, ok := firstAmount(pattern, doc.Text); ok {
			return value, true
		}
	}
	return decimal.Zero, false
}

// firstAmount parses the first match of pattern; it reports false when there is no match
// or the captured amount is unparsable or outside [1, 10000]
func firstAmount(pattern *regexp.Regexp, text string) (decimal.Decimal, bool) {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return decimal.Zero, false
	}
	value, ok := parseAmount(m[1])
	if !ok {
		return decimal.Zero, false
	}
	if value.LessThan(minAmount) || value.GreaterThan(maxAmount) {
		return decimal.Zero, false
	}
	return value, true
}

func largestAmount(text string) (decimal.Decimal, bool) {
	var (
		best decimal.Decimal
		ok   bool
	)
	for _, token := range reNumericRun.FindAllString(text, -1) {
		if !reTwoDecimalAmount.MatchString(token) {
			continue
		}
		value, parsed := parseAmount(token)
		if !parsed {
			continue
		}
		if value.LessThan(minFallbackAmount) || value.GreaterThan(maxAmount) {
			continue
		}
		if !ok || value.GreaterThan(best) {
			best, ok = value, true
		}
	}
	return best, ok
}

// parseAmount accepts digits with optional thousands separators and a trailing
// decimal point ("1,234.5", "12.")
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		return decimal.Zero, false
	}
	value, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return value, true
}
