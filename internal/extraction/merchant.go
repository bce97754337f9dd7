package extraction

import (
	"regexp"
	"unicode/utf8"
)

const (
	headerLines        = 5
	maxMerchantLength  = 40
	minFallbackLength  = 3
	tierBrandIndicator = "brand_indicator"
	tierWholesale      = "header_wholesale"
	tierHeaderMerchant = "header_known_merchant"
	tierBodyMerchant   = "body_known_merchant"
	tierFallbackLine   = "fallback_line"
)

var (
	brandIndicatorWeight = weight("0.40")
	headerMerchantWeight = weight("0.35")
	bodyMerchantWeight   = weight("0.20")
	fallbackLineWeight   = weight("0.10")
)

type merchantRule struct {
	pattern *regexp.Regexp
	name    string
	// collides is set for names that also show up as products on other stores' receipts;
	// those only count when they appear in the header.
	collides bool
}

func rule(pattern, name string) merchantRule {
	return merchantRule{pattern: regexp.MustCompile(`(?i)` + pattern), name: name}
}

func collidingRule(pattern, name string) merchantRule {
	r := rule(pattern, name)
	r.collides = true
	return r
}

// Phrases that only ever appear on one chain's receipts.
var brandIndicators = []merchantRule{
	rule(`\btarget\s*circle\b`, "Target"),
	rule(`\bcostco\s*wholesale\b`, "Costco"),
	rule(`\bwalmart\s*associate\b`, "Walmart"),
	rule(`\bstarbucks\s*rewards\b`, "Starbucks"),
	rule(`\bmcdonalds\s*app\b`, "McDonald's"),
	rule(`\bchick[\-\s]?fil[\-\s]?a\s*one\b`, "Chick-fil-A"),
	rule(`\bkroger\s*plus\b`, "Kroger"),
	rule(`\bpublix\s*pharmacy\b`, "Publix"),
	rule(`\bcvs\s*extracare\b`, "CVS"),
	rule(`\bwalgreens\s*balance\b`, "Walgreens"),
}

// A bare WHOLESALE in the header is a Costco receipt.
var wholesaleMarker = rule(`\bwholesale\b`, "Costco")

// Ordered most specific first: multi-word names, then unique brands, then common words.
var knownMerchants = []merchantRule{
	rule(`\bwhole\s*foods\b`, "Whole Foods"),
	rule(`\btrader\s*joe'?s?\b`, "Trader Joe's"),
	rule(`\bhome\s*depot\b`, "Home Depot"),
	rule(`\bbest\s*buy\b`, "Best Buy"),
	rule(`\bburger\s*king\b`, "Burger King"),
	rule(`\btaco\s*bell\b`, "Taco Bell"),
	rule(`\bpanera\s*bread\b`, "Panera Bread"),
	rule(`\bchick[\-\s]?fil[\-\s]?a\b`, "Chick-fil-A"),
	rule(`\bdollar\s*(tree|general)\b`, "Dollar Store"),

	rule(`\bcostco\b`, "Costco"),
	rule(`\bwalmart\b`, "Walmart"),
	rule(`\bmcdonald'?s?\b`, "McDonald's"),
	rule(`\bchipotle\b`, "Chipotle"),
	rule(`\bwalgreen'?s?\b`, "Walgreens"),
	rule(`\bnordstrom\b`, "Nordstrom"),
	rule(`\bsafeway\b`, "Safeway"),
	rule(`\bkroger\b`, "Kroger"),
	rule(`\bpublix\b`, "Publix"),
	rule(`\bdunkin'?\b`, "Dunkin'"),
	rule(`\bikea\b`, "IKEA"),

	collidingRule(`\btarget\b`, "Target"),
	collidingRule(`\bstarbucks\b`, "Starbucks"),
	rule(`\bamazon\b`, "Amazon"),
	rule(`\baldi\b`, "Aldi"),
	rule(`\bsubway\b`, "Subway"),
	rule(`\bcvs\b`, "CVS"),
	rule(`\b7[\-\s]?eleven\b`, "7-Eleven"),
}

var (
	reNoiseLine       = regexp.MustCompile(`^[\d\s\-/.:#]+$`)
	reReceiptKeywords = regexp.MustCompile(`(?i)^(total|subtotal|tax|cash|card|change|date|time|member)`)
)

// resolveMerchant walks the merchant tiers in order; the first match wins
func resolveMerchant(doc *Document) (candidate[string], bool) {
	for _, r := range brandIndicators {
		if r.pattern.MatchString(doc.Text) {
			return found(r.name, brandIndicatorWeight, tierBrandIndicator)
		}
	}

	header := joinLines(doc.Header())

	if wholesaleMarker.pattern.MatchString(header) {
		return found(wholesaleMarker.name, headerMerchantWeight, tierWholesale)
	}

	for _, r := range knownMerchants {
		if r.pattern.MatchString(header) {
			return found(r.name, headerMerchantWeight, tierHeaderMerchant)
		}
	}

	for _, r := range knownMerchants {
		if r.collides {
			continue
		}
		if r.pattern.MatchString(doc.Text) {
			return found(r.name, bodyMerchantWeight, tierBodyMerchant)
		}
	}

	if line, ok := fallbackMerchantLine(doc.Header()); ok {
		return found(line, fallbackLineWeight, tierFallbackLine)
	}

	return notFound[string]()
}

// fallbackMerchantLine picks the first header line that plausibly names a store
func fallbackMerchantLine(header []string) (string, bool) {
	for _, line := range header {
		if utf8.RuneCountInString(line) < minFallbackLength {
			continue
		}
		if reNoiseLine.MatchString(line) {
			continue
		}
		if reReceiptKeywords.MatchString(line) {
			continue
		}
		return truncateRunes(line, maxMerchantLength), true
	}
	return "", false
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
