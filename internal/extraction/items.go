package extraction

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const minItemNameLength = 2

var (
	maxItemPrice = decimal.NewFromInt(1000)

	// Lines carrying any of these are totals or payment lines, never items.
	reSummaryLine = regexp.MustCompile(`(?i)(total|subtotal|tax|change|cash|card|payment|balance|visa|amount)`)

	// Description, whitespace, two-decimal price, optional tax flag letter.
	reItemLine = regexp.MustCompile(`^(.{3,35}?)\s+([\d,]+\.\d{2})\s*[A-Z]?$`)
)

// resolveItems classifies each line independently; lines that are not items are skipped
func resolveItems(doc *Document) []LineItem {
	items := make([]LineItem, 0)
	for _, line := range doc.Lines {
		item, ok := parseItemLine(line)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items
}

func parseItemLine(line string) (LineItem, bool) {
	if reSummaryLine.MatchString(line) {
		return LineItem{}, false
	}

	m := reItemLine.FindStringSubmatch(line)
	if m == nil {
		return LineItem{}, false
	}

	name := strings.TrimSpace(m[1])
	price, ok := parseAmount(m[2])
	if !ok {
		return LineItem{}, false
	}
	if !price.IsPositive() || !price.LessThan(maxItemPrice) {
		return LineItem{}, false
	}
	if utf8.RuneCountInString(name) < minItemNameLength {
		return LineItem{}, false
	}

	return LineItem{Name: name, Price: price}, true
}
