package extraction

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const isoDate = "2006-01-02"

var (
	// Receipts older than this are assumed to be misreads.
	maxDateAge = 5 * 365 * 24 * time.Hour
	// Allows for clock skew and post-dated receipts.
	maxDateLead = 30 * 24 * time.Hour
)

type dateLayout int

const (
	layoutMonthDayYear dateLayout = iota
	layoutMonthDayShortYear
	layoutYearMonthDay
	layoutNamedMonth
)

type dateRule struct {
	pattern *regexp.Regexp
	layout  dateLayout
	tier    string
	weight  decimal.Decimal
}

var dateRules = []dateRule{
	{
		pattern: regexp.MustCompile(`(?i)(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{4})\s+\d{1,2}:\d{2}`),
		layout:  layoutMonthDayYear,
		tier:    "mdy_with_time",
		weight:  weight("0.18"),
	},
	{
		pattern: regexp.MustCompile(`(?i)(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{4})`),
		layout:  layoutMonthDayYear,
		tier:    "mdy",
		weight:  weight("0.15"),
	},
	{
		pattern: regexp.MustCompile(`(?i)(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{2})\b`),
		layout:  layoutMonthDayShortYear,
		tier:    "mdy_short_year",
		weight:  weight("0.15"),
	},
	{
		pattern: regexp.MustCompile(`(?i)(\d{4})[/\-](\d{1,2})[/\-](\d{1,2})`),
		layout:  layoutYearMonthDay,
		tier:    "ymd",
		weight:  weight("0.15"),
	},
	{
		pattern: regexp.MustCompile(`(?i)(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+(\d{1,2}),?\s+(\d{4})`),
		layout:  layoutNamedMonth,
		tier:    "named_month",
		weight:  weight("0.15"),
	},
}

var monthAbbreviations = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"oct": time.October,
	"nov": time.November,
	"dec": time.December,
}

// resolveDate returns the first date that parses and falls inside the validity window
// around now, formatted as YYYY-MM-DD
func resolveDate(doc *Document, now time.Time) (candidate[string], bool) {
	earliest := now.Add(-maxDateAge)
	latest := now.Add(maxDateLead)

	for _, r := range dateRules {
		m := r.pattern.FindStringSubmatch(doc.Text)
		if m == nil {
			continue
		}
		date, ok := buildDate(r.layout, m[1], m[2], m[3], now.Location())
		if !ok {
			continue
		}
		if date.Before(earliest) || date.After(latest) {
			continue
		}
		return found(date.Format(isoDate), r.weight, r.tier)
	}

	return notFound[string]()
}

func buildDate(layout dateLayout, a, b, c string, loc *time.Location) (time.Time, bool) {
	var year, month, day int
	var err error

	switch layout {
	case layoutMonthDayYear, layoutMonthDayShortYear:
		if month, err = strconv.Atoi(a); err != nil {
			return time.Time{}, false
		}
		if day, err = strconv.Atoi(b); err != nil {
			return time.Time{}, false
		}
		if year, err = strconv.Atoi(c); err != nil {
			return time.Time{}, false
		}
		if layout == layoutMonthDayShortYear {
			year += 2000
		}
	case layoutYearMonthDay:
		if year, err = strconv.Atoi(a); err != nil {
			return time.Time{}, false
		}
		if month, err = strconv.Atoi(b); err != nil {
			return time.Time{}, false
		}
		if day, err = strconv.Atoi(c); err != nil {
			return time.Time{}, false
		}
	case layoutNamedMonth:
		m, ok := monthAbbreviations[strings.ToLower(a)]
		if !ok {
			return time.Time{}, false
		}
		month = int(m)
		if day, err = strconv.Atoi(b); err != nil {
			return time.Time{}, false
		}
		if year, err = strconv.Atoi(c); err != nil {
			return time.Time{}, false
		}
	default:
		return time.Time{}, false
	}

	return calendarDate(year, month, day, loc)
}

// calendarDate rejects dates that time.Date would silently normalize, such as 13/01 or 02/30
func calendarDate(year, month, day int, loc *time.Location) (time.Time, bool) {
	if year < 1 || month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}
