package extraction

import (
	"strings"
	"time"
)

// dateLayouts are tried in order; month-first wins over day-first for ambiguous values.
var dateLayouts = []string{
	"2006-1-2",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"1/2/2006",
	"1-2-2006",
	"2/1/2006",
	"2-1-2006",
	"2006/1/2",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan. 2, 2006",
	"Jan 2 2006",
	"January 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"1/2/06",
	"1-2-06",
}

// NormalizeDate rewrites a recognised date as YYYY-MM-DD. Unparseable input is returned unchanged.
func NormalizeDate(s string) string {
	trimmed := strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}

func normalizeDates(fields Fields, dateFields []string) {
	for _, f := range dateFields {
		if s, ok := fields[f].(string); ok {
			fields[f] = NormalizeDate(s)
		}
	}
}
