package metadata

import (
	"log/slog"
	"time"
)

// canonicalDateLayout is the normalized form every raw date token is
// mapped to.
const canonicalDateLayout = "2006-01-02"

// dateLayouts are the supported raw token shapes, tried in order. The
// first layout that parses wins.
var dateLayouts = []string{
	"2006-01-02",
	"2006_01_02",
	"01-02-2006",
	"01_02_2006",
	"20060102",
}

// NormalizeDate parses a loosely formatted date token into YYYY-MM-DD.
// A token that matches none of the supported layouts normalizes to the
// empty string; that is logged but is not an error up the stack.
func NormalizeDate(raw string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(canonicalDateLayout)
		}
	}
	slog.Warn("Could not parse date token.", "date", raw)
	return ""
}
