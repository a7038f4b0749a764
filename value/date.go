package value

import (
	"fmt"
	"time"
)

// isoDateLayout is the ISO-8601 calendar-date format the engine accepts at
// its boundary (§4.1 "ISO-8601 calendar date at UTC midnight").
const isoDateLayout = "2006-01-02"

// ParseDate converts an ISO-8601 calendar date string into seconds since
// epoch at UTC midnight, the internal representation used by Date indices
// and delta scopes. Parsing failure is a caller error (§7 InvalidInput).
//
// No third-party date library in the example pack offers calendar-date (not
// datetime) parsing more directly than stdlib time.Parse, so this stays on
// the standard library — see DESIGN.md.
func ParseDate(s string) (int64, error) {
	t, err := time.ParseInLocation(isoDateLayout, s, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an ISO-8601 calendar date: %v", ErrInvalidInput, s, err)
	}
	return t.Unix(), nil
}

// FormatDate renders a timestamp (seconds since epoch) back as the
// ISO-8601 calendar date it was parsed from.
func FormatDate(timestamp int64) string {
	return time.Unix(timestamp, 0).UTC().Format(isoDateLayout)
}
