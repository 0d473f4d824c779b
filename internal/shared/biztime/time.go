// Package biztime holds the display timezone. Record timestamps (last update,
// ETA) are stored and transported in UTC; operators read and type them in the
// configured business timezone.
package biztime

import (
	"fmt"
	"sync"
	"time"
)

// DefaultTimezone is used when no timezone is configured.
const DefaultTimezone = "UTC"

// DisplayLayout is the layout used for ETAs and update times in listings.
const DisplayLayout = "2006-01-02 15:04"

var (
	bizLocation *time.Location
	bizMu       sync.RWMutex
)

// Init sets the business timezone. An empty name selects DefaultTimezone.
func Init(tz string) error {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("failed to load timezone %q: %w", tz, err)
	}
	bizMu.Lock()
	bizLocation = loc
	bizMu.Unlock()
	return nil
}

// MustInit initializes the business timezone and panics on error.
func MustInit(tz string) {
	if err := Init(tz); err != nil {
		panic(err)
	}
}

// Location returns the business timezone, UTC when Init was never called.
func Location() *time.Location {
	bizMu.RLock()
	defer bizMu.RUnlock()
	if bizLocation == nil {
		return time.UTC
	}
	return bizLocation
}

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ToBizTimezone converts a time to business timezone for display.
func ToBizTimezone(t time.Time) time.Time {
	return t.In(Location())
}

// FormatInBizTimezone formats t in business timezone; the zero time renders as "-".
func FormatInBizTimezone(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(Location()).Format(DisplayLayout)
}

// ParseInBizTimezone parses an operator-entered time. RFC 3339 values keep
// their own offset; DisplayLayout and date-only values are read in business
// timezone. The result is UTC.
func ParseInBizTimezone(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range []string{DisplayLayout, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, Location()); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q: want RFC 3339, %q or YYYY-MM-DD", s, DisplayLayout)
}
