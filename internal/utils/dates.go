package utils

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the canonical storage form for session dates.
const DateLayout = "2006-01-02"

// EligibilityMonths is the donor cooldown after a completed donation.
const EligibilityMonths = 3

// ErrInvalidDate reports a session date that matches no accepted layout.
var ErrInvalidDate = errors.New("invalid date")

// NormalizeSessionDate converts an incoming session date into the canonical
// YYYY-MM-DD form. Both YYYY-MM-DD and the legacy MM/DD/YYYY client format
// are accepted; anything else fails with ErrInvalidDate.
func NormalizeSessionDate(raw string) (string, error) {
	for _, layout := range []string{DateLayout, "01/02/2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return "", ErrInvalidDate
}

// NextEligibleDate returns the first day the donor may donate again after a
// donation completed at the given time: three calendar months later, with
// month overflow normalized forward (Nov 30 + 3 months stays Feb 28/29 + 2,
// i.e. the same normalization MySQL and JS Date apply).
func NextEligibleDate(completed time.Time) time.Time {
	return completed.AddDate(0, EligibilityMonths, 0)
}

// ParseClock parses an "HH:MM" or "HH:MM:SS" wall-clock value into minutes
// since midnight. Session windows and preferred slot times both use this
// representation so they compare as plain integers.
func ParseClock(s string) (int, error) {
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
			return 0, fmt.Errorf("invalid time %q", s)
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight back to "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
