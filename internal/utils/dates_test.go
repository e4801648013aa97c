package utils

import (
	"testing"
	"time"
)

func TestNormalizeSessionDate(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2025-06-01", want: "2025-06-01"},
		{in: "06/01/2025", want: "2025-06-01"},
		{in: "12/31/2025", want: "2025-12-31"},
		{in: "31/12/2025", wantErr: true},
		{in: "2025-6-1", wantErr: true},
		{in: "", wantErr: true},
		{in: "tomorrow", wantErr: true},
	}
	for _, tc := range cases {
		got, err := NormalizeSessionDate(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("NormalizeSessionDate(%q): expected error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeSessionDate(%q): unexpected error %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("NormalizeSessionDate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNextEligibleDate(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	cases := []struct {
		completed time.Time
		want      time.Time
	}{
		{day(2025, time.January, 10), day(2025, time.April, 10)},
		{day(2025, time.October, 15), day(2026, time.January, 15)},
		// Month overflow normalizes forward: Nov 30 + 3 months = Mar 2 (non-leap).
		{day(2024, time.November, 30), day(2025, time.March, 2)},
		{day(2025, time.January, 31), day(2025, time.May, 1)},
	}
	for _, tc := range cases {
		if got := NextEligibleDate(tc.completed); !got.Equal(tc.want) {
			t.Errorf("NextEligibleDate(%s) = %s, want %s",
				tc.completed.Format(DateLayout), got.Format(DateLayout), tc.want.Format(DateLayout))
		}
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "09:00", want: 540},
		{in: "09:00:00", want: 540},
		{in: "13:30", want: 810},
		{in: "00:00", want: 0},
		{in: "24:00", wantErr: true},
		{in: "09:61", wantErr: true},
		{in: "morning", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error, got %d", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): unexpected error %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock(540); got != "09:00" {
		t.Errorf("FormatClock(540) = %q, want 09:00", got)
	}
	if got := FormatClock(810); got != "13:30" {
		t.Errorf("FormatClock(810) = %q, want 13:30", got)
	}
}
