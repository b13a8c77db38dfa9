package util

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dayLayouts are tried in order by ParseDay.
var dayLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"20060102",
	"2006-01",
	"2006-1",
	"Jan 2006",
	"2006",
}

var quarterRe = regexp.MustCompile(`^(\d{4})-?Q([1-4])$`)

// ParseDay coerces a date, date-time or period string to midnight UTC of
// the day it starts on. Monthly periods ("2019-01") map to the first of the
// month and quarters ("2019-Q2") to the first day of the quarter.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if m := quarterRe.FindStringSubmatch(strings.ToUpper(s)); m != nil {
		year, _ := strconv.Atoi(m[1])
		q, _ := strconv.Atoi(m[2])
		return time.Date(year, time.Month((q-1)*3+1), 1, 0, 0, 0, 0, time.UTC), nil
	}
	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, mo, d := t.Date()
			return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ExchangeDay converts a unix timestamp into the calendar day observed at
// an exchange with the given UTC offset in seconds.
func ExchangeDay(ts int64, gmtOffset int) time.Time {
	t := time.Unix(ts, 0).UTC().Add(time.Duration(gmtOffset) * time.Second)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
