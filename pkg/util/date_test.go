package util

import (
	"testing"
	"time"
)

func TestParseDayISO(t *testing.T) {
	got, err := ParseDay("2019-01-02")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(time.Date(2019, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected day %v", got)
	}
}

func TestParseDayPeriods(t *testing.T) {
	cases := map[string]time.Time{
		"2019-01":              time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
		"2020-Q3":              time.Date(2020, 7, 1, 0, 0, 0, 0, time.UTC),
		"2020q1":               time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		"2019/03/15":           time.Date(2019, 3, 15, 0, 0, 0, 0, time.UTC),
		"2019-03-15 16:00:00":  time.Date(2019, 3, 15, 0, 0, 0, 0, time.UTC),
		"2019-03-15T21:00:00Z": time.Date(2019, 3, 15, 0, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, err := ParseDay(in)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", in, err)
		}
		if !got.Equal(want) {
			t.Fatalf("%s: got %v want %v", in, got, want)
		}
	}
}

func TestParseDayRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "yesterday", "2019-13-45"} {
		if _, err := ParseDay(in); err == nil {
			t.Fatalf("%q: expected error", in)
		}
	}
}

func TestExchangeDay(t *testing.T) {
	// 2019-01-02 04:00 UTC is still Jan 1st in New York (UTC-5).
	ts := time.Date(2019, 1, 2, 4, 0, 0, 0, time.UTC).Unix()
	got := ExchangeDay(ts, -5*3600)
	if !got.Equal(time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected day %v", got)
	}
}

func TestParseNumber(t *testing.T) {
	if v, ok, err := ParseNumber("1,234.5"); err != nil || !ok || v != 1234.5 {
		t.Fatalf("unexpected %v %v %v", v, ok, err)
	}
	for _, in := range []string{"", ".", "NaN", "null"} {
		if _, ok, err := ParseNumber(in); ok || err != nil {
			t.Fatalf("%q: expected missing, got ok=%v err=%v", in, ok, err)
		}
	}
	if v, ok, err := ParseNumber("-12,345,678"); err != nil || !ok || v != -12345678 {
		t.Fatalf("unexpected %v %v %v", v, ok, err)
	}
	for _, in := range []string{"abc", "1,5", "12,34.5", "1,2345", ",123"} {
		if _, _, err := ParseNumber(in); err == nil {
			t.Fatalf("%q: expected error", in)
		}
	}
}
