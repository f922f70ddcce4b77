package dates

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name  string
		input string

		ok     bool
		year   int
		month  time.Month
		day    int
		hour   int
		minute int
	}{
		{
			name:  "Dotted with time",
			input: "05.03.2024 14:30",
			ok:    true, year: 2024, month: time.March, day: 5, hour: 14, minute: 30,
		},
		{
			name:  "Dotted without time",
			input: "05.03.2024",
			ok:    true, year: 2024, month: time.March, day: 5,
		},
		{
			name:  "ISO dashed",
			input: "2024-03-05",
			ok:    true, year: 2024, month: time.March, day: 5,
		},
		{
			name:  "Day-first dashed",
			input: "05-03-2024",
			ok:    true, year: 2024, month: time.March, day: 5,
		},
		{
			name:  "Slash fallback",
			input: "05/03/2024",
			ok:    true, year: 2024, month: time.March, day: 5,
		},
		{
			name:  "Two-digit year stays literal",
			input: "05-03-24",
			ok:    true, year: 24, month: time.March, day: 5,
		},
		{
			name:  "Empty",
			input: "",
			ok:    false,
		},
		{
			name:  "Whitespace only",
			input: "   ",
			ok:    false,
		},
		{
			name:  "Not a date",
			input: "not-a-date",
			ok:    false,
		},
		{
			name:  "Month out of range",
			input: "05.13.2024",
			ok:    false,
		},
		{
			name:  "Day out of range",
			input: "32.01.2024",
			ok:    false,
		},
		{
			name:  "Nonsense time part",
			input: "05.03.2024 25:00",
			ok:    false,
		},
		{
			name:  "Too few dash segments",
			input: "2024-03",
			ok:    false,
		},
	}

	for _, testCase := range testCases {
		got, ok := Parse(testCase.input)
		if ok != testCase.ok {
			t.Errorf("%s: Parse(%q) ok = %v, want %v", testCase.name, testCase.input, ok, testCase.ok)
			continue
		}
		if !ok {
			continue
		}
		if got.Year() != testCase.year || got.Month() != testCase.month || got.Day() != testCase.day ||
			got.Hour() != testCase.hour || got.Minute() != testCase.minute {
			t.Errorf("%s: Parse(%q) = %v, want %04d-%02d-%02d %02d:%02d",
				testCase.name, testCase.input, got, testCase.year, testCase.month, testCase.day, testCase.hour, testCase.minute)
		}
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2024, time.March, 5, 9, 15, 0, 0, time.Local)
	b := time.Date(2024, time.March, 5, 23, 59, 0, 0, time.Local)
	c := time.Date(2024, time.March, 6, 0, 0, 0, 0, time.Local)

	if !SameDay(a, b) {
		t.Errorf("expected %v and %v to be the same day", a, b)
	}
	if SameDay(a, c) {
		t.Errorf("expected %v and %v to be different days", a, c)
	}
}

func TestStartOfDay(t *testing.T) {
	in := time.Date(2024, time.March, 5, 14, 30, 45, 123, time.Local)
	got := StartOfDay(in)
	want := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("StartOfDay(%v) = %v, want %v", in, got, want)
	}
}
