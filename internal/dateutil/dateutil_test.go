package dateutil

import (
	"errors"
	"testing"
	"time"
)

func TestTruncateToDay(t *testing.T) {
	input := time.Date(2025, 1, 15, 14, 30, 45, 123456789, time.UTC)
	got := TruncateToDay(input)
	want := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseDue(t *testing.T) {
	// Reference: Friday, January 10, 2025 14:30
	friday := time.Date(2025, 1, 10, 14, 30, 0, 0, time.UTC)
	at := func(day, hour, minute int) time.Time {
		return time.Date(2025, 1, day, hour, minute, 0, 0, time.UTC)
	}

	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr error
	}{
		{name: "absolute with time", input: "2025-01-15 09:30", want: at(15, 9, 30)},
		{name: "absolute date only", input: "2025-01-15", want: at(15, 23, 59)},
		{name: "datetime-local", input: "2025-01-15T09:30", want: at(15, 9, 30)},
		{name: "today", input: "today", want: at(10, 23, 59)},
		{name: "today with time", input: "Today 18:00", want: at(10, 18, 0)},
		{name: "tomorrow", input: "TOMORROW", want: at(11, 23, 59)},
		{name: "monday from friday", input: "monday 08:00", want: at(13, 8, 0)},
		{name: "friday from friday is next week", input: "friday", want: at(17, 23, 59)},
		{name: "next-saturday", input: "next-saturday", want: at(11, 23, 59)},
		{name: "next-week", input: "next-week", want: at(17, 23, 59)},
		{name: "earlier today", input: "today 09:00", wantErr: ErrDateInPast},
		{name: "past date", input: "2025-01-09", wantErr: ErrDateInPast},
		{name: "bad weekday", input: "next-someday", wantErr: ErrInvalidDateFormat},
		{name: "bad format", input: "01-15-2025", wantErr: ErrInvalidDateFormat},
		{name: "bad clock", input: "2025-01-15 25:99", wantErr: ErrInvalidDateFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDue(tt.input, friday)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got == nil || !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseDue_Empty(t *testing.T) {
	got, err := ParseDue("   ", time.Now())
	if err != nil || got != nil {
		t.Errorf("ParseDue(blank) = %v, %v; want nil, nil", got, err)
	}
}

func TestParseServerTime(t *testing.T) {
	want := time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)
	for _, in := range []string{
		"2025-01-15T09:30:00Z",
		"2025-01-15T09:30:00",
		"2025-01-15T09:30",
		"2025-01-15 09:30",
		"15/01/2025 09:30",
		"15/01/2025 à 09:30",
	} {
		got, err := ParseServerTime(in, time.UTC)
		if err != nil {
			t.Errorf("ParseServerTime(%q) error: %v", in, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseServerTime(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseServerTime("soon", time.UTC); !errors.Is(err, ErrInvalidDateFormat) {
		t.Errorf("expected ErrInvalidDateFormat, got %v", err)
	}
}

func TestFormat(t *testing.T) {
	d := time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)
	if got := FormatDate(d); got != "15 January 2025, 09:30" {
		t.Errorf("FormatDate() = %q", got)
	}
	if got := FormatDue(&d); got != "2025-01-15 09:30" {
		t.Errorf("FormatDue() = %q", got)
	}
	if got := FormatDue(nil); got != "" {
		t.Errorf("FormatDue(nil) = %q, want empty", got)
	}
}
