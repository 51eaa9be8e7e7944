package datenorm

import (
	"testing"
	"time"
)

func TestOffsetString(t *testing.T) {
	tests := []struct {
		name string
		off  Offset
		want string
	}{
		{name: "utc_sentinel", off: Offset{UTC: true}, want: "Z"},
		{name: "zero", off: Offset{}, want: "+00:00"},
		{name: "half_hour", off: Offset{Hours: 5, Minutes: 30}, want: "+05:30"},
		{name: "negative", off: Offset{Negative: true, Hours: 8}, want: "-08:00"},
		{name: "negative_sub_hour", off: Offset{Negative: true, Minutes: 30}, want: "-00:30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.off.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFixedOffset(t *testing.T) {
	tests := []struct {
		name string
		secs int
		want string
	}{
		{name: "positive_half", secs: 5*3600 + 30*60, want: "+05:30"},
		{name: "negative", secs: -8 * 3600, want: "-08:00"},
		{name: "zero", secs: 0, want: "+00:00"},
		{name: "truncates_seconds", secs: 3661, want: "+01:01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FixedOffset(tt.secs).OffsetAt(time.Time{}).String(); got != tt.want {
				t.Errorf("OffsetAt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSystemOffsets(t *testing.T) {
	at := time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC)
	_, secs := time.Date(2023, 6, 15, 12, 0, 0, 0, time.Local).Zone()
	want := FixedOffset(secs).OffsetAt(at)
	if got := (SystemOffsets{}).OffsetAt(at); got != want {
		t.Errorf("OffsetAt() = %v, want %v", got, want)
	}
}

func TestParsedDateString(t *testing.T) {
	d := ParsedDate{
		Timestamp: Timestamp{Year: 2023, Month: 6, Day: 15, Hour: 12},
		Offset:    Offset{UTC: true},
	}
	if got := d.String(); got != "2023-06-15T12:00:00Z" {
		t.Errorf("String() = %q, want %q", got, "2023-06-15T12:00:00Z")
	}
	d = ParsedDate{
		Timestamp: Timestamp{Year: 987, Month: 1, Day: 2, Hour: 3, Minute: 4, Second: 5},
		Offset:    Offset{Hours: 1},
	}
	if got := d.String(); got != "0987-01-02T03:04:05+01:00" {
		t.Errorf("String() = %q, want %q", got, "0987-01-02T03:04:05+01:00")
	}
}
