package datenorm

import (
	"testing"
	"time"
)

func TestNormalizePackedDate(t *testing.T) {
	// +05:30, deterministic regardless of the host timezone
	p := New(FixedOffset(5*3600 + 30*60))
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "utc", in: "D:20230615120000Z", want: "2023-06-15T12:00:00Z"},
		{name: "quoted_offset", in: "D:20230615120000+05'30'", want: "2023-06-15T12:00:00+05:30"},
		{name: "no_marker_defaults", in: "D:2023061512", want: "2023-06-15T12:00:00+05:30"},
		{name: "no_prefix", in: "20230615120000Z", want: "2023-06-15T12:00:00Z"},
		{name: "negative_offset", in: "D:20230615120000-08'00'", want: "2023-06-15T12:00:00-08:00"},
		{name: "unquoted_offset", in: "D:20230615120000+0530", want: "2023-06-15T12:00:00+05:30"},
		{name: "single_digit_offset", in: "D:20230615120000+5'3'", want: "2023-06-15T12:00:00+05:03"},
		{name: "half_open_quote", in: "D:20230615120000+05'30", want: "2023-06-15T12:00:00+05:30"},
		{name: "hour_only_offset", in: "D:20230615120000+2", want: "2023-06-15T12:00:00+02:00"},
		{name: "utc_with_zeroes", in: "D:20230615120000Z00'00'", want: "2023-06-15T12:00:00Z"},
		{name: "date_only", in: "D:20230615", want: "2023-06-15T00:00:00+05:30"},
		{name: "marker_after_date", in: "D:20230615Z", want: "2023-06-15T00:00:00Z"},
		{name: "stray_trailing_digit", in: "D:202306151", want: "2023-06-15T00:00:00+05:30"},
		{name: "sign_without_digits", in: "D:20230615+", want: "2023-06-15T00:00:00+05:30"},
		{name: "impossible_day_kept", in: "D:20230231120000Z", want: "2023-02-31T12:00:00Z"},
		{name: "padded", in: "  D:20230615120000Z  ", want: "2023-06-15T12:00:00Z"},
		{name: "month_only", in: "D:202306", want: ""},
		{name: "nonnumeric_day", in: "D:2023-6-15", want: ""},
		{name: "garbage", in: "garbage", want: ""},
		{name: "empty", in: "", want: ""},
		{name: "blank", in: "   ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.NormalizePackedDate(tt.in); got != tt.want {
				t.Errorf("NormalizePackedDate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizePackedDateLocalOffset(t *testing.T) {
	// without a marker the host timezone in effect at that date fills the gap
	_, secs := time.Date(2023, 6, 15, 12, 0, 0, 0, time.Local).Zone()
	want := "2023-06-15T12:00:00" + FixedOffset(secs).OffsetAt(time.Time{}).String()
	if got := NormalizePackedDate("D:2023061512"); got != want {
		t.Errorf("NormalizePackedDate() = %q, want %q", got, want)
	}
}
