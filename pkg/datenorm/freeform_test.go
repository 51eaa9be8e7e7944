package datenorm

import "testing"

func TestNormalizeFreeformDate(t *testing.T) {
	p := New(FixedOffset(2 * 3600))
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "zulu_passthrough", in: "2023-06-15T12:00:00Z", want: "2023-06-15T12:00:00Z"},
		{name: "offset_passthrough", in: "2023-06-15T12:00:00+05:30", want: "2023-06-15T12:00:00+05:30"},
		{name: "negative_offset_passthrough", in: "2011-01-19T22:15:00-05:00", want: "2011-01-19T22:15:00-05:00"},
		{name: "padding_trimmed", in: "  2023-06-15T12:00:00Z\n", want: "2023-06-15T12:00:00Z"},
		{name: "no_zone", in: "2023-06-15T12:00:00", want: "2023-06-15T12:00:00+02:00"},
		{name: "space_separated", in: "2023-06-15 12:00:00", want: "2023-06-15T12:00:00+02:00"},
		{name: "minutes_only", in: "2023/06/15 12:00", want: "2023-06-15T12:00:00+02:00"},
		{name: "month_name", in: "June 15, 2023 12:00:00", want: "2023-06-15T12:00:00+02:00"},
		{name: "date_only", in: "2023-06-15", want: "2023-06-15T00:00:00+02:00"},
		{name: "empty", in: "", want: ""},
		{name: "blank", in: " \t ", want: ""},
		{name: "not_a_date", in: "not a date", want: ""},
		{name: "marked_junk", in: "not a date Z", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.NormalizeFreeformDate(tt.in); got != tt.want {
				t.Errorf("NormalizeFreeformDate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeFreeformDateIdempotent(t *testing.T) {
	p := New(FixedOffset(-7 * 3600))
	inputs := []string{
		"2023-06-15T12:00:00Z",
		"2023-06-15T12:00:00+05:30",
		"June 15, 2023 12:00:00",
		"2023-06-15 12:00",
	}
	for _, in := range inputs {
		once := p.NormalizeFreeformDate(in)
		if once == "" {
			t.Fatalf("NormalizeFreeformDate(%q) = %q, want a date", in, once)
		}
		if twice := p.NormalizeFreeformDate(once); twice != once {
			t.Errorf("NormalizeFreeformDate(%q) = %q, want it unchanged", once, twice)
		}
	}
}
