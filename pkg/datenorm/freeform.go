package datenorm

import (
	"strings"

	"github.com/araddon/dateparse"
)

// NormalizeFreeformDate parses a loosely formatted calendar string and
// returns it in canonical form, or "" if the input is not a date.
//
// Inputs that already end in an explicit timezone marker, the UTC letter Z or
// a signed HH:MM offset, are returned unchanged apart from surrounding
// whitespace, so normalizing a second time is a no-op. All other inputs are
// rebuilt from their parsed calendar fields and completed with the offset
// source's offset at that date.
func (p *Parser) NormalizeFreeformDate(input string) (result string) {
	defer func() {
		if recover() != nil {
			result = ""
		}
	}()
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return ""
	}
	if hasZoneSuffix(s) {
		return s
	}
	d := ParsedDate{Offset: p.offsets.OffsetAt(t)}
	d.Year = t.Year()
	d.Month = int(t.Month())
	d.Day = t.Day()
	d.Hour, d.Minute, d.Second = t.Clock()
	return d.String()
}

// hasZoneSuffix reports whether s ends in an explicit timezone marker,
// the UTC letter Z or a signed two-digit offset like +05:30.
func hasZoneSuffix(s string) bool {
	if strings.HasSuffix(s, "Z") {
		return true
	}
	if len(s) < 6 {
		return false
	}
	tail := s[len(s)-6:]
	if tail[0] != '+' && tail[0] != '-' {
		return false
	}
	return isDigit(tail[1]) && isDigit(tail[2]) && tail[3] == ':' && isDigit(tail[4]) && isDigit(tail[5])
}
