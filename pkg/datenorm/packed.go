package datenorm

import (
	"strconv"
	"strings"
	"time"
)

// NormalizePackedDate parses a fixed-width packed date as found in PDF info
// dictionaries and returns it in canonical form, or "" if a mandatory field
// is missing or not numeric.
//
// The layout is D:YYYYMMDDHHmmSS with an optional "D:" prefix. Year, month
// and day are mandatory, the clock fields default to zero. A trailing marker
// selects the timezone: the letter Z for UTC, or a sign followed by hour
// digits and optional minute digits in the PDF quoting style ("+05'30'").
// Without a marker the offset source supplies the offset. Fields are emitted
// exactly as read; impossible calendar dates pass through untouched.
func (p *Parser) NormalizePackedDate(input string) (result string) {
	defer func() {
		if recover() != nil {
			result = ""
		}
	}()
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}
	s, _ = strings.CutPrefix(s, "D:")

	var d ParsedDate
	fields := []struct {
		dst      *int
		start    int
		width    int
		required bool
	}{
		{&d.Year, 0, 4, true},
		{&d.Month, 4, 2, true},
		{&d.Day, 6, 2, true},
		{&d.Hour, 8, 2, false},
		{&d.Minute, 10, 2, false},
		{&d.Second, 12, 2, false},
	}
	pos := 0
	for _, f := range fields {
		if f.start+f.width > len(s) || !numeric(s[f.start:f.start+f.width]) {
			if f.required {
				return ""
			}
			// clock fields default to zero; whatever remains is the marker
			break
		}
		*f.dst, _ = strconv.Atoi(s[f.start : f.start+f.width])
		pos = f.start + f.width
	}

	off, ok := parseMarker(s[pos:])
	if !ok {
		instant := time.Date(d.Year, time.Month(d.Month), d.Day, d.Hour, d.Minute, d.Second, 0, time.UTC)
		off = p.offsets.OffsetAt(instant)
	}
	d.Offset = off
	return d.String()
}

// parseMarker matches the trailing timezone marker of a packed date: the UTC
// letter Z, or a sign with one or two hour digits, optionally followed by
// minute digits in the PDF quoting style ("+05'30'", "-0800", "+5"). Captured
// digits are re-padded to two places on output. A remainder that does not
// open like a marker leaves the date without one.
func parseMarker(s string) (Offset, bool) {
	if s == "" {
		return Offset{}, false
	}
	switch s[0] {
	case 'Z':
		// the conventional Z00'00' remainder carries no information
		return Offset{UTC: true}, true
	case '+', '-':
		digits, rest := cutDigits(s[1:], 2)
		if digits == "" {
			return Offset{}, false
		}
		hours, _ := strconv.Atoi(digits)
		minutes := 0
		if digits, _ = cutDigits(strings.TrimPrefix(rest, "'"), 2); digits != "" {
			minutes, _ = strconv.Atoi(digits)
		}
		return Offset{Negative: s[0] == '-', Hours: hours, Minutes: minutes}, true
	}
	return Offset{}, false
}

// cutDigits splits up to max leading digits off s.
func cutDigits(s string, max int) (digits, rest string) {
	n := 0
	for n < len(s) && n < max && isDigit(s[n]) {
		n++
	}
	return s[:n], s[n:]
}
