// Package datenorm normalizes document metadata timestamps into a canonical
// calendar form with an explicit timezone.
//
// Two source shapes are supported: freeform calendar strings as found in
// office document properties ("June 15, 2023 12:00", "2023-06-15T12:00:00Z")
// and the packed fixed-width dates of PDF info dictionaries
// ("D:20230615120000+05'30'"). Both normalize to YYYY-MM-DDTHH:mm:ss followed
// by either the UTC letter Z or a signed HH:MM offset. Inputs that cannot be
// normalized yield the empty string, never an error.
package datenorm

import (
	"fmt"
	"time"
)

// Timestamp holds the broken-down fields of a date string exactly as they
// were read. Fields are emitted zero-padded and are not checked for calendar
// validity.
type Timestamp struct {
	Year, Month, Day     int
	Hour, Minute, Second int
}

// Offset is a UTC offset in whole minutes, or the UTC sentinel.
type Offset struct {
	UTC      bool
	Negative bool
	Hours    int
	Minutes  int
}

// String renders the offset as it appears in canonical output: "Z" for the
// UTC sentinel, otherwise a signed, zero-padded "±HH:MM".
func (o Offset) String() string {
	if o.UTC {
		return "Z"
	}
	sign := "+"
	if o.Negative {
		sign = "-"
	}
	return fmt.Sprintf("%s%02d:%02d", sign, o.Hours, o.Minutes)
}

// ParsedDate couples a timestamp with the offset it will be emitted with.
type ParsedDate struct {
	Timestamp
	Offset Offset
}

// String emits the canonical form, YYYY-MM-DDTHH:mm:ss plus the offset.
func (d ParsedDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d%s",
		d.Year, d.Month, d.Day, d.Hour, d.Minute, d.Second, d.Offset)
}

// An OffsetSource reports the UTC offset in effect at a given point in time.
// Implementations read the calendar fields of t as a wall clock reading in
// their own timezone and ignore the Location t carries. The returned Offset
// is always a signed one, never the UTC sentinel.
type OffsetSource interface {
	OffsetAt(t time.Time) Offset
}

// SystemOffsets resolves offsets against the process's local timezone,
// including daylight saving shifts at the given date.
type SystemOffsets struct{}

func (SystemOffsets) OffsetAt(t time.Time) Offset {
	local := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.Local)
	_, secs := local.Zone()
	return offsetFromSeconds(secs)
}

// FixedOffset is an OffsetSource pinned to a constant offset, given in
// seconds east of UTC. Mainly useful in tests.
type FixedOffset int

func (f FixedOffset) OffsetAt(time.Time) Offset {
	return offsetFromSeconds(int(f))
}

func offsetFromSeconds(secs int) Offset {
	neg := secs < 0
	if neg {
		secs = -secs
	}
	return Offset{Negative: neg, Hours: secs / 3600, Minutes: secs / 60 % 60}
}

// Parser normalizes date strings, completing inputs without an explicit
// timezone from an OffsetSource. Parsers are stateless and safe for
// concurrent use.
type Parser struct {
	offsets OffsetSource
}

// New returns a Parser resolving missing timezones via offsets.
// Passing nil selects the system timezone.
func New(offsets OffsetSource) *Parser {
	if offsets == nil {
		offsets = SystemOffsets{}
	}
	return &Parser{offsets: offsets}
}

var std = New(nil)

// NormalizeFreeformDate normalizes s with the system timezone standing in
// for inputs that do not carry one. See Parser.NormalizeFreeformDate.
func NormalizeFreeformDate(s string) string {
	return std.NormalizeFreeformDate(s)
}

// NormalizePackedDate normalizes s with the system timezone standing in
// for inputs that do not carry one. See Parser.NormalizePackedDate.
func NormalizePackedDate(s string) string {
	return std.NormalizePackedDate(s)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// numeric reports whether s is non-empty and consists solely of ASCII digits.
func numeric(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return len(s) > 0
}
