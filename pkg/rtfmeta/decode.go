package rtfmeta

import (
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// charmaps maps the \ansicpg code pages we can decode. 8-bit escapes of an
// unlisted code page stay undecoded.
var charmaps = map[string]*charmap.Charmap{
	"437":  charmap.CodePage437,
	"850":  charmap.CodePage850,
	"852":  charmap.CodePage852,
	"860":  charmap.CodePage860,
	"862":  charmap.CodePage862,
	"863":  charmap.CodePage863,
	"865":  charmap.CodePage865,
	"866":  charmap.CodePage866,
	"1250": charmap.Windows1250,
	"1251": charmap.Windows1251,
	"1252": charmap.Windows1252,
	"1253": charmap.Windows1253,
	"1254": charmap.Windows1254,
	"1255": charmap.Windows1255,
	"1256": charmap.Windows1256,
	"1257": charmap.Windows1257,
	"1258": charmap.Windows1258,
}

// control words translated to plain characters inside metadata values
var valueChars = map[string]string{
	"tab":       "\t",
	"line":      "\n",
	"emdash":    "—",
	"endash":    "–",
	"emspace":   " ",
	"enspace":   " ",
	"qmspace":   " ",
	"bullet":    "•",
	"lquote":    "‘",
	"rquote":    "’",
	"ldblquote": "“",
	"rdblquote": "”",
}

var tokenRegex = regexp2.MustCompile(
	"(?i)"+
		`\\([a-z]{1,32})(-?\d{1,10})?[ ]?`+ // control word with optional argument
		`|\\'([0-9a-f]{2})`+ // 8-bit escape
		`|\\([^a-z])`+ // escaped character
		`|([{}])`+ // group brace
		`|[\r\n]+`+ // discarded line breaks
		`|(.)`, none) // plain character

// codePage looks up the document's \ansicpg declaration.
func codePage(input string) *charmap.Charmap {
	if m, _ := ansiCodePage.FindStringMatch(input); m != nil && m.GroupCount() > 1 {
		return charmaps[m.GroupByNumber(1).String()]
	}
	return nil
}

// decodeValue translates the RTF escapes of a metadata value into readable
// text: 8-bit escapes through the document's code page, \uN escapes with
// their \uc replacement skip, and ignorable {\*...} subgroups dropped. It is
// a trimmed rendition of a full RTF to text converter; metadata values carry
// no destinations worth keeping.
func decodeValue(input string, cm *charmap.Charmap) string {
	var out strings.Builder
	var decoder *encoding.Decoder
	if cm != nil {
		decoder = cm.NewDecoder()
	}
	type state struct {
		ucskip    int
		ignorable bool
	}
	var stack []state
	ucskip, curskip := 1, 0
	ignorable := false

	match, _ := tokenRegex.FindStringMatch(input)
	for match != nil {
		word := match.GroupByNumber(1).String()
		arg := match.GroupByNumber(2).String()
		hex := match.GroupByNumber(3).String()
		escaped := match.GroupByNumber(4).String()
		brace := match.GroupByNumber(5).String()
		tchar := match.GroupByNumber(6).String()

		switch {
		case tchar != "":
			if curskip > 0 {
				curskip--
			} else if !ignorable {
				if decoder == nil {
					out.WriteString(tchar)
				} else if dec, err := decoder.String(tchar); err == nil {
					out.WriteString(dec)
				}
			}
		case brace != "":
			curskip = 0
			if brace == "{" {
				stack = append(stack, state{ucskip, ignorable})
			} else if l := len(stack); l > 0 {
				ucskip, ignorable = stack[l-1].ucskip, stack[l-1].ignorable
				stack = stack[:l-1]
			}
		case escaped != "":
			curskip = 0
			switch {
			case escaped == "*":
				ignorable = true
			case escaped == "~":
				if !ignorable {
					out.WriteString(" ")
				}
			case strings.Contains(`{}\`, escaped):
				if !ignorable {
					out.WriteString(escaped)
				}
			}
		case word != "":
			curskip = 0
			switch {
			case ignorable:
			case valueChars[word] != "":
				out.WriteString(valueChars[word])
			case word == "uc":
				if i, err := strconv.Atoi(arg); err == nil {
					ucskip = i
				}
			case word == "u":
				c, _ := strconv.Atoi(arg)
				if c < 0 {
					c += 0x10000
				}
				out.WriteRune(rune(c))
				curskip = ucskip
			}
		case hex != "":
			if curskip > 0 {
				curskip--
			} else if !ignorable {
				c, _ := strconv.ParseInt(hex, 16, 0)
				if cm == nil {
					out.WriteRune(rune(c))
				} else {
					out.WriteRune(cm.DecodeByte(byte(c)))
				}
			}
		}
		match, _ = tokenRegex.FindNextMatch(match)
	}
	return out.String()
}
