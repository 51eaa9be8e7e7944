// Package rtfmeta reads document metadata from the \info group of Rich Text
// Format files.
//
// The field patterns are built on github.com/dlclark/regexp2: they rely on
// lookbehind to stop at the first unescaped closing brace of a group, which
// the standard library engine cannot express.
package rtfmeta

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/dlclark/regexp2"

	"github.com/johbar/metadata-normalization-service/pkg/datenorm"
	"github.com/johbar/metadata-normalization-service/pkg/metafields"
)

// Metadata holds the fields of an RTF \info group. Created and Modified are
// normalized timestamps; RTF stores no timezone, so the local offset at the
// stored instant is attached.
type Metadata struct {
	Title, Subject, Author, Keywords, Comment string
	Company, Manager, Operator, Category      string
	Created, Modified                         string
}

// RichTextDoc is an RTF document reduced to its metadata.
type RichTextDoc struct {
	path     string
	metadata Metadata
}

var ErrNoRtf = errors.New("rtfmeta: document is not an RTF")

var none = regexp2.None

var (
	infoGroup    = regexp2.MustCompile(`(?s)\{\\info.+?\{.+?(?<!\\)\}{2}`, none)
	ansiCodePage = regexp2.MustCompile(`\\ansicpg(\d{1,10})`, none)

	title    = regexp2.MustCompile(`\{\\title (.*?)(?<!\\)\}`, none)
	subject  = regexp2.MustCompile(`\{\\subject (.*?)(?<!\\)\}`, none)
	author   = regexp2.MustCompile(`\{\\author (.*?)(?<!\\)\}`, none)
	keywords = regexp2.MustCompile(`\{\\keywords (.*?)(?<!\\)\}`, none)
	comment  = regexp2.MustCompile(`\{\\doccomm (.*?)(?<!\\)\}`, none)
	company  = regexp2.MustCompile(`\{\\company (.*?)(?<!\\)\}`, none)
	manager  = regexp2.MustCompile(`\{\\manager (.*?)(?<!\\)\}`, none)
	operator = regexp2.MustCompile(`\{\\operator (.*?)(?<!\\)\}`, none)
	category = regexp2.MustCompile(`\{\\category (.*?)(?<!\\)\}`, none)

	created  = regexp2.MustCompile(timeGroup("creatim"), none)
	modified = regexp2.MustCompile(timeGroup("revtim"), none)
)

// timeGroup builds the pattern for a \creatim style group. Year, month and
// day are mandatory, the clock controls may be absent.
func timeGroup(word string) string {
	return `\{\\` + word +
		`\\yr(?<year>\d{4})\\mo(?<month>\d{1,2})\\dy(?<day>\d{1,2})` +
		`(?:\\hr(?<hour>\d{1,2}))?(?:\\min(?<minute>\d{1,2}))?(?:\\sec(?<second>\d{1,2}))?` +
		`(?<!\\)\}`
}

// Open reads the file at path and parses its metadata.
func Open(path string) (*RichTextDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := NewFromBytes(data)
	if err != nil {
		return nil, err
	}
	d.path = path
	return d, nil
}

// NewFromBytes parses the metadata of the RTF document in data.
// A document without an \info group is not an error; it merely has no
// metadata to offer.
func NewFromBytes(data []byte) (*RichTextDoc, error) {
	if !IsFileRTF(data) {
		return nil, ErrNoRtf
	}
	return &RichTextDoc{metadata: parseInfo(string(data))}, nil
}

// IsFileRTF checks if the data indicates an RTF file.
// RTF has a signature of 7B 5C 72 74 66 31, or as string "{\rtf1".
func IsFileRTF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("{\\rtf1"))
}

// Metadata returns the parsed \info fields.
func (d *RichTextDoc) Metadata() Metadata {
	return d.metadata
}

func (d *RichTextDoc) MetadataMap() map[string]string {
	m := map[string]string{
		metafields.DocType:  "rtf",
		metafields.ParsedBy: "rtfmeta",
		metafields.Title:    d.metadata.Title,
		metafields.Subject:  d.metadata.Subject,
		metafields.Author:   d.metadata.Author,
		metafields.Keywords: d.metadata.Keywords,
		metafields.Comment:  d.metadata.Comment,
		metafields.Company:  d.metadata.Company,
		metafields.Manager:  d.metadata.Manager,
		metafields.Operator: d.metadata.Operator,
		metafields.Category: d.metadata.Category,
		metafields.Created:  d.metadata.Created,
		metafields.Modified: d.metadata.Modified,
	}
	for k, v := range m {
		if v == "" {
			delete(m, k)
		}
	}
	return m
}

func (d *RichTextDoc) Path() string {
	return d.path
}

// Close is a no-op for RTFs.
func (d *RichTextDoc) Close() {
}

// parseInfo extracts the metadata fields of the document. The \info group
// match is only the gate; the field patterns run over the whole input because
// nested groups ending in a double brace can cut the group match short.
func parseInfo(input string) Metadata {
	var m Metadata
	if gate, err := infoGroup.FindStringMatch(input); err != nil || gate == nil {
		return m
	}
	cm := codePage(input)
	fields := []struct {
		re  *regexp2.Regexp
		dst *string
	}{
		{title, &m.Title},
		{subject, &m.Subject},
		{author, &m.Author},
		{keywords, &m.Keywords},
		{comment, &m.Comment},
		{company, &m.Company},
		{manager, &m.Manager},
		{operator, &m.Operator},
		{category, &m.Category},
	}
	for _, f := range fields {
		if match, _ := f.re.FindStringMatch(input); match != nil && match.GroupCount() > 0 {
			*f.dst = decodeValue(match.GroupByNumber(1).String(), cm)
		}
	}
	if match, _ := created.FindStringMatch(input); match != nil {
		m.Created = stampDate(match)
	}
	if match, _ := modified.FindStringMatch(input); match != nil {
		m.Modified = stampDate(match)
	}
	return m
}

// stampDate assembles the captured calendar fields into a plain timestamp
// and routes it through the normalizer, attaching the local offset.
// Missing clock fields count as zero.
func stampDate(match *regexp2.Match) string {
	fields := map[string]int{}
	for _, name := range []string{"year", "month", "day", "hour", "minute", "second"} {
		if v, err := strconv.Atoi(match.GroupByName(name).String()); err == nil {
			fields[name] = v
		}
	}
	stamp := fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d",
		fields["year"], fields["month"], fields["day"],
		fields["hour"], fields["minute"], fields["second"])
	return datenorm.NormalizeFreeformDate(stamp)
}
