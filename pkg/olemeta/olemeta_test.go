package olemeta

import (
	"testing"
	"time"

	"github.com/johbar/metadata-normalization-service/pkg/metafields"
)

func TestMetadataMap(t *testing.T) {
	d := &WordDoc{metadata: DocMetadata{
		Author:    "Jane Doe",
		Title:     "Annual Report",
		Company:   "ACME Corp",
		Created:   "2023-06-15T12:00:00Z",
		Modified:  "2023-06-16T08:30:00Z",
		PageCount: 12,
		WordCount: 3500,
	}}
	m := d.MetadataMap()
	tests := []struct {
		name string
		key  string
		want string
	}{
		{name: "doctype", key: metafields.DocType, want: "msword"},
		{name: "parsed_by", key: metafields.ParsedBy, want: "olemeta"},
		{name: "author", key: metafields.Author, want: "Jane Doe"},
		{name: "title", key: metafields.Title, want: "Annual Report"},
		{name: "company", key: metafields.Company, want: "ACME Corp"},
		{name: "created", key: metafields.Created, want: "2023-06-15T12:00:00Z"},
		{name: "modified", key: metafields.Modified, want: "2023-06-16T08:30:00Z"},
		{name: "pages", key: metafields.Pages, want: "12"},
		{name: "words", key: metafields.Words, want: "3500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m[tt.key]; got != tt.want {
				t.Errorf("%s = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
	if _, ok := m[metafields.Subject]; ok {
		t.Error("empty fields must be omitted from the map")
	}
	if _, ok := m[metafields.Chars]; ok {
		t.Error("zero counters must be omitted from the map")
	}
}

func TestNormDatePassthrough(t *testing.T) {
	// file times are UTC; the RFC3339 rendition already carries the marker
	at := time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC)
	if got := normDate(at); got != "2023-06-15T12:00:00Z" {
		t.Errorf("normDate() = %q, want %q", got, "2023-06-15T12:00:00Z")
	}
}

func TestNotACompoundFile(t *testing.T) {
	if _, err := NewFromBytes([]byte("not an ole container")); err == nil {
		t.Error("NewFromBytes() expected an error for a non OLE input")
	}
}
