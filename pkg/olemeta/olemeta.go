// Package olemeta reads document metadata from legacy MS Word documents.
// Those are OLE2 compound files carrying their properties in MSOLEPS
// property sets.
//
// The property walk is mainly taken from https://github.com/sajari/docconv/blob/master/doc.go
package olemeta

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/richardlehane/mscfb"
	"github.com/richardlehane/msoleps"
	"github.com/richardlehane/msoleps/types"

	"github.com/johbar/metadata-normalization-service/pkg/datenorm"
	"github.com/johbar/metadata-normalization-service/pkg/metafields"
)

// DocMetadata holds the properties read from the summary information
// streams. Created and Modified are normalized timestamps; OLE stores them
// as UTC file times.
type DocMetadata struct {
	Author   string
	Category string
	Comment  string
	Company  string
	Keywords string
	Manager  string
	Subject  string
	Title    string

	Created   string
	Modified  string
	PageCount int32
	CharCount int32
	WordCount int32
}

// WordDoc is a legacy Word document reduced to its metadata.
type WordDoc struct {
	metadata DocMetadata
	path     string
}

// NewFromBytes parses the metadata of the compound file in data.
func NewFromBytes(data []byte) (*WordDoc, error) {
	metadata, err := readMetadata(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &WordDoc{metadata: metadata}, nil
}

// Open reads the file at path and parses its metadata. The file is closed
// before Open returns.
func Open(path string) (*WordDoc, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	metadata, err := readMetadata(f)
	if err != nil {
		return nil, err
	}
	return &WordDoc{path: path, metadata: metadata}, nil
}

// readMetadata walks the compound file's directory entries and collects the
// properties of every MSOLEPS stream. Corrupt files make the mscfb reader
// panic at times, hence the recover.
func readMetadata(r io.ReaderAt) (m DocMetadata, err error) {
	defer func() {
		if e := recover(); e != nil {
			err = fmt.Errorf("olemeta: panic reading compound file: %v", e)
		}
	}()
	doc, err := mscfb.New(r)
	if err != nil {
		return m, err
	}
	props := msoleps.New()
	for entry, err2 := doc.Next(); err2 == nil; entry, err2 = doc.Next() {
		if !msoleps.IsMSOLEPS(entry.Initial) {
			continue
		}
		if oerr := props.Reset(doc); oerr != nil {
			err = oerr
			break
		}
		for _, prop := range props.Property {
			switch prop.Name {
			case "Author":
				m.Author = prop.String()
			case "Category":
				m.Category = prop.String()
			case "Comments":
				m.Comment = prop.String()
			case "Company":
				m.Company = prop.String()
			case "Keywords":
				m.Keywords = prop.String()
			case "Manager":
				m.Manager = prop.String()
			case "Subject":
				m.Subject = prop.String()
			case "Title":
				m.Title = prop.String()
			}
			if d, ok := prop.T.(types.FileTime); ok {
				switch prop.Name {
				case "CreateTime":
					m.Created = normDate(d.Time())
				case "LastSaveTime":
					m.Modified = normDate(d.Time())
				}
			} else if i, ok := prop.T.(types.I4); ok {
				switch prop.Name {
				case "PageCount":
					m.PageCount = int32(i)
				case "Character count":
					m.CharCount = int32(i)
				case "WordCount":
					m.WordCount = int32(i)
				}
			}
		}
	}
	return m, err
}

// normDate renders a file time as RFC3339 and routes it through the
// normalizer. File times are UTC, so this is a passthrough; it keeps the
// rule that every date leaves a reader in canonical form.
func normDate(t time.Time) string {
	if iso := datenorm.NormalizeFreeformDate(t.Format(time.RFC3339)); iso != "" {
		return iso
	}
	return t.Format(time.RFC3339)
}

// Metadata returns the parsed properties.
func (d *WordDoc) Metadata() DocMetadata {
	return d.metadata
}

func (d *WordDoc) MetadataMap() map[string]string {
	m := map[string]string{
		metafields.DocType:  "msword",
		metafields.ParsedBy: "olemeta",
		metafields.Author:   d.metadata.Author,
		metafields.Category: d.metadata.Category,
		metafields.Comment:  d.metadata.Comment,
		metafields.Company:  d.metadata.Company,
		metafields.Keywords: d.metadata.Keywords,
		metafields.Manager:  d.metadata.Manager,
		metafields.Subject:  d.metadata.Subject,
		metafields.Title:    d.metadata.Title,
		metafields.Created:  d.metadata.Created,
		metafields.Modified: d.metadata.Modified,
	}
	if d.metadata.PageCount != 0 {
		m[metafields.Pages] = strconv.Itoa(int(d.metadata.PageCount))
	}
	if d.metadata.CharCount != 0 {
		m[metafields.Chars] = strconv.Itoa(int(d.metadata.CharCount))
	}
	if d.metadata.WordCount != 0 {
		m[metafields.Words] = strconv.Itoa(int(d.metadata.WordCount))
	}
	for k, v := range m {
		if v == "" {
			delete(m, k)
		}
	}
	return m
}

func (d *WordDoc) Path() string {
	return d.path
}

// Close is a no-op.
func (d *WordDoc) Close() {
}
