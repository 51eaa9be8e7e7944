// Package officemeta reads document metadata from the XML based office
// formats: MS Office (docx, pptx, xlsx) and OpenDocument (odt, odp, ods).
// Both are ZIP containers carrying their properties in well known XML
// members, so no content parsing is needed.
package officemeta

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/johbar/metadata-normalization-service/pkg/datenorm"
	"github.com/johbar/metadata-normalization-service/pkg/metafields"
)

// DublinCoreMetadata represents metadata that is identical in
// Open Document and MS Office files.
type DublinCoreMetadata struct {
	Creator     string `xml:"creator"`
	Date        string `xml:"date"`
	Description string `xml:"description"`
	Language    string `xml:"language"`
	Publisher   string `xml:"publisher"`
	Rights      string `xml:"rights"`
	Subject     string `xml:"subject"`
	Title       string `xml:"title"`
}

// MsOfficeCoreMetadata represents the docProps/core.xml properties of
// MS Office files.
type MsOfficeCoreMetadata struct {
	DublinCoreMetadata
	Keywords string `xml:"keywords"`
	Category string `xml:"category"`
	Version  string `xml:"version"`
	Created  string `xml:"created"`
	Modified string `xml:"modified"`
}

// MsOfficeAppProperties represents the docProps/app.xml properties of
// MS Office files.
type MsOfficeAppProperties struct {
	Generator      string `xml:"Application"`
	Company        string `xml:"Company"`
	Manager        string `xml:"Manager"`
	PageCount      string `xml:"Pages"`
	WordCount      string `xml:"Words"`
	ParagraphCount string `xml:"Paragraphs"`
	CharCount      string `xml:"CharactersWithSpaces"`
}

// OpenDocumentMetadata represents the meta.xml properties of
// Open Document files.
type OpenDocumentMetadata struct {
	Meta struct {
		DublinCoreMetadata
		CreationDate string            `xml:"creation-date"`
		Generator    string            `xml:"generator"`
		Keywords     []string          `xml:"keyword"`
		Stats        OpenDocumentStats `xml:"document-statistic"`
	} `xml:"meta"`
}

// OpenDocumentStats represents statistical metadata stored in an
// Open Document file.
type OpenDocumentStats struct {
	CharCount      string `xml:"character-count,attr"`
	PageCount      string `xml:"page-count,attr"`
	ParagraphCount string `xml:"paragraph-count,attr"`
	WordCount      string `xml:"word-count,attr"`
}

// XmlBasedDocument is an office container reduced to its metadata.
type XmlBasedDocument struct {
	ext      string
	path     string
	metadata map[string]string
}

// Open reads the container at path and parses its metadata. The file is
// closed before Open returns.
func Open(path string, ext string) (*XmlBasedDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	d, err := New(f, info.Size(), ext)
	if err != nil {
		return nil, err
	}
	d.path = path
	return d, nil
}

// NewFromBytes parses the metadata of the office container in data.
func NewFromBytes(data []byte, ext string) (*XmlBasedDocument, error) {
	return New(bytes.NewReader(data), int64(len(data)), ext)
}

// New walks the ZIP directory and parses the metadata members it knows:
// meta.xml for Open Document, docProps/core.xml and docProps/app.xml for
// MS Office. A container without any of them just yields the base keys.
func New(r io.ReaderAt, size int64, ext string) (*XmlBasedDocument, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("officemeta: could not read ZIP structure: %w", err)
	}
	md := map[string]string{
		metafields.ParsedBy: "officemeta",
		metafields.DocType:  ext,
	}
	for _, f := range zr.File {
		switch f.Name {
		case "meta.xml":
			if data, err := readFileFromZip(f); err == nil {
				mapOpenDocumentMetadata(md, data)
			}
		case "docProps/core.xml":
			if data, err := readFileFromZip(f); err == nil {
				mapMsOfficeCoreMetadata(md, data)
			}
		case "docProps/app.xml":
			if data, err := readFileFromZip(f); err == nil {
				mapMsOfficeAppProperties(md, data)
			}
		}
	}
	return &XmlBasedDocument{ext: ext, metadata: md}, nil
}

func readFileFromZip(f *zip.File) ([]byte, error) {
	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func mapMsOfficeCoreMetadata(metadata map[string]string, data []byte) {
	var msMeta MsOfficeCoreMetadata
	if err := xml.Unmarshal(data, &msMeta); err != nil {
		return
	}
	if len(msMeta.Creator) > 0 {
		metadata[metafields.Creator] = msMeta.Creator
	}
	if len(msMeta.Publisher) > 0 {
		metadata[metafields.Author] = msMeta.Publisher
	}
	if len(msMeta.Title) > 0 {
		metadata[metafields.Title] = msMeta.Title
	}
	if len(msMeta.Subject) > 0 {
		metadata[metafields.Subject] = msMeta.Subject
	}
	if len(msMeta.Keywords) > 0 {
		metadata[metafields.Keywords] = msMeta.Keywords
	}
	if len(msMeta.Description) > 0 {
		metadata[metafields.Description] = msMeta.Description
	}
	if len(msMeta.Category) > 0 {
		metadata[metafields.Category] = msMeta.Category
	}
	if len(msMeta.Version) > 0 {
		metadata[metafields.Version] = msMeta.Version
	}
	if len(msMeta.Created) > 0 {
		metadata[metafields.Created] = normDate(msMeta.Created)
	}
	if len(msMeta.Modified) > 0 {
		metadata[metafields.Modified] = normDate(msMeta.Modified)
	}
}

func mapMsOfficeAppProperties(metadata map[string]string, data []byte) {
	var props MsOfficeAppProperties
	if err := xml.Unmarshal(data, &props); err != nil {
		return
	}
	if len(props.Generator) > 0 {
		metadata[metafields.Producer] = props.Generator
	}
	if len(props.Company) > 0 {
		metadata[metafields.Company] = props.Company
	}
	if len(props.Manager) > 0 {
		metadata[metafields.Manager] = props.Manager
	}
	if len(props.PageCount) > 0 {
		metadata[metafields.Pages] = props.PageCount
	}
	if len(props.WordCount) > 0 {
		metadata[metafields.Words] = props.WordCount
	}
	if len(props.CharCount) > 0 {
		metadata[metafields.Chars] = props.CharCount
	}
	if len(props.ParagraphCount) > 0 {
		metadata[metafields.Paragraphs] = props.ParagraphCount
	}
}

func mapOpenDocumentMetadata(metadata map[string]string, data []byte) {
	var odMetaContainer OpenDocumentMetadata
	if err := xml.Unmarshal(data, &odMetaContainer); err != nil {
		return
	}
	odMeta := odMetaContainer.Meta
	if len(odMeta.CreationDate) > 0 {
		metadata[metafields.Created] = normDate(odMeta.CreationDate)
	}
	if len(odMeta.Date) > 0 {
		metadata[metafields.Modified] = normDate(odMeta.Date)
	}
	if len(odMeta.Generator) > 0 {
		metadata[metafields.Producer] = odMeta.Generator
	}
	if len(odMeta.Creator) > 0 {
		metadata[metafields.Creator] = odMeta.Creator
	}
	if len(odMeta.Publisher) > 0 {
		metadata[metafields.Author] = odMeta.Publisher
	}
	if len(odMeta.Title) > 0 {
		metadata[metafields.Title] = odMeta.Title
	}
	if len(odMeta.Subject) > 0 {
		metadata[metafields.Subject] = odMeta.Subject
	}
	if len(odMeta.Description) > 0 {
		metadata[metafields.Description] = odMeta.Description
	}
	if len(odMeta.Keywords) > 0 {
		metadata[metafields.Keywords] = strings.Join(odMeta.Keywords, " ")
	}
	if len(odMeta.Stats.PageCount) > 0 {
		metadata[metafields.Pages] = odMeta.Stats.PageCount
	}
	if len(odMeta.Stats.WordCount) > 0 {
		metadata[metafields.Words] = odMeta.Stats.WordCount
	}
	if len(odMeta.Stats.CharCount) > 0 {
		metadata[metafields.Chars] = odMeta.Stats.CharCount
	}
	if len(odMeta.Stats.ParagraphCount) > 0 {
		metadata[metafields.Paragraphs] = odMeta.Stats.ParagraphCount
	}
}

// normDate routes a date value through the normalizer, keeping the raw
// value when it cannot be read as a date.
func normDate(raw string) string {
	if iso := datenorm.NormalizeFreeformDate(raw); iso != "" {
		return iso
	}
	return raw
}

func (d *XmlBasedDocument) MetadataMap() map[string]string {
	return d.metadata
}

func (d *XmlBasedDocument) Path() string {
	return d.path
}

// Close is a no-op; the container is fully parsed on construction.
func (d *XmlBasedDocument) Close() {
}
