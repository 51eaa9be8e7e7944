// Package pdfmeta reads the document information dictionary of PDFs
// using pdfcpu.
package pdfmeta

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	pdfcpuapi "github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/johbar/metadata-normalization-service/pkg/datenorm"
	"github.com/johbar/metadata-normalization-service/pkg/metafields"
)

// DocMetadata holds the info dictionary entries of interest.
// Created and Modified are normalized timestamps; PDFs store them in the
// packed D: notation.
type DocMetadata struct {
	Title    string
	Author   string
	Subject  string
	Creator  string
	Producer string
	Keywords string
	Version  string

	Created   string
	Modified  string
	PageCount int
}

// PdfDoc is a PDF reduced to its document information.
type PdfDoc struct {
	metadata DocMetadata
	path     string
}

// NewFromBytes parses the info dictionary of the PDF in data.
func NewFromBytes(data []byte) (*PdfDoc, error) {
	metadata, err := readInfo(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &PdfDoc{metadata: metadata}, nil
}

// Open reads the file at path and parses its info dictionary. The file is
// closed before Open returns.
func Open(path string) (*PdfDoc, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	metadata, err := readInfo(f)
	if err != nil {
		return nil, err
	}
	return &PdfDoc{path: path, metadata: metadata}, nil
}

func readInfo(rs io.ReadSeeker) (m DocMetadata, err error) {
	info, err := pdfcpuapi.PDFInfo(rs, "", nil, nil)
	if err != nil {
		return m, fmt.Errorf("pdfmeta: reading PDF info: %w", err)
	}
	m = DocMetadata{
		Title:     info.Title,
		Author:    info.Author,
		Subject:   info.Subject,
		Creator:   info.Creator,
		Producer:  info.Producer,
		Keywords:  strings.Join(info.Keywords, ", "),
		Created:   normDate(info.CreationDate),
		Modified:  normDate(info.ModificationDate),
		PageCount: info.PageCount,
	}
	if len(info.Version) > 0 {
		m.Version = "PDF-" + info.Version
	}
	return m, nil
}

// normDate routes a raw info dictionary date through the normalizer.
// The raw value is kept when it does not normalize, so nothing is lost.
func normDate(raw string) string {
	if raw == "" {
		return ""
	}
	if iso := datenorm.NormalizePackedDate(raw); iso != "" {
		return iso
	}
	return raw
}

// Metadata returns the parsed document information.
func (d *PdfDoc) Metadata() DocMetadata {
	return d.metadata
}

func (d *PdfDoc) MetadataMap() map[string]string {
	m := map[string]string{
		metafields.DocType:  "pdf",
		metafields.ParsedBy: "pdfcpu",
		metafields.Title:    d.metadata.Title,
		metafields.Author:   d.metadata.Author,
		metafields.Subject:  d.metadata.Subject,
		metafields.Creator:  d.metadata.Creator,
		metafields.Producer: d.metadata.Producer,
		metafields.Keywords: d.metadata.Keywords,
		metafields.Version:  d.metadata.Version,
		metafields.Created:  d.metadata.Created,
		metafields.Modified: d.metadata.Modified,
	}
	if d.metadata.PageCount > 0 {
		m[metafields.Pages] = strconv.Itoa(d.metadata.PageCount)
	}
	for k, v := range m {
		if v == "" {
			delete(m, k)
		}
	}
	return m
}

func (d *PdfDoc) Path() string {
	return d.path
}

// Close is a no-op.
func (d *PdfDoc) Close() {
}
