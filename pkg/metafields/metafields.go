// Package metafields names the keys under which document metadata travels
// through the service. Every container reader fills its map with these keys,
// so downstream consumers can rely on one vocabulary regardless of the
// source format.
package metafields

const (
	// DocType carries the short container type, like "pdf" or "odt".
	DocType = "x-doctype"
	// ParsedBy names the package that read the container.
	ParsedBy = "x-parsed-by"
	// Ingested is the instant a cache entry was written, stamped on reads.
	Ingested = "x-ingested"

	Created     = "x-document-created"
	Modified    = "x-document-modified"
	Title       = "x-document-title"
	Author      = "x-document-author"
	Subject     = "x-document-subject"
	Keywords    = "x-document-keywords"
	Description = "x-document-description"
	Creator     = "x-document-creator"
	Producer    = "x-document-producer"
	Version     = "x-document-version"
	Pages       = "x-document-pages"
	Words       = "x-document-words"
	Paragraphs  = "x-document-paragraphs"
	Chars       = "x-document-chars"
	Category    = "x-document-category"
	Company     = "x-document-company"
	Comment     = "x-document-comment"
	Manager     = "x-document-manager"
	Operator    = "x-document-operator"
)

// DateKeys lists the keys whose values are timestamps in the canonical
// normalized form.
var DateKeys = []string{Created, Modified, Ingested}
