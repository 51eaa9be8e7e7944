// Package filenames splices output and temp file names from document names.
// It performs plain string surgery; names are never checked for validity.
package filenames

import "path/filepath"

// WithSuffix inserts suffix between name's base and its extension:
// WithSuffix("report.pdf", "-normalized") yields "report-normalized.pdf".
// A name without an extension gets the suffix appended.
func WithSuffix(name, suffix string) string {
	ext := filepath.Ext(name)
	return name[:len(name)-len(ext)] + suffix + ext
}

// ReplaceExt swaps name's extension for ext, which is given with its dot.
// A name without an extension gets ext appended.
func ReplaceExt(name, ext string) string {
	old := filepath.Ext(name)
	return name[:len(name)-len(old)] + ext
}

// Sidecar names the metadata file written beside a document:
// Sidecar("report.pdf") yields "report.metadata.json".
func Sidecar(name string) string {
	return ReplaceExt(name, ".metadata.json")
}
