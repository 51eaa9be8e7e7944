// Package docmeta constructs the matching metadata reader for any
// document handed to the service, based on mimetype detection.
package docmeta

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"github.com/johbar/metadata-normalization-service/internal/cache"
	"github.com/johbar/metadata-normalization-service/internal/config"
	"github.com/johbar/metadata-normalization-service/internal/pdfmeta"
	"github.com/johbar/metadata-normalization-service/pkg/officemeta"
	"github.com/johbar/metadata-normalization-service/pkg/olemeta"
	"github.com/johbar/metadata-normalization-service/pkg/rtfmeta"
)

var (
	xmlBasedFormats = []string{".odt", ".odp", ".ods", ".docx", ".pptx", ".xlsx"}
	errZeroSize     = errors.New("zero-length data can not be parsed")
	errTooLarge     = errors.New("file too large")
)

type DocFactory struct {
	MaxInMemoryBytes uint64
	MaxFileSizeBytes uint64
	log              *slog.Logger
}

func New(conf *config.MnsConfig, logger *slog.Logger) *DocFactory {
	df := &DocFactory{
		MaxInMemoryBytes: conf.MaxInMemoryBytes,
		MaxFileSizeBytes: conf.MaxFileSizeBytes,
		log:              logger,
	}
	if logger == nil {
		df.log = slog.New(slog.DiscardHandler)
	}
	return df
}

func newTempFile(origin string) (*os.File, error) {
	dir := os.TempDir()
	var fileName string
	u, err := url.Parse(origin)
	if err != nil {
		fileName = "*-unknown"
	} else {
		fileName = "*-" + filepath.Base(u.Path)
	}
	f, err := os.CreateTemp(dir, fileName)
	return f, err
}

func (df *DocFactory) saveToFs(r io.Reader, origin string) (string, error) {
	f, err := newTempFile(origin)
	if err != nil {
		return "", fmt.Errorf("creating temp file for origin %s: %w", origin, err)
	}
	defer f.Close()
	df.log.Debug("Saving file", "origin", origin, "path", f.Name())
	_, err = io.Copy(f, r)
	return f.Name(), err
}

func (df *DocFactory) handleUnknownSize(r io.Reader, origin string) (cache.Document, error) {
	// HTTP chunked encoding or reading from stdin
	buf := make([]byte, df.MaxInMemoryBytes)

	df.log.Debug("Reading stream of unknown size", "origin", origin, "buf", len(buf))
	bytesRead := 0
	n, err := io.ReadFull(r, buf)
	bytesRead += n
	isAll := err == io.EOF || err == io.ErrUnexpectedEOF
	isNotEvenAll := err == nil
	df.log.Debug("Finished reading first chunk from stream of unknown size", "bytes", n, "err", err)
	if bytesRead >= int(df.MaxInMemoryBytes) && (isNotEvenAll) {
		// file is too large for holding it in memory
		f, err := newTempFile(origin)
		if err != nil {
			return nil, fmt.Errorf("creating tempfile for origin %s: %w", origin, err)
		}
		df.log.Info("Saving temporary file", "origin", origin, "path", f.Name())

		defer f.Close()
		if _, err := f.Write(buf); err != nil {
			return nil, err
		}
		if n, err := io.Copy(f, r); err != nil {
			return nil, err
		} else {
			df.log.Debug("Finished reading remaining chunks from stream of unknown size", "bytes", n, "path", f.Name())
		}
		return df.NewFromPath(f.Name(), origin)
	} else if isAll {
		// no error, file read was smaller than buf
		return df.NewFromBytes(buf[:bytesRead], origin)
	}
	return nil, err
}

func (df *DocFactory) handleMediumSize(r io.Reader, size int64, origin string) (cache.Document, error) {
	// file is too large to handle it in-memory
	path, err := df.saveToFs(r, origin)
	if err != nil {
		return nil, err
	}
	df.log.Info("File saved", "path", path, "origin", origin, "size", humanize.Bytes(uint64(size)))
	return df.NewFromPath(path, origin)
}

func (df *DocFactory) handleSmallSize(r io.Reader, size int64, origin string) (cache.Document, error) {
	data := make([]byte, size)
	_, err := io.ReadFull(r, data)
	if err != nil {
		return nil, err
	}
	return df.NewFromBytes(data, origin)
}

func (df *DocFactory) NewDocFromStream(r io.Reader, size int64, origin string) (cache.Document, error) {
	if size > int64(df.MaxFileSizeBytes) {
		// file is too large for downloading
		return nil, errTooLarge
	}
	if size < 0 {
		return df.handleUnknownSize(r, origin)
	}
	if size == 0 {
		return nil, errZeroSize
	}
	if size > int64(df.MaxInMemoryBytes) {
		return df.handleMediumSize(r, size, origin)
	}
	// file is small enough to handle it in-memory
	return df.handleSmallSize(r, size, origin)
}

func (df *DocFactory) NewFromBytes(data []byte, origin string) (cache.Document, error) {
	mtype := mimetype.Detect(data)
	df.log.Debug("Detected", "mimetype", mtype.String(), "ext", mtype.Extension(), "origin", origin)
	if ext := mtype.Extension(); slices.Contains(xmlBasedFormats, ext) {
		return officemeta.NewFromBytes(data, strings.TrimPrefix(ext, "."))
	}

	switch mtype.Extension() {
	case ".pdf":
		return pdfmeta.NewFromBytes(data)
	case ".rtf":
		return rtfmeta.NewFromBytes(data)
	}

	// there is no extension (like .doc) associated with these types
	switch mtype.String() {
	case "application/msword":
		fallthrough
	case "application/x-ole-storage":
		return olemeta.NewFromBytes(data)
	}
	// returning a part of the content in case of errors helps with debugging webservers that return 2xx with an error message in the body
	return nil, fmt.Errorf("no suitable reader available for mimetype %s. content started with: %s", mtype.String(), string(data[:min(70, len(data))]))
}

func (df *DocFactory) NewFromPath(path, origin string) (cache.Document, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, err
	}
	df.log.Debug("Detected", "mimetype", mtype.String(), "ext", mtype.Extension(), "origin", origin)
	if ext := mtype.Extension(); slices.Contains(xmlBasedFormats, ext) {
		return officemeta.Open(path, strings.TrimPrefix(ext, "."))
	}

	switch mtype.Extension() {
	case ".pdf":
		return pdfmeta.Open(path)
	case ".rtf":
		return rtfmeta.Open(path)
	}

	// there is no extension (like .doc) associated with these types
	switch mtype.String() {
	case "application/msword":
		fallthrough
	case "application/x-ole-storage":
		return olemeta.Open(path)
	}
	return nil, fmt.Errorf("no suitable reader available for mimetype %s, detected in %s from %s", mtype.String(), path, origin)
}
