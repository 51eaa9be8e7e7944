package normalizer

import (
	"os"
	"strings"

	"github.com/goccy/go-json"

	"github.com/johbar/metadata-normalization-service/internal/cache"
	"github.com/johbar/metadata-normalization-service/pkg/filenames"
)

// PrintMetadata prints a file's normalized metadata as JSON on stdout.
// The file can be local or remote (http/https). When url is "-", the file
// will be read from Stdin. With the sidecar option enabled the metadata of
// a local file is written to a sidecar file next to it instead.
func (n *Normalizer) PrintMetadata(url string) {
	var doc cache.Document
	var size int64 = -1
	var err error

	isHttp := strings.HasPrefix(url, "http")
	isStdIn := url == "-"
	if isHttp {
		resp, httpErr := n.httpClient.Get(url)
		if httpErr != nil {
			n.log.Error("HTTP error", "url", url, "err", httpErr)
			os.Exit(1)
		}
		if resp.StatusCode >= 400 {
			n.log.Error("HTTP error", "url", url, "status", resp.Status)
			os.Exit(1)
		}
		doc, err = n.df.NewDocFromStream(resp.Body, resp.ContentLength, url)
		resp.Body.Close()
	} else if isStdIn {
		doc, err = n.df.NewDocFromStream(os.Stdin, size, url)
	} else {
		doc, err = n.df.NewFromPath(url, url)
	}
	if err != nil {
		n.log.Error("Could not process document", "url", url, "err", err)
		os.Exit(2)
	}

	metadata := doc.MetadataMap()
	if n.mnsConfig.Sidecar && !isHttp && !isStdIn {
		sidecarPath := filenames.Sidecar(url)
		data, err := json.MarshalIndent(metadata, "", "  ")
		if err == nil {
			err = os.WriteFile(sidecarPath, data, 0o644)
		}
		if err != nil {
			n.log.Error("Could not write sidecar file", "path", sidecarPath, "err", err)
			os.Exit(1)
		}
		n.log.Info("Metadata written", "path", sidecarPath)
	} else if err := json.NewEncoder(os.Stdout).Encode(metadata); err != nil {
		n.log.Error("Could not print metadata", "err", err)
		os.Exit(1)
	}

	doc.Close()
	if len(doc.Path()) > 1 && doc.Path() != url {
		if err := os.Remove(doc.Path()); err != nil {
			os.Exit(1)
		}
	}
}
