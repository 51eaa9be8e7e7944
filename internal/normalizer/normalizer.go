// Package normalizer wires fetching, metadata reading and timestamp
// normalization into the service endpoints.
package normalizer

import (
	"expvar"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/johbar/metadata-normalization-service/internal/cache"
	"github.com/johbar/metadata-normalization-service/internal/config"
	"github.com/johbar/metadata-normalization-service/internal/docmeta"
)

type RequestParams struct {
	Url string `form:"url" binding:"required" json:"url" validate:"http_url"`
	//Ignore cached record
	NoCache bool `form:"noCache" json:"noCache"`
	//Send response headers only, no JSON body
	Silent bool `form:"silent" json:"silent"`
}

var (
	validate = validator.New()

	docsNormalized = expvar.NewInt("mns_docs_normalized")
	cacheHits      = expvar.NewInt("mns_cache_hits")
)

type Normalizer struct {
	mnsCache            cache.Cache
	df                  *docmeta.DocFactory
	log                 *slog.Logger
	httpClient          *http.Client
	cacheNop            bool
	postprocessDocsChan chan cache.NormalizedDocument
	mnsConfig           *config.MnsConfig
}

const lastModified string = "last-modified"

func New(conf *config.MnsConfig, df *docmeta.DocFactory, mnsCache cache.Cache, logger *slog.Logger, httpClient *http.Client) *Normalizer {
	postprocessDocsChan := make(chan cache.NormalizedDocument, 100)
	n := &Normalizer{
		mnsCache:            mnsCache,
		df:                  df,
		log:                 logger,
		postprocessDocsChan: postprocessDocsChan,
		mnsConfig:           conf,
		httpClient:          httpClient,
	}

	if httpClient == nil {
		n.httpClient = http.DefaultClient
	}
	if logger == nil {
		n.log = slog.New(slog.DiscardHandler)
	}
	_, n.cacheNop = mnsCache.(*cache.NopCache)
	go n.saveCloseAndDeleteNormalizedDocs()
	return n
}

func (n *Normalizer) saveCloseAndDeleteNormalizedDocs() {
	for doc := range n.postprocessDocsChan {
		doc.Doc.Close()
		n.log.Debug("Document closed.", "url", doc.Url)
		if len(doc.Doc.Path()) > 0 {
			// we can assume every file in this channel is a temporary file
			// created by ourself
			if err := os.Remove(doc.Doc.Path()); err != nil {
				n.log.Error("could not remove temporary file", "err", err)
			} else {
				n.log.Debug("temporary file removed", "path", doc.Doc.Path())
			}
		}
		if n.cacheNop {
			continue
		}
		for i := 0; i <= 5; i++ {
			err := n.mnsCache.Save(doc)
			if err == nil {
				n.log.Info("Saved metadata in NATS key-value bucket", "url", *doc.Url)
				break
			}
			n.log.Warn("Could not save metadata to cache", "retries", i, "url", doc.Url, "err", err)
		}
	}
}

// NormalizeBody replies with the request body's normalized metadata.
// Returns a JSON encoded error message if the body is not parsable.
func (n *Normalizer) NormalizeBody(c *gin.Context) {
	origin := "POST request"
	doc, err := n.df.NewDocFromStream(c.Request.Body, c.Request.ContentLength, origin)
	if err != nil {
		n.log.Error("Error parsing request body", "err", err)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"err": err.Error()})
		return
	}
	defer doc.Close()
	docsNormalized.Add(1)
	metadata := doc.MetadataMap()
	addMetadataAsHeaders(c.Writer.Header(), metadata)
	c.JSON(http.StatusOK, metadata)
}

// NormalizeRemote fetches the document a request points to and replies
// with its normalized metadata.
func (n *Normalizer) NormalizeRemote(c *gin.Context) {
	var params RequestParams
	if bindErr := c.BindQuery(&params); bindErr != nil {
		n.log.Warn("Invalid request", "err", bindErr)
		return
	}
	if valErr := validate.Struct(params); valErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"err": fmt.Sprintf("%s is not a valid HTTP(S) URL", params.Url)})
		return
	}
	if c.Request.Method == http.MethodHead {
		params.Silent = true
	}
	status, metadata, err := n.DocFromUrl(params, c.Writer.Header())
	if err != nil {
		c.AbortWithStatusJSON(status, gin.H{"code": status, "msg": err.Error()})
		return
	}
	if params.Silent {
		c.Status(status)
		return
	}
	c.JSON(status, metadata)
}

func (n *Normalizer) fetch(url string, noCache bool) (*http.Response, cache.DocumentMetadata, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		n.log.Error("Error when constructing GET request", "err", err, "url", url)
		return nil, nil, err
	}

	metadata := n.addCacheValidationHeaders(noCache, req, url)
	n.log.Debug("Issuing conditional GET request", "url", url, "headers", req.Header)

	response, err := n.httpClient.Do(req)
	if err != nil {
		return response, metadata, fmt.Errorf("fetching %s: %w", url, err)
	}
	return response, metadata, err
}

// DocFromUrl fetches a document and returns its normalized metadata,
// from cache when the URL has not been modified since it was last seen.
// The metadata is also added to header.
func (n *Normalizer) DocFromUrl(params RequestParams, header http.Header) (status int, metadata cache.DocumentMetadata, err error) {
	url := params.Url

	noCache := params.NoCache || n.cacheNop
	response, metadata, err := n.fetch(url, noCache)
	if err != nil {
		n.log.Error("Error fetching", "err", err, "url", url)
		return http.StatusBadRequest, nil, err
	}
	defer response.Body.Close()

	if response.StatusCode >= 400 {
		n.log.Warn("Error fetching", "status", response.Status, "url", url)
		return response.StatusCode, nil, fmt.Errorf("%s", response.Status)
	}
	if response.StatusCode == http.StatusNotModified && metadata != nil {
		n.log.Debug("URL has not been modified. Metadata will be served from cache", "url", url, "etag", response.Header.Get("etag"), lastModified, response.Header.Get(lastModified))
		cacheHits.Add(1)
		addMetadataAsHeaders(header, metadata)
		if params.Silent {
			return http.StatusNotModified, metadata, nil
		}
		return http.StatusOK, metadata, nil
	}
	// We have no current version of the document but fetched it,
	// so read its metadata
	n.log.Debug("Start parsing", "url", url, "content-length", response.ContentLength)
	doc, err := n.df.NewDocFromStream(response.Body, response.ContentLength, url)
	if err != nil {
		n.log.Error("Parsing failed", "err", err, "url", url, "headers", response.Header)
		return http.StatusUnprocessableEntity, nil, err
	}
	docsNormalized.Add(1)
	metadata = addHttpHeadersToMetadata(doc, response)
	addMetadataAsHeaders(header, metadata)
	n.log.Debug("Finished parsing", "url", url)

	normalized := cache.NormalizedDocument{
		Url:      &url,
		Metadata: &metadata,
		Doc:      doc,
	}
	n.postprocessDocsChan <- normalized
	return http.StatusOK, metadata, nil
}

func addMetadataAsHeaders(header http.Header, metadata cache.DocumentMetadata) {
	for k, v := range metadata {
		header.Add(k, v)
	}
}

func (n *Normalizer) addCacheValidationHeaders(noCache bool, req *http.Request, url string) cache.DocumentMetadata {
	if !noCache {
		metadata, err := n.mnsCache.GetMetadata(url)
		if err != nil {
			n.log.Error("Could not get metadata from NATS key-value bucket", "url", url, "err", err)
			return make(cache.DocumentMetadata)
		}
		if etag, ok := metadata["etag"]; ok {
			req.Header.Add("If-None-Match", etag)
		}
		if lastMod, ok := metadata["http-last-modified"]; ok {
			req.Header.Add("If-Modified-Since", lastMod)
		}
		return metadata
	}
	return make(cache.DocumentMetadata)
}

func addHttpHeadersToMetadata(doc cache.Document, response *http.Response) cache.DocumentMetadata {
	metadata := doc.MetadataMap()
	if etag := response.Header.Get("etag"); etag != "" {
		metadata["etag"] = etag
	}
	if lastmod := response.Header.Get(lastModified); lastmod != "" {
		metadata["http-last-modified"] = lastmod
	}
	if contentLength := response.ContentLength; contentLength > 0 {
		metadata["http-content-length"] = fmt.Sprintf("%d", contentLength)
	}
	return metadata
}
