package normalizer

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"github.com/johbar/metadata-normalization-service/internal/cache"
	"github.com/johbar/metadata-normalization-service/internal/config"
	"github.com/johbar/metadata-normalization-service/internal/docmeta"
	"github.com/johbar/metadata-normalization-service/pkg/metafields"
)

const pdfFixturePath = "../pdfmeta/testdata/minimal.pdf"

// fakeCache is a map-backed Cache so the conditional GET path can be tested
// without a NATS server.
type fakeCache struct {
	entries map[string]cache.DocumentMetadata
}

func (f *fakeCache) GetMetadata(url string) (cache.DocumentMetadata, error) {
	return f.entries[url], nil
}

func (f *fakeCache) Save(doc cache.NormalizedDocument) error {
	f.entries[*doc.Url] = *doc.Metadata
	return nil
}

func newTestRouter(t *testing.T, mnsCache cache.Cache) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	conf, err := config.NewMnsConfigFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	df := docmeta.New(conf, nil)
	n := New(conf, df, mnsCache, nil, nil)
	router := gin.New()
	router.POST("/", n.NormalizeBody)
	router.GET("/", n.NormalizeRemote)
	router.HEAD("/", n.NormalizeRemote)
	return router
}

func TestNormalizeBody(t *testing.T) {
	router := newTestRouter(t, &cache.NopCache{})
	pdfData, err := os.ReadFile(pdfFixturePath)
	if err != nil {
		t.Fatal(err)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(pdfData))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get(metafields.Title); got != "Jahresbericht 2023" {
		t.Errorf("%s header = %q, want the document title", metafields.Title, got)
	}
	var metadata map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &metadata); err != nil {
		t.Fatalf("response is not a JSON object: %v", err)
	}
	if got := metadata[metafields.Created]; got != "2023-06-15T12:00:00Z" {
		t.Errorf("%s = %q, want normalized timestamp", metafields.Created, got)
	}
	if got := metadata[metafields.Modified]; got != "2023-06-16T08:30:00+02:00" {
		t.Errorf("%s = %q, want normalized timestamp", metafields.Modified, got)
	}
}

func TestNormalizeRemote(t *testing.T) {
	pdfData, err := os.ReadFile(pdfFixturePath)
	if err != nil {
		t.Fatal(err)
	}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Etag", `"v1"`)
		w.Write(pdfData)
	}))
	defer upstream.Close()

	router := newTestRouter(t, &cache.NopCache{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?url="+upstream.URL+"/minimal.pdf", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	var metadata map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &metadata); err != nil {
		t.Fatalf("response is not a JSON object: %v", err)
	}
	if got := metadata[metafields.Created]; got != "2023-06-15T12:00:00Z" {
		t.Errorf("%s = %q, want normalized timestamp", metafields.Created, got)
	}
	if got := metadata["etag"]; got != `"v1"` {
		t.Errorf("etag = %q, want the upstream validator merged in", got)
	}
	if got := w.Header().Get(metafields.Author); got != "Erika Mustermann" {
		t.Errorf("%s header = %q, want the document author", metafields.Author, got)
	}
}

func TestNormalizeRemoteServesFromCache(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		t.Errorf("expected a conditional request, got headers %v", r.Header)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	url := upstream.URL + "/cached.pdf"
	cached := &fakeCache{entries: map[string]cache.DocumentMetadata{
		url: {
			metafields.Title:   "From The Bucket",
			metafields.Created: "2023-06-15T12:00:00Z",
			"etag":             `"v1"`,
		},
	}}
	router := newTestRouter(t, cached)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?url="+url, nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	var metadata map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &metadata); err != nil {
		t.Fatalf("response is not a JSON object: %v", err)
	}
	if got := metadata[metafields.Title]; got != "From The Bucket" {
		t.Errorf("%s = %q, want the cached value", metafields.Title, got)
	}

	// HEAD yields the headers only
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodHead, "/?url="+url, nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Fatalf("status = %d, want 304", w.Code)
	}
	if got := w.Header().Get(metafields.Title); got != "From The Bucket" {
		t.Errorf("%s header = %q, want the cached value", metafields.Title, got)
	}
	if w.Body.Len() > 0 {
		t.Errorf("HEAD response has a body: %s", w.Body.String())
	}
}

func TestNormalizeRemoteRejectsBadUrls(t *testing.T) {
	router := newTestRouter(t, &cache.NopCache{})
	for _, target := range []string{"/", "/?url=ftp%3A%2F%2Fexample.com%2Fx", "/?url=not-a-url"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, target, nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("GET %s: status = %d, want 400", target, w.Code)
		}
	}
}

func TestNormalizeBodyRejectsJunk(t *testing.T) {
	router := newTestRouter(t, &cache.NopCache{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("no document here")))
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
}
