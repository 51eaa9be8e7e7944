package cache

// Document represents any kind of document this service can read metadata from
type Document interface {
	// MetadataMap returns a map of document properties, such as author, title
	// and the normalized timestamps
	MetadataMap() DocumentMetadata
	// Path returns the filesystem path a document was loaded from or an empty string if it was not loaded from disk
	Path() string
	// Close releases resources associated with the document
	Close()
}

type DocumentMetadata = map[string]string

// NormalizedDocument contains pointers to metadata and URL of origin
type NormalizedDocument struct {
	Url      *string
	Metadata *map[string]string
	Doc      Document
}

type Cache interface {
	GetMetadata(url string) (DocumentMetadata, error)
	Save(doc NormalizedDocument) error
}

type NopCache struct{}

func (c *NopCache) GetMetadata(url string) (DocumentMetadata, error) {
	return nil, nil
}

func (c *NopCache) Save(doc NormalizedDocument) error {
	return nil
}
