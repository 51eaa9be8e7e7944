package cache

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/johbar/metadata-normalization-service/internal/config"
	"github.com/johbar/metadata-normalization-service/pkg/metafields"
)

// KeyValueCache stores normalized metadata as JSON in a NATS JetStream
// key-value bucket, keyed by the URL of origin.
type KeyValueCache struct {
	jetstream.KeyValue
	nc *nats.Conn
	js jetstream.JetStream
}

func New(conf config.MnsConfig, log *slog.Logger, nc *nats.Conn) (*KeyValueCache, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if nc == nil {
		return nil, errors.New("no connection to NATS")
	}
	js, err := setupJetstream(conf, nc, log)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	bucket, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Storage:      jetstream.FileStorage,
		Bucket:       conf.Bucket,
		MaxValueSize: conf.NatsMaxPayload,
		Replicas:     conf.Replicas,
	})
	if err != nil {
		log.Error("Creating NATS key-value bucket failed", "err", err, "bucket", conf.Bucket)
		return nil, fmt.Errorf("initializing NATS key-value bucket: %w", err)
	}
	log.Info("NATS key-value bucket initialized.", "bucket", conf.Bucket)
	return &KeyValueCache{bucket, nc, js}, nil
}

func setupJetstream(conf config.MnsConfig, nc *nats.Conn, log *slog.Logger) (jetstream.JetStream, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		log.Error("FATAL: Error when initializing NATS JetStream", "err", err.Error())
		return nil, err
	}

	for attempts := 0; attempts <= conf.NatsConnectRetries; attempts++ {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()
		_, err = js.AccountInfo(ctx)
		if err != nil {
			if errors.Is(err, jetstream.ErrJetStreamNotEnabled) || errors.Is(err, jetstream.ErrJetStreamNotEnabledForAccount) {
				return nil, err
			}
			log.Error("NATS JetStream check failed. Is JetStream enabled in external NATS server(s)?",
				"err", err,
				"count", attempts,
				"maxRetries", conf.NatsConnectRetries)
			time.Sleep(time.Second)
		} else {
			return js, nil
		}
	}
	return nil, fmt.Errorf("retry count exceeded: %w", err)
}

// urlToKey encodes a URL so that it conforms to the NATS key grammar,
// which forbids most URL characters.
func urlToKey(url string) string {
	return base64.URLEncoding.EncodeToString([]byte(url))
}

func (cache KeyValueCache) GetMetadata(url string) (DocumentMetadata, error) {
	key := urlToKey(url)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	entry, err := cache.Get(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("retrieving metadata for %s: %w", url, err)
	}
	rawValue := entry.Value()
	if rawValue == nil {
		return nil, nil
	}
	metadata := make(DocumentMetadata)
	if err := json.Unmarshal(rawValue, &metadata); err != nil {
		return nil, fmt.Errorf("decoding cached metadata for %s: %w", url, err)
	}
	// RFC 3339 renders the same date-time layout the normalized fields carry
	metadata[metafields.Ingested] = entry.Created().Local().Format(time.RFC3339)
	return metadata, nil
}

func (cache KeyValueCache) Save(doc NormalizedDocument) error {
	key := urlToKey(*doc.Url)
	metadataJson, err := json.Marshal(*doc.Metadata)
	if err != nil {
		return fmt.Errorf("encoding metadata for %s: %w", *doc.Url, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := cache.Put(ctx, key, metadataJson); err != nil {
		return fmt.Errorf("putting metadata to key-value bucket: %w", err)
	}
	return nil
}
