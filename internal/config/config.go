package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"go-simpler.org/env"
)

// MnsConfig represents the configuration of this service
type MnsConfig struct {
	// Name of the key-value bucket in NATS holding normalized metadata.
	// Default: MNS_METADATA
	Bucket string `env:"MNS_BUCKET" default:"MNS_METADATA"`
	// whether to expose the embedded NATS server to other clients. Default: false
	ExposeNats bool `env:"MNS_EXPOSE_NATS" default:"false"`
	// Add source info to log statements. Default: false
	Debug bool `env:"MNS_DEBUG" default:"false"`
	// If true the service will exit with an error if NATS or JetStream can't be connected
	FailWithoutJetstream bool `env:"MNS_FAIL_WITHOUT_JS" default:"true"`
	// Disable Accept-Encoding=gzip header in outgoing HTTP requests
	HttpClientDisableCompression bool `env:"MNS_HTTP_CLIENT_DISABLE_COMPRESSION" default:"false"`
	// Log level (DEBUG, INFO, WARN, ERROR)
	LogLevelStr string `env:"MNS_LOG_LEVEL" default:"INFO"`
	LogLevel    slog.Level
	// Maximum size a file may have; processing is aborted if a requested file is bigger
	MaxFileSize      string `env:"MNS_MAX_FILE_SIZE" default:"300MiB"`
	MaxFileSizeBytes uint64
	// maximum size of a fetched file to be processed solely in-memory instead of being downloaded
	MaxInMemory      string `env:"MNS_MAX_IN_MEMORY" default:"2MiB"`
	MaxInMemoryBytes uint64
	// NATS max msg size (embedded server only)
	NatsMaxPayload int32 `env:"MNS_MAX_PAYLOAD" default:"8388608"`
	// embedded NATS server storage location. Default: /tmp/nats
	NatsStoreDir string `env:"MNS_NATS_STORE_DIR"`
	// embedded NATS server host/ip address, if exposed. Default: localhost
	NatsHost string `env:"MNS_NATS_HOST" default:"localhost"`
	// embedded NATS server port, if exposed. Default: 4222
	NatsPort int `env:"MNS_NATS_PORT" default:"4222"`
	// External NATS URL, e.g. nats://localhost:4222
	NatsUrl string `env:"MNS_NATS_URL"`
	// Timeout for the external NATS connection
	NatsTimeout time.Duration `env:"MNS_NATS_TIMEOUT" default:"15s"`
	// NatsConnectRetries is the number of attempts to connect to external NATS server(s)
	NatsConnectRetries int `env:"MNS_NATS_CONNECT_RETRIES" default:"10"`
	// if true, disable the HTTP server in favor of the NATS microservice interface
	NoHttp bool `env:"MNS_NO_HTTP" default:"false"`
	// How many replicas of the bucket to create. Default: 1
	Replicas int `env:"MNS_REPLICAS" default:"1"`
	// in oneshot mode, write the metadata to a sidecar file next to the input
	Sidecar bool `env:"MNS_SIDECAR" default:"false"`
	// HTTP listen address and/or port. Default: ':8080'
	SrvAddr string `env:"MNS_HOST_PORT" default:":8080"`
}

// NewMnsConfigFromEnv returns a service config object
// populated with defaults and values from environment vars
func NewMnsConfigFromEnv() (*MnsConfig, error) {
	var cfg MnsConfig
	if err := env.Load(&cfg, nil); err != nil {
		return nil, err
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(cfg.LogLevelStr)); err != nil {
		return nil, fmt.Errorf("parsing log level from env: %w", err)
	}
	maxbytes, err := humanize.ParseBytes(cfg.MaxInMemory)
	if err != nil {
		return nil, fmt.Errorf("parsing max in memory file size from env: %w", err)
	}
	cfg.MaxInMemoryBytes = maxbytes
	maxSize, err := humanize.ParseBytes(cfg.MaxFileSize)
	if err != nil {
		return nil, fmt.Errorf("parsing max file size from env: %w", err)
	}
	cfg.MaxFileSizeBytes = maxSize
	return &cfg, nil
}
