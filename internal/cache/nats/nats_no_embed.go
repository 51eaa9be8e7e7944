//go:build no_embedded_nats

package nats

import (
	mnsconfig "github.com/johbar/metadata-normalization-service/internal/config"
	"github.com/nats-io/nats.go"
)

const NatsEmbedded bool = false

func ConnectToEmbeddedNatsServer(_ mnsconfig.MnsConfig) (*nats.Conn, error) {
	return nil, errNatsNotEmbedded
}
