package nats

import (
	"errors"
	"log/slog"
	"time"

	"github.com/johbar/metadata-normalization-service/internal/config"
	"github.com/nats-io/nats.go"
)

var errNatsNotEmbedded = errors.New("NATS has not been embedded in this build")

// SetupNatsConnection connects the service to NATS.
// When no URL is configured an embedded NATS server is started, if this build contains one.
func SetupNatsConnection(conf config.MnsConfig, log *slog.Logger) (*nats.Conn, error) {
	if conf.NatsUrl == "" {
		log.Info("No NATS URL configured. Starting embedded NATS server.", "embedded", NatsEmbedded)
		return ConnectToEmbeddedNatsServer(conf)
	}
	var nc *nats.Conn
	var err error
	var attempts int = 0

	log.Info("Try connecting to NATS", "url", conf.NatsUrl, "timeoutSecs", conf.NatsTimeout.Seconds(), "count", attempts)
	for nc == nil {
		attempts++
		nc, err = nats.Connect(conf.NatsUrl, nats.Name("MNS"), nats.Timeout(conf.NatsTimeout))
		if err != nil {
			log.Error("Connecting to NATS failed",
				"url", conf.NatsUrl,
				"timeoutSecs", conf.NatsTimeout.Seconds(),
				"err", err,
				"count", attempts,
				"maxRetries", conf.NatsConnectRetries)
			if attempts > conf.NatsConnectRetries {
				log.Error("Connecting to NATS failed. Retry count exceeded", "err", err, "maxRetries", conf.NatsConnectRetries)
				return nil, err
			}
			time.Sleep(time.Second)
		} else {
			return nc, nil
		}
	}

	return nc, err
}
