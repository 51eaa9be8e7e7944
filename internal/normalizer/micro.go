package normalizer

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"
)

func (n *Normalizer) RegisterNatsService(nc *nats.Conn) {
	normalizeService, err := micro.AddService(nc, micro.Config{
		Name:        "normalize-metadata",
		Version:     "1.0.0",
		Description: "Returns the normalized metadata of binary files like PDFs",
	})

	if err != nil {
		panic(err)
	}
	normalizeService.AddEndpoint("normalize-remote",
		micro.HandlerFunc(n.handleUrl),
		micro.WithEndpointQueueGroup("metadata-normalization-service"))
	normalizeService.AddEndpoint("update-cache",
		micro.HandlerFunc(n.updateCache),
		micro.WithEndpointQueueGroup("metadata-normalization-service"))
}

// handleUrl replies to a NATS request with a JSON encoded metadata map
func (n *Normalizer) handleUrl(req micro.Request) {
	var params RequestParams
	if err := json.Unmarshal(req.Data(), &params); err != nil {
		req.Error("invalid_params", err.Error(), nil)
		return
	}
	if err := validate.Struct(params); err != nil {
		req.Error("invalid_params", fmt.Sprintf("%s is not a valid HTTP(S) URL", params.Url), nil)
		return
	}
	n.log.Info("Received NATS request", "params", params)
	header := http.Header{}
	_, metadata, err := n.DocFromUrl(params, header)
	if err != nil {
		req.Error("failed", err.Error(), nil)
		return
	}
	payload, err := json.Marshal(metadata)
	if err != nil {
		req.Error("failed", err.Error(), nil)
		return
	}
	req.Respond(payload, micro.WithHeaders(micro.Headers(header)))
}

// updateCache responds with 'done' once a document has been added
// or refreshed in the cache
func (n *Normalizer) updateCache(req micro.Request) {
	url := string(req.Data())
	params := RequestParams{Url: url, Silent: true}
	if err := validate.Struct(params); err != nil {
		req.Error("invalid_params", fmt.Sprintf("%s is not a valid HTTP(S) URL", url), nil)
		return
	}
	n.log.Info("Received NATS request", "params", params)
	header := http.Header{}
	if _, _, err := n.DocFromUrl(params, header); err != nil {
		req.Error("failed", err.Error(), nil)
		return
	}
	req.Respond([]byte("done"))
}
