// Package mqttingest accepts badge scans published over MQTT and answers on
// a per-device result topic. Delivery is QoS 0: a scan is processed at most
// once and never redelivered.
package mqttingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/BrandonDHaskell/rollcall/internal/rollcall/service"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/store"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/types"
)

const qosAtMostOnce byte = 0

// Publisher is the subset of Client the ingestor needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

type Subscriber interface {
	Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error
}

type response struct {
	Success bool              `json:"success"`
	Data    *types.ScanResult `json:"data,omitempty"`
	Error   *responseError    `json:"error,omitempty"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Ingestor struct {
	scans  *service.ScanService
	prefix string
	pub    Publisher
	logger *zap.Logger
}

func NewIngestor(scans *service.ScanService, topicPrefix string, pub Publisher, logger *zap.Logger) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{
		scans:  scans,
		prefix: strings.TrimSuffix(topicPrefix, "/"),
		pub:    pub,
		logger: logger,
	}
}

// ScanTopic is the wildcard subscription for every device.
func (i *Ingestor) ScanTopic() string { return i.prefix + "/scans/+" }

func (i *Ingestor) resultTopic(device string) string { return i.prefix + "/results/" + device }

// deviceFromTopic extracts <device> from <prefix>/scans/<device>.
func (i *Ingestor) deviceFromTopic(topic string) string {
	rest, ok := strings.CutPrefix(topic, i.prefix+"/scans/")
	if !ok || strings.Contains(rest, "/") {
		return ""
	}
	return rest
}

// HandleMessage ingests one JSON scan payload and returns the encoded
// response envelope. A device_id missing from the payload is taken from the topic.
func (i *Ingestor) HandleMessage(ctx context.Context, topic string, payload []byte) []byte {
	device := i.deviceFromTopic(topic)
	resp := i.ingest(ctx, device, payload)
	b, err := json.Marshal(resp)
	if err != nil {
		i.logger.Error("marshal mqtt response", zap.Error(err))
		return []byte(`{"success":false,"error":{"code":"internal_error","message":"unexpected server error"}}`)
	}
	return b
}

func (i *Ingestor) ingest(ctx context.Context, device string, payload []byte) response {
	var fields map[string]any
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return failure("bad_request", "payload must be a JSON object")
	}
	req, err := service.ScanRequestFromFields(fields)
	if err != nil {
		return failure("validation_error", err.Error())
	}
	if strings.TrimSpace(req.DeviceID) == "" {
		req.DeviceID = device
	}

	res, err := i.scans.Ingest(ctx, req)
	switch {
	case err == nil:
		return response{Success: true, Data: &res}
	case service.IsValidation(err):
		return failure("validation_error", err.Error())
	case errors.Is(err, store.ErrUnavailable):
		return failure("store_unavailable", "store unavailable, try again")
	default:
		i.logger.Error("mqtt scan error", zap.Error(err))
		return failure("internal_error", "unexpected server error")
	}
}

func failure(code, msg string) response {
	return response{Error: &responseError{Code: code, Message: msg}}
}

// Run subscribes to every device's scan topic and publishes each result on
// the device's result topic. It returns once ctx ends.
func (i *Ingestor) Run(ctx context.Context, sub Subscriber) error {
	err := sub.Subscribe(i.ScanTopic(), qosAtMostOnce, func(topic string, payload []byte) {
		out := i.HandleMessage(ctx, topic, payload)
		device := i.deviceFromTopic(topic)
		if device == "" {
			return
		}
		if err := i.pub.Publish(i.resultTopic(device), qosAtMostOnce, false, out); err != nil {
			i.logger.Warn("mqtt publish result failed", zap.String("device_id", device), zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	i.logger.Info("mqtt ingestion subscribed", zap.String("topic", i.ScanTopic()))
	<-ctx.Done()
	return nil
}
