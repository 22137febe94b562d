package mqttingest_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonDHaskell/rollcall/internal/mqttingest"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/lock"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/service"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/store/memory"
)

type published struct {
	topic   string
	payload []byte
}

// fakeBroker records publishes and lets tests deliver messages to the
// subscribed handler.
type fakeBroker struct {
	mu        sync.Mutex
	handler   func(topic string, payload []byte)
	subTopic  string
	published []published
	subbed    chan struct{}
}

func newFakeBroker() *fakeBroker { return &fakeBroker{subbed: make(chan struct{})} }

func (b *fakeBroker) Subscribe(topic string, _ byte, h func(string, []byte)) error {
	b.mu.Lock()
	b.subTopic, b.handler = topic, h
	b.mu.Unlock()
	close(b.subbed)
	return nil
}

func (b *fakeBroker) Publish(topic string, _ byte, _ bool, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, published{topic, payload})
	return nil
}

func (b *fakeBroker) deliver(topic, payload string) {
	b.mu.Lock()
	h := b.handler
	b.mu.Unlock()
	h(topic, []byte(payload))
}

type envelope struct {
	Success bool `json:"success"`
	Data    struct {
		AttendanceType string `json:"attendance_type"`
		DeviceID       string `json:"device_id"`
	} `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newIngestor(pub mqttingest.Publisher) (*mqttingest.Ingestor, *memory.EventStore) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	events := memory.NewEventStore(func() time.Time { return now })
	scans := service.NewScanService(events, memory.NewPersonStore(), lock.NewKeyedMutex(), service.Settings{})
	return mqttingest.NewIngestor(scans, "rollcall/", pub, nil), events
}

func TestHandleMessage_DeviceFromTopic(t *testing.T) {
	ing, events := newIngestor(newFakeBroker())

	var out envelope
	require.NoError(t, json.Unmarshal(ing.HandleMessage(context.Background(), "rollcall/scans/gate-1", []byte(`{"tag":"A"}`)), &out))
	assert.True(t, out.Success)
	assert.Equal(t, "IN", out.Data.AttendanceType)
	assert.Equal(t, "gate-1", out.Data.DeviceID)

	require.NoError(t, json.Unmarshal(ing.HandleMessage(context.Background(), "rollcall/scans/gate-1", []byte(`{"tag":"A","device_id":"override"}`)), &out))
	assert.Equal(t, "OUT", out.Data.AttendanceType)
	assert.Equal(t, "override", out.Data.DeviceID)
	assert.Len(t, events.Events(), 2)
}

func TestHandleMessage_Rejections(t *testing.T) {
	ing, events := newIngestor(newFakeBroker())

	for payload, code := range map[string]string{
		`garbage`:                     "bad_request",
		`{"device_id":"x"}`:           "validation_error",
		`{"tag":"A","signal":"loud"}`: "validation_error",
	} {
		var out envelope
		require.NoError(t, json.Unmarshal(ing.HandleMessage(context.Background(), "rollcall/scans/d", []byte(payload)), &out))
		assert.False(t, out.Success, payload)
		require.NotNil(t, out.Error, payload)
		assert.Equal(t, code, out.Error.Code, payload)
	}
	assert.Empty(t, events.Events())
}

func TestHandleMessage_StoreDown(t *testing.T) {
	ing, events := newIngestor(newFakeBroker())
	events.FailWith(errors.New("down"))

	var out envelope
	require.NoError(t, json.Unmarshal(ing.HandleMessage(context.Background(), "rollcall/scans/d", []byte(`{"tag":"A"}`)), &out))
	require.NotNil(t, out.Error)
	assert.Equal(t, "store_unavailable", out.Error.Code)
}

func TestRun_PublishesResultPerDevice(t *testing.T) {
	broker := newFakeBroker()
	ing, _ := newIngestor(broker)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ing.Run(ctx, broker) }()

	<-broker.subbed
	assert.Equal(t, "rollcall/scans/+", broker.subTopic)
	broker.deliver("rollcall/scans/gate-7", `{"tag":"Z"}`)

	cancel()
	require.NoError(t, <-done)

	broker.mu.Lock()
	defer broker.mu.Unlock()
	require.Len(t, broker.published, 1)
	assert.Equal(t, "rollcall/results/gate-7", broker.published[0].topic)
	assert.Contains(t, string(broker.published[0].payload), `"attendance_type":"IN"`)
}
