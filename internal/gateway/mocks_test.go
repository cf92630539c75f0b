package gateway

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/aquamarinepk/aqm"

	"github.com/voicedesk/voicedesk/internal/store"
)

// MockPublisher is a test mock for events.Publisher
type MockPublisher struct {
	PublishedEvents []PublishedEvent
	PublishFunc     func(ctx context.Context, topic string, data []byte) error
}

type PublishedEvent struct {
	Topic string
	Data  []byte
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		PublishedEvents: make([]PublishedEvent, 0),
	}
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, data []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, data)
	}
	m.PublishedEvents = append(m.PublishedEvents, PublishedEvent{Topic: topic, Data: data})
	return nil
}

// newTestStore loads a store through the real dataset path so tests
// exercise the same code the process boots with.
func newTestStore(t *testing.T, orders ...store.Order) *store.Store {
	t.Helper()

	ds := map[string]any{"orders": orders}
	data, err := json.Marshal(ds)
	if err != nil {
		t.Fatalf("cannot marshal dataset: %v", err)
	}

	path := filepath.Join(t.TempDir(), "orders.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("cannot write dataset: %v", err)
	}

	s := store.New(aqm.NewNoopLogger())
	if err := s.Load(path); err != nil {
		t.Fatalf("cannot load dataset: %v", err)
	}
	return s
}

func strptr(s string) *string {
	return &s
}

// testEnvelope mirrors the wire envelope for assertions.
type testEnvelope struct {
	OK    bool           `json:"ok"`
	Data  map[string]any `json:"data"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) testEnvelope {
	t.Helper()
	var env testEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("cannot decode envelope %s: %v", body, err)
	}
	return env
}
