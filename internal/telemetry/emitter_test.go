package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/louisbranch/appregistry/internal/storage"
)

type recordingStore struct {
	events []storage.TelemetryEvent
	err    error
}

func (r *recordingStore) AppendTelemetryEvent(ctx context.Context, evt storage.TelemetryEvent) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, evt)
	return nil
}

func TestEmitFillsTimestampAndID(t *testing.T) {
	store := &recordingStore{}
	emitter := NewEmitter(store)
	emitter.clock = func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }
	emitter.newID = func() string { return "evt-fixed" }

	err := emitter.Emit(context.Background(), storage.TelemetryEvent{
		EventName:   "registry.api.read",
		Severity:    string(SeverityInfo),
		PackageName: "com.example.terminal",
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(store.events) != 1 {
		t.Fatalf("stored %d events, want 1", len(store.events))
	}
	evt := store.events[0]
	if evt.EventID != "evt-fixed" {
		t.Fatalf("EventID = %q, want %q", evt.EventID, "evt-fixed")
	}
	if !evt.Timestamp.Equal(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("Timestamp = %v, want injected clock value", evt.Timestamp)
	}
}

func TestEmitKeepsProvidedFields(t *testing.T) {
	store := &recordingStore{}
	emitter := NewEmitter(store)

	stamp := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	err := emitter.Emit(context.Background(), storage.TelemetryEvent{
		EventID:   "evt-provided",
		Timestamp: stamp,
		EventName: "registry.api.read",
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	evt := store.events[0]
	if evt.EventID != "evt-provided" {
		t.Fatalf("EventID = %q, want provided value", evt.EventID)
	}
	if !evt.Timestamp.Equal(stamp) {
		t.Fatalf("Timestamp = %v, want provided value", evt.Timestamp)
	}
}

func TestEmitNoopWithoutStore(t *testing.T) {
	var emitter *Emitter
	if err := emitter.Emit(context.Background(), storage.TelemetryEvent{}); err != nil {
		t.Fatalf("nil emitter emit: %v", err)
	}
	if err := NewEmitter(nil).Emit(context.Background(), storage.TelemetryEvent{}); err != nil {
		t.Fatalf("nil store emit: %v", err)
	}
}
