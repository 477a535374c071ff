// Package telemetry records operational events for audits and incident
// analysis.
package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/louisbranch/appregistry/internal/storage"
)

// Severity describes the telemetry severity level.
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Emitter records operational telemetry events.
type Emitter struct {
	store storage.TelemetryStore
	clock func() time.Time
	newID func() string
}

// NewEmitter creates a new telemetry emitter.
func NewEmitter(store storage.TelemetryStore) *Emitter {
	return &Emitter{
		store: store,
		clock: time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

// Emit records a telemetry event. It is a no-op when the store is nil.
// Missing timestamps and event IDs are filled in before the write.
func (e *Emitter) Emit(ctx context.Context, evt storage.TelemetryEvent) error {
	if e == nil || e.store == nil {
		return nil
	}
	if evt.Timestamp.IsZero() {
		if e.clock == nil {
			evt.Timestamp = time.Now().UTC()
		} else {
			evt.Timestamp = e.clock().UTC()
		}
	}
	if evt.EventID == "" {
		if e.newID == nil {
			evt.EventID = uuid.NewString()
		} else {
			evt.EventID = e.newID()
		}
	}
	return e.store.AppendTelemetryEvent(ctx, evt)
}
