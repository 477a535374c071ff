package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/appregistry/internal/pkginfo"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// List sizing bounds shared by stores and the API layer.
const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// NormalizeListRange clamps limit and offset to the bounds stores apply,
// so callers can report the effective values of a listing.
func NormalizeListRange(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// PackageStore persists package registry records.
type PackageStore interface {
	pkginfo.Registry

	// PutPackage inserts or replaces a package record and its signatures.
	PutPackage(ctx context.Context, info pkginfo.Info) error
	// DeletePackage removes a package record. Returns ErrNotFound when the
	// package is unknown.
	DeletePackage(ctx context.Context, name string) error
	// ListPackages returns records ordered by package name. Signatures are
	// never populated on listed records.
	ListPackages(ctx context.Context, limit, offset int) ([]pkginfo.Info, error)
}

// TelemetryEvent describes one operational event worth auditing.
type TelemetryEvent struct {
	EventID     string
	Timestamp   time.Time
	EventName   string
	Severity    string
	PackageName string
	RequestID   string
	Attributes  map[string]any
}

// TelemetryStore persists operational telemetry records for audits and
// incident analysis.
type TelemetryStore interface {
	AppendTelemetryEvent(ctx context.Context, evt TelemetryEvent) error
}
