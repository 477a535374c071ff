// Package sqlite implements the registry stores over a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/appregistry/internal/pkginfo"
	sqlitemigrate "github.com/louisbranch/appregistry/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/appregistry/internal/storage"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store implements package registry persistence over SQLite.
//
// A single SQLite file backs the package records, their signatures, and
// operational telemetry.
type Store struct {
	sqlDB *sql.DB
}

// toMillis normalizes timestamps into millisecond precision for storage.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// fromMillis restores millisecond precision and keeps UTC normalization.
func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a registry SQLite store and applies bundled migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	// modernc.org/sqlite only honors pragmas in _pragma=name(value) form.
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := sqlitemigrate.Apply(sqlDB, migrationsFS, "migrations"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PackageInfo returns the record for name. Signatures load only when the
// query requests them.
func (s *Store) PackageInfo(ctx context.Context, name string, q pkginfo.Query) (*pkginfo.Info, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("store is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT name, label, version_code, version_name, target_sdk, flags, updated_at
FROM packages
WHERE name = ?`, name)

	var info pkginfo.Info
	var flags uint32
	var updatedAt int64
	err := row.Scan(&info.PackageName, &info.Label, &info.VersionCode, &info.VersionName, &info.TargetSDK, &flags, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("package %q: %w", name, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("query package: %w", err)
	}
	info.Flags = pkginfo.Flag(flags)
	info.UpdatedAt = fromMillis(updatedAt)

	if q&pkginfo.QuerySignatures != 0 {
		signatures, err := s.packageSignatures(ctx, name)
		if err != nil {
			return nil, err
		}
		info.Signatures = signatures
	}
	return &info, nil
}

// PutPackage inserts or replaces a package record and its signatures
// atomically.
func (s *Store) PutPackage(ctx context.Context, info pkginfo.Info) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("store is not configured")
	}
	name := strings.TrimSpace(info.PackageName)
	if name == "" {
		return fmt.Errorf("package name is required")
	}
	updatedAt := info.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put package: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO packages (name, label, version_code, version_name, target_sdk, flags, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
    label = excluded.label,
    version_code = excluded.version_code,
    version_name = excluded.version_name,
    target_sdk = excluded.target_sdk,
    flags = excluded.flags,
    updated_at = excluded.updated_at`,
		name, info.Label, info.VersionCode, info.VersionName, info.TargetSDK, uint32(info.Flags), toMillis(updatedAt),
	); err != nil {
		return fmt.Errorf("upsert package: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM package_signatures WHERE package_name = ?", name); err != nil {
		return fmt.Errorf("clear signatures: %w", err)
	}
	for position, certificate := range info.Signatures {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO package_signatures (package_name, position, certificate)
VALUES (?, ?, ?)`, name, position, certificate); err != nil {
			return fmt.Errorf("insert signature %d: %w", position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit put package: %w", err)
	}
	return nil
}

// DeletePackage removes a package record and its signatures atomically.
// Signature rows are deleted explicitly rather than left to the schema's
// cascade, so correctness does not depend on the foreign_keys pragma.
func (s *Store) DeletePackage(ctx context.Context, name string) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("store is not configured")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete package: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM package_signatures WHERE package_name = ?", name); err != nil {
		return fmt.Errorf("delete signatures: %w", err)
	}
	result, err := tx.ExecContext(ctx, "DELETE FROM packages WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("delete package: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete package rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("package %q: %w", name, storage.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete package: %w", err)
	}
	return nil
}

// ListPackages returns records ordered by package name.
func (s *Store) ListPackages(ctx context.Context, limit, offset int) ([]pkginfo.Info, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("store is not configured")
	}
	limit, offset = storage.NormalizeListRange(limit, offset)

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT name, label, version_code, version_name, target_sdk, flags, updated_at
FROM packages
ORDER BY name
LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var infos []pkginfo.Info
	for rows.Next() {
		var info pkginfo.Info
		var flags uint32
		var updatedAt int64
		if err := rows.Scan(&info.PackageName, &info.Label, &info.VersionCode, &info.VersionName, &info.TargetSDK, &flags, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan package row: %w", err)
		}
		info.Flags = pkginfo.Flag(flags)
		info.UpdatedAt = fromMillis(updatedAt)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate package rows: %w", err)
	}
	return infos, nil
}

// AppendTelemetryEvent persists one telemetry event row.
func (s *Store) AppendTelemetryEvent(ctx context.Context, evt storage.TelemetryEvent) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("store is not configured")
	}
	attributes := "{}"
	if len(evt.Attributes) > 0 {
		encoded, err := json.Marshal(evt.Attributes)
		if err != nil {
			return fmt.Errorf("encode telemetry attributes: %w", err)
		}
		attributes = string(encoded)
	}
	timestamp := evt.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	if _, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO telemetry_events (event_id, ts, event_name, severity, package_name, request_id, attributes_json)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		evt.EventID, toMillis(timestamp), evt.EventName, evt.Severity, evt.PackageName, evt.RequestID, attributes,
	); err != nil {
		return fmt.Errorf("insert telemetry event: %w", err)
	}
	return nil
}

func (s *Store) packageSignatures(ctx context.Context, name string) ([][]byte, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT certificate
FROM package_signatures
WHERE package_name = ?
ORDER BY position`, name)
	if err != nil {
		return nil, fmt.Errorf("query signatures: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var signatures [][]byte
	for rows.Next() {
		var certificate []byte
		if err := rows.Scan(&certificate); err != nil {
			return nil, fmt.Errorf("scan signature row: %w", err)
		}
		signatures = append(signatures, certificate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signature rows: %w", err)
	}
	return signatures, nil
}
