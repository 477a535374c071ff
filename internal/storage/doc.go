// Package storage defines the persistence interfaces for the package
// registry.
//
// It provides a high-level abstraction for storing package records and
// operational telemetry. Implementations of these interfaces (e.g., using
// SQLite) can be found in subpackages.
//
// # Error Types
//
// The package defines common error types used across storage implementations:
//   - ErrNotFound: Indicates a requested record is missing.
package storage
