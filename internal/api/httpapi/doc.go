// Package httpapi serves the registry's JSON query API.
//
// Read endpoints are public and emit telemetry events. Mutating endpoints
// require an admin grant with the packages.write scope. Every response
// carries an X-Request-Id header; the same identifier is attached to
// telemetry rows and trace spans for correlation.
package httpapi
