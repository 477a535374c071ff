// Package api contains API service implementations.
//
// The httpapi subpackage serves the registry's JSON query API. Mutating
// endpoints are gated by admin grants; read endpoints are public.
package api
