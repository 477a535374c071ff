// Package pkginfo provides stateless accessors over a package registry.
//
// An App binds a Registry to a single package name and acts as the query
// context for that package. The accessor functions mirror the registry's
// two failure contracts: guarded accessors swallow lookup failures and
// report absence, while unguarded accessors return the lookup error to the
// caller. Callers that treat absence and failure differently should prefer
// the unguarded forms.
package pkginfo
