package pkginfo

import (
	"context"
	"time"
)

// Query selects optional data to include in a registry lookup.
type Query uint32

const (
	// QuerySignatures requests that signing certificates be populated on the
	// returned Info.
	QuerySignatures Query = 1 << 0
)

// Flag is a bit in an application's flag set.
type Flag uint32

const (
	// FlagDebuggable marks a package built for debugging.
	FlagDebuggable Flag = 1 << 1
)

// Info is the registry record for one package.
type Info struct {
	// PackageName is the unique package identifier.
	PackageName string
	// Label is the human-readable application name.
	Label string
	// VersionCode is the monotonically increasing build number.
	VersionCode int64
	// VersionName is the human-readable version string.
	VersionName string
	// TargetSDK is the platform API level the package targets.
	TargetSDK int32
	// Flags holds the application flag bits.
	Flags Flag
	// Signatures holds the raw signing certificates in registry order.
	// Populated only when the lookup included QuerySignatures.
	Signatures [][]byte
	// UpdatedAt is when the registry record last changed.
	UpdatedAt time.Time
}

// Debuggable reports whether the debuggable flag bit is set.
func (i *Info) Debuggable() bool {
	return i != nil && i.Flags&FlagDebuggable != 0
}

// Registry resolves package records by name.
type Registry interface {
	// PackageInfo returns the record for name. Implementations return
	// storage.ErrNotFound-compatible errors for unknown packages.
	PackageInfo(ctx context.Context, name string, q Query) (*Info, error)
}

// App is the query context for a single package.
type App struct {
	registry    Registry
	packageName string
	restricted  bool
}

// NewApp binds a registry to a package name.
func NewApp(registry Registry, packageName string) *App {
	return &App{registry: registry, packageName: packageName}
}

// PackageName returns the package identifier bound to the App.
func (a *App) PackageName() string {
	if a == nil {
		return ""
	}
	return a.packageName
}

// Restricted reports whether the App was derived for a foreign package.
func (a *App) Restricted() bool {
	return a != nil && a.restricted
}
