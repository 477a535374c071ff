package pkginfo

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log"
)

// ForPackage derives a restricted App for another package name. The lookup
// probes the registry so that a context is never handed out for an unknown
// package. Returns nil on any lookup failure.
func ForPackage(ctx context.Context, app *App, packageName string) *App {
	if app == nil || app.registry == nil {
		return nil
	}
	if _, err := app.registry.PackageInfo(ctx, packageName, 0); err != nil {
		log.Printf("package context %q: %v", packageName, err)
		return nil
	}
	return &App{registry: app.registry, packageName: packageName, restricted: true}
}

// PackageInfo returns the record for the App's package without optional data.
// Returns nil on any lookup failure.
func PackageInfo(ctx context.Context, app *App) *Info {
	return PackageInfoWithQuery(ctx, app, 0)
}

// PackageInfoWithQuery returns the record for the App's package with the
// given query options. Returns nil on any lookup failure.
func PackageInfoWithQuery(ctx context.Context, app *App, q Query) *Info {
	if app == nil || app.registry == nil {
		return nil
	}
	info, err := app.registry.PackageInfo(ctx, app.packageName, q)
	if err != nil {
		return nil
	}
	return info
}

// AppName returns the application label for the App's package.
func AppName(ctx context.Context, app *App) (string, error) {
	info, err := lookup(ctx, app)
	if err != nil {
		return "", err
	}
	return info.Label, nil
}

// TargetSDKVersion returns the API level the App's package targets.
func TargetSDKVersion(ctx context.Context, app *App) (int32, error) {
	info, err := lookup(ctx, app)
	if err != nil {
		return 0, err
	}
	return info.TargetSDK, nil
}

// IsDebugBuild reports whether the App's package carries the debuggable flag.
func IsDebugBuild(ctx context.Context, app *App) (bool, error) {
	info, err := lookup(ctx, app)
	if err != nil {
		return false, err
	}
	return info.Debuggable(), nil
}

// VersionCode returns the build number for the App's package. The second
// return value is false on any lookup failure.
func VersionCode(ctx context.Context, app *App) (int64, bool) {
	info := PackageInfo(ctx, app)
	if info == nil {
		return 0, false
	}
	return info.VersionCode, true
}

// VersionName returns the version string for the App's package. The second
// return value is false on any lookup failure.
func VersionName(ctx context.Context, app *App) (string, bool) {
	info := PackageInfo(ctx, app)
	if info == nil {
		return "", false
	}
	return info.VersionName, true
}

// SigningCertificateSHA256Digest returns the uppercase hex SHA-256 digest of
// the first signing certificate for the App's package. The second return
// value is false on lookup failure or when the package has no signatures.
func SigningCertificateSHA256Digest(ctx context.Context, app *App) (string, bool) {
	info := PackageInfoWithQuery(ctx, app, QuerySignatures)
	if info == nil || len(info.Signatures) == 0 {
		return "", false
	}
	sum := sha256.Sum256(info.Signatures[0])
	return fmt.Sprintf("%X", sum[:]), true
}

func lookup(ctx context.Context, app *App) (*Info, error) {
	if app == nil || app.registry == nil {
		return nil, fmt.Errorf("app context is not configured")
	}
	info, err := app.registry.PackageInfo(ctx, app.packageName, 0)
	if err != nil {
		return nil, fmt.Errorf("lookup package %q: %w", app.packageName, err)
	}
	return info, nil
}
