// Package hostbuild exposes the currently running program as a read-only
// package registry.
//
// The record is assembled from the Go build metadata stamped into the
// binary: the main module path acts as the package identifier and the
// module version (or VCS revision) acts as the version name. Only the
// program's own package name resolves; lookups for any other name report
// storage.ErrNotFound.
package hostbuild

import (
	"context"
	"fmt"
	"path"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/louisbranch/appregistry/internal/pkginfo"
	"github.com/louisbranch/appregistry/internal/storage"
)

// Registry resolves the host program's own package record.
type Registry struct {
	info *pkginfo.Info
}

// New builds a Registry from the running binary's build metadata.
func New() *Registry {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return &Registry{}
	}
	return newFromBuildInfo(info)
}

func newFromBuildInfo(bi *debug.BuildInfo) *Registry {
	record := pkginfo.Info{
		PackageName: bi.Main.Path,
		Label:       path.Base(bi.Path),
		VersionName: bi.Main.Version,
		TargetSDK:   goMinorVersion(bi.GoVersion),
	}
	if record.PackageName == "" {
		record.PackageName = bi.Path
	}

	var revision string
	var modified bool
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		case "vcs.time":
			if stamp, err := time.Parse(time.RFC3339, setting.Value); err == nil {
				record.VersionCode = stamp.Unix()
				record.UpdatedAt = stamp.UTC()
			}
		case "-gcflags":
			if strings.Contains(setting.Value, "-N") {
				record.Flags |= pkginfo.FlagDebuggable
			}
		}
	}
	if modified {
		record.Flags |= pkginfo.FlagDebuggable
	}
	if record.VersionName == "" || record.VersionName == "(devel)" {
		if revision != "" {
			short := revision
			if len(short) > 12 {
				short = short[:12]
			}
			record.VersionName = short
		}
	}

	return &Registry{info: &record}
}

// PackageInfo implements pkginfo.Registry for the host program.
func (r *Registry) PackageInfo(ctx context.Context, name string, q pkginfo.Query) (*pkginfo.Info, error) {
	if r == nil || r.info == nil {
		return nil, fmt.Errorf("host build info is unavailable")
	}
	if name != r.info.PackageName {
		return nil, fmt.Errorf("package %q: %w", name, storage.ErrNotFound)
	}
	copied := *r.info
	return &copied, nil
}

// Self returns the host program's package record, or nil when the binary
// carries no build metadata.
func (r *Registry) Self() *pkginfo.Info {
	if r == nil || r.info == nil {
		return nil
	}
	copied := *r.info
	return &copied
}

// App returns an App bound to the host program's package.
func (r *Registry) App() *pkginfo.App {
	if r == nil || r.info == nil {
		return nil
	}
	return pkginfo.NewApp(r, r.info.PackageName)
}

// goMinorVersion extracts the minor number from a "go1.N[.M]" toolchain
// version, which stands in for the platform API level.
func goMinorVersion(version string) int32 {
	version = strings.TrimPrefix(version, "go")
	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		return 0
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	return int32(minor)
}
