// Package appinfo implements the registry inspection CLI.
//
// Subcommands:
//
//	self  print the host program's own package record
//	get   print a stored package record from a registry database
//	ping  check a registry server's gRPC health endpoint
package appinfo

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/louisbranch/appregistry/internal/pkginfo"
	platformgrpc "github.com/louisbranch/appregistry/internal/platform/grpc"
	"github.com/louisbranch/appregistry/internal/platform/timeouts"
	"github.com/louisbranch/appregistry/internal/registry/hostbuild"
	registrysqlite "github.com/louisbranch/appregistry/internal/storage/sqlite"
)

// Run dispatches a subcommand and writes its output to out.
func Run(ctx context.Context, args []string, out io.Writer) error {
	if out == nil {
		return errors.New("output is required")
	}
	if len(args) == 0 {
		return errors.New("usage: appinfo <self|get|ping> [flags]")
	}
	switch args[0] {
	case "self":
		return runSelf(ctx, args[1:], out)
	case "get":
		return runGet(ctx, args[1:], out)
	case "ping":
		return runPing(ctx, args[1:], out)
	default:
		return fmt.Errorf("unknown subcommand %q", args[0])
	}
}

func runSelf(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("appinfo self", flag.ContinueOnError)
	fs.SetOutput(out)
	asJSON := fs.Bool("json", false, "print the record as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	registry := hostbuild.New()
	app := registry.App()
	if app == nil {
		return errors.New("host build info is unavailable")
	}
	return printApp(ctx, app, out, *asJSON, false)
}

func runGet(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("appinfo get", flag.ContinueOnError)
	fs.SetOutput(out)
	dbPath := fs.String("db", "", "path to the registry database")
	asJSON := fs.Bool("json", false, "print the record as JSON")
	digestOnly := fs.Bool("digest", false, "print only the signing certificate digest")
	if err := fs.Parse(args); err != nil {
		return err
	}
	name := strings.TrimSpace(fs.Arg(0))
	if name == "" {
		return errors.New("usage: appinfo get -db <path> <package>")
	}
	if strings.TrimSpace(*dbPath) == "" {
		return errors.New("-db is required")
	}

	store, err := registrysqlite.Open(*dbPath)
	if err != nil {
		return fmt.Errorf("open registry database: %w", err)
	}
	defer store.Close()

	app := pkginfo.NewApp(store, name)
	if *digestOnly {
		digest, ok := pkginfo.SigningCertificateSHA256Digest(ctx, app)
		if !ok {
			return fmt.Errorf("package %q has no signing certificate digest", name)
		}
		_, err := fmt.Fprintln(out, digest)
		return err
	}
	return printApp(ctx, app, out, *asJSON, true)
}

func runPing(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("appinfo ping", flag.ContinueOnError)
	fs.SetOutput(out)
	addr := fs.String("addr", "localhost:8091", "registry gRPC address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	conn, err := platformgrpc.DialWithHealth(ctx, *addr, timeouts.GRPCDial, nil, platformgrpc.DefaultClientDialOptions()...)
	if err != nil {
		return fmt.Errorf("ping %s: %w", *addr, err)
	}
	defer conn.Close()

	_, err = fmt.Fprintf(out, "registry at %s is serving\n", *addr)
	return err
}

// printApp renders a package record through the accessor layer so the output
// reflects exactly what API consumers observe.
func printApp(ctx context.Context, app *pkginfo.App, out io.Writer, asJSON, withDigest bool) error {
	label, err := pkginfo.AppName(ctx, app)
	if err != nil {
		return err
	}
	targetSDK, err := pkginfo.TargetSDKVersion(ctx, app)
	if err != nil {
		return err
	}
	debuggable, err := pkginfo.IsDebugBuild(ctx, app)
	if err != nil {
		return err
	}
	versionCode, _ := pkginfo.VersionCode(ctx, app)
	versionName, _ := pkginfo.VersionName(ctx, app)
	digest := ""
	if withDigest {
		digest, _ = pkginfo.SigningCertificateSHA256Digest(ctx, app)
	}

	if asJSON {
		record := map[string]any{
			"package":      app.PackageName(),
			"label":        label,
			"version_code": versionCode,
			"version_name": versionName,
			"target_sdk":   targetSDK,
			"debuggable":   debuggable,
		}
		if digest != "" {
			record["certificate_digest"] = digest
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(record)
	}

	fmt.Fprintf(out, "package:      %s\n", app.PackageName())
	fmt.Fprintf(out, "label:        %s\n", label)
	fmt.Fprintf(out, "version:      %s (%d)\n", versionName, versionCode)
	fmt.Fprintf(out, "target sdk:   %d\n", targetSDK)
	fmt.Fprintf(out, "debuggable:   %t\n", debuggable)
	if digest != "" {
		fmt.Fprintf(out, "cert digest:  %s\n", digest)
	}
	return nil
}
