package config

import (
	"fmt"
	"os"
)

// Exitf reports a fatal error on stderr and terminates the process with
// exit code 1. Used by the registry CLI mains.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
