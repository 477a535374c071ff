// Package main provides a one-shot utility for admin grant key generation.
//
// It emits the asymmetric keypair used to verify mutating registry requests.
package main

import (
	"os"

	"github.com/louisbranch/appregistry/internal/platform/config"
	"github.com/louisbranch/appregistry/internal/tools/grantkey"
)

func main() {
	if err := grantkey.Run(os.Stdout, nil); err != nil {
		config.Exitf("generate admin grant key: %v", err)
	}
}
