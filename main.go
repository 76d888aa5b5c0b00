// Command darsync prepares a directory tree for transfer to an HPC cluster.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/idelchi/darsync/internal/cli"
)

// version is set at build time with -ldflags.
//
//nolint:gochecknoglobals // Set by the linker
var version = "unknown - unofficial & generated by unknown"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := cli.New(version).Execute(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}
