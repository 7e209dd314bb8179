// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"

	"flightframe/cmd"
	"flightframe/pkg/build"
)

// main is the entry point for the frame-alignment tooling. The tools are
// one-shot commands; long-lived behaviour (the WebSocket monitor) is
// handled inside the identify command itself.
func main() {
	// Populate build information injected via ldflags.
	build.Initialize()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", build.GetBuildFlags().Name, err)
		os.Exit(1)
	}
}
