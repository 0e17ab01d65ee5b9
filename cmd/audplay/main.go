// SPDX-License-Identifier: EPL-2.0

// Command audplay drives the playback core from a desktop.
//
// Usage:
//
//	audplay [flags] <command> [args]
//
// Commands:
//
//	play     - play files gaplessly through the sound card
//	render   - run files through the core on simulated hardware into a WAV
//	config   - print the effective configuration
//	formats  - list the supported formats
package main

import (
	"fmt"
	"os"

	"github.com/ik5/audcore/cmd/audplay/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
