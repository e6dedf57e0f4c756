// Package main is the entry point for the comfyrun CLI.
//
// comfyrun provisions and manages ComfyUI workloads on RunPod GPU
// instances. The serve command runs the lifecycle daemon with its HTTP API
// and event stream; the remaining commands talk to a running daemon.
//
// Commands: serve, pods, gpus, cost, version.
//
// For detailed usage information, run:
//
//	comfyrun --help
package main

import (
	"fmt"
	"os"

	"github.com/comfyrun/comfyrun/cmd/comfyrun/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
