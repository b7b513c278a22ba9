// Command mecompd is the mecomp daemon: it indexes a music library into the
// graph store, extracts acoustic features, clusters songs into collections,
// evaluates dynamic-playlist queries, and drives the audio kernel over RPC.
// Argument parsing, shell completion, and log formatting beyond level
// selection are deliberately thin here (spec.md §1 "out of scope"); the
// substance lives in internal/.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set via -ldflags "-X main.Version=..." at release build time;
// it defaults to "dev" for local builds, mirroring muserv's root.go preamble.
var Version = "dev"

var preamble = `mecompd ` + Version + `

mecompd is a local music-library daemon: content-based song similarity,
automatic clustering, and dynamic playlists, driven over RPC by a CLI, a
TUI, and an MPRIS bridge.

mecompd comes with ABSOLUTELY NO WARRANTY. This is free software, and you
are welcome to redistribute it under certain conditions.`

var rootCmd = &cobra.Command{
	Use:     "mecompd",
	Short:   "mecomp music daemon",
	Long:    preamble,
	Version: Version,
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}
}

func main() {
	execute()
}
