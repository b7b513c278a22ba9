package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AnthonyMichaelTDM/mecomp/internal/config"
	"github.com/AnthonyMichaelTDM/mecomp/internal/daemonrun"
)

var (
	cfgDirFlag     string
	libraryDirFlag string
)

// runCmd represents the start command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the mecompd service",
	Long:  "Run the mecompd service",
	Run: func(cmd *cobra.Command, args []string) {
		if err := daemonrun.Run(Version, cfgDirFlag, libraryDirFlag); err != nil {
			fmt.Printf("mecompd cannot be run: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	runCmd.Flags().StringVar(&cfgDirFlag, "config-dir", config.CfgDir, "directory holding mecompd's config.toml")
	runCmd.Flags().StringVar(&libraryDirFlag, "library-dir", "/var/lib/mecomp", "directory holding the library database and queue.json")
	rootCmd.AddCommand(runCmd)
}
