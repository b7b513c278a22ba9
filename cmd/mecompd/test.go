package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AnthonyMichaelTDM/mecomp/internal/config"
)

var testCfgDirFlag string

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Verify mecompd configuration",
	Long:  "Check the mecompd configuration file for completeness and consistency",
	Run: func(cmd *cobra.Command, args []string) {
		if err := config.Test(testCfgDirFlag); err != nil {
			fmt.Printf("%v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	testCmd.Flags().StringVar(&testCfgDirFlag, "config-dir", config.CfgDir, "directory holding mecompd's config.toml")
	rootCmd.AddCommand(testCmd)
}
