// Package cmd implements the CLI (Command Line Interface) of the application.
//
// stats - Generate ranked player statistics from a server log
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// BuildVersion is set at build time via ldflags
var BuildVersion = "master"

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "q3stats",
	Short: "Quake 3 / OpenArena server log statistics generator",
	Long: `q3stats converts a Quake 3 or OpenArena server console log into ranked,
per-player career statistics.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	setupCLI()

	if errExecute := rootCmd.Execute(); errExecute != nil {
		os.Exit(1)
	}
}

func setupCLI() {
	rootCmd.Version = BuildVersion
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/q3stats.yml)")
}
