package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/probelab/tether/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "tether",
	Short: "tether is an on-target debug-command daemon",
	Long: `tether runs debug sessions against hardware targets: it accepts textual
debug/configuration commands over telnet, HTTP, or the local console and
executes them on a dedicated session loop.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the daemon configuration file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// loadConfig reads the --config file, falling back to defaults when the
// flag is unset.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
