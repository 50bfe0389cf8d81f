// Package cmd contains the command line interface. All query logic lives
// in the query and scan packages; commands only wire sources, catalogs
// and rendering together.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/twistql/twistql/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "twistql",
	Short: "Query container image scan reports",
	Long: `Query package and vulnerability scan reports for container images,
either live from a Twistlock-style console or from a locally saved
snapshot, and project them into filtered, sorted tables.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(),
		"path to the console config file")
	rootCmd.AddCommand(imageCmd)
}
