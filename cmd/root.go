// Copyright (c) 2025 pawgrate
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for pawgrate, a friendly
// ogr2ogr wrapper for PostGIS. It implements the import and password
// subcommands using the Cobra CLI framework, and owns everything the user sees:
// the banner, progress indicator, echoed commands and error reporting.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	perrors "pawgrate/cli/internal/errors"
	"pawgrate/cli/internal/logging"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	showVersion bool
	verbose     bool
	noBanner    bool

	logger = logging.NewLogger(os.Stderr, false)
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "pawgrate",
	Short:         "pawgrate: friendly ogr2ogr wrapper for PostGIS",
	Long:          `pawgrate builds ogr2ogr commands from a YAML config file or command-line flags and runs them to import geospatial files into PostgreSQL/PostGIS.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env is the normal case.
		_ = godotenv.Load()
		logger = logging.NewLogger(os.Stderr, verbose)
		if !noBanner {
			pterm.Println(puppy())
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("pawgrate %s\n", Version)
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application and exits with the code that matches the
// failure kind, or the exit code of ogr2ogr when the import itself failed.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "[!]", logging.PresentError("", err))
		os.Exit(perrors.ExitCodeOf(err))
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show pawgrate version information")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose debug output")
	rootCmd.PersistentFlags().BoolVar(&noBanner, "no-banner", false, "Do not print the banner")
}

func puppy() string {
	return `
    / \__
(    @\___
/         O
/   (_____/
/_____/ U
`
}
