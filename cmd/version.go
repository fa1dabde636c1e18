// Copyright (c) 2025 pawgrate
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os/exec"
	"strings"

	"pawgrate/cli/internal/importer"

	"github.com/spf13/cobra"
)

var (
	// Version holds the CLI version information.
	// This value is typically set at build time using -ldflags.
	Version = "0.0.0-dev"
)

// versionCmd prints the pawgrate version and, when available, the version of
// the ogr2ogr it would run.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show pawgrate and ogr2ogr versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("pawgrate %s\n", Version)

		path, err := importer.VerifyToolAvailable()
		if err != nil {
			fmt.Printf("%s not found in PATH\n", importer.ToolName)
			return nil
		}
		out, err := exec.CommandContext(cmd.Context(), path, "--version").Output()
		if err != nil {
			fmt.Printf("%s %s (version unknown)\n", importer.ToolName, path)
			return nil
		}
		fmt.Printf("%s %s\n", importer.ToolName, strings.TrimSpace(string(out)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
