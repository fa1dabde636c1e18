// Copyright (c) 2025 pawgrate
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pawgrate/cli/internal/config"
	"pawgrate/cli/internal/dbcheck"
	perrors "pawgrate/cli/internal/errors"
	"pawgrate/cli/internal/importer"
	"pawgrate/cli/internal/keychain"
	"pawgrate/cli/internal/logging"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// envPrefix namespaces the environment variables that can stand in for
// manual-mode flags (PAWGRATE_HOST, PAWGRATE_DBNAME, ...).
const envPrefix = "PAWGRATE"

var (
	importConfigPath string
	savePassword     bool

	manualEnv *viper.Viper
)

// importCmd groups the two ways of describing an import.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a geospatial file into PostGIS",
	Long: `Import a geospatial file into a PostgreSQL/PostGIS table with ogr2ogr.

Use "import file" to read the parameters from a YAML config, or
"import manual" to pass them as flags.`,
}

var importFileCmd = &cobra.Command{
	Use:   "file",
	Short: "Import using a YAML config file",
	Example: `  pawgrate import file --config roads.yaml
  pawgrate import file --config roads.yaml --save-password`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.Println("[*] Loading config file", importConfigPath)
		cfg, err := config.Load(importConfigPath)
		if err != nil {
			return err
		}
		return runImport(cmd.Context(), cfg)
	},
}

var importManualCmd = &cobra.Command{
	Use:   "manual",
	Short: "Import using command-line flags",
	Long: `Import using command-line flags.

Every flag can also be set through a PAWGRATE_<FLAG> environment variable
(for example PAWGRATE_HOST or PAWGRATE_PROMPT_PASSWORD) or a .env file in the
current directory. Flags given on the command line win.`,
	Example: `  pawgrate import manual --src roads.geojson --dbname gis --user postgres \
    --table roads --geomtype MULTILINESTRING --srid 4326 --prompt-password`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := manualConfig(manualEnv)
		if err != nil {
			return err
		}
		return runImport(cmd.Context(), cfg)
	},
}

// defineManualFlags registers the manual-mode flags on fs.
func defineManualFlags(fs *pflag.FlagSet) {
	fs.String("src", "", "Source file to import (required)")
	fs.String("dbname", "", "Destination database name (required)")
	fs.String("user", "", "Database user (required)")
	fs.String("table", "", "Destination table name (required)")
	fs.String("geomtype", "", "Geometry type passed to -nlt, e.g. MULTIPOLYGON (required)")
	fs.String("srid", "", "Target SRID, e.g. 4326 (required)")
	fs.String("host", config.DefaultHost, "Database host")
	fs.String("port", config.DefaultPort, "Database port")
	fs.String("schema", config.DefaultSchema, "Destination schema")
	fs.String("mode", string(config.DefaultMode), "Write mode: append or overwrite")
	fs.Bool("prompt-password", false, "Prompt for the database password")
	fs.Bool("use-keychain", false, "Read the database password from the OS keychain")
	fs.Bool("check-connection", false, "Verify the database connection and PostGIS before importing")
	fs.Duration("timeout", 0, "Stop ogr2ogr after this long, e.g. 30m (0 means no limit)")
	fs.Bool("dry-run", false, "Print the ogr2ogr command without running it")
}

// bindManualEnv returns a viper instance that resolves every flag in fs from,
// in order: the command line, PAWGRATE_* environment variables, the flag's
// default.
func bindManualEnv(fs *pflag.FlagSet) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(fs)
	return v
}

// manualConfig builds an ImportConfig from resolved manual-mode values.
func manualConfig(v *viper.Viper) (config.ImportConfig, error) {
	mode, err := config.ParseMode(v.GetString("mode"))
	if err != nil {
		return config.ImportConfig{}, err
	}
	cfg := config.ImportConfig{
		Src:             v.GetString("src"),
		DBName:          v.GetString("dbname"),
		User:            v.GetString("user"),
		Table:           v.GetString("table"),
		GeomType:        v.GetString("geomtype"),
		SRID:            v.GetString("srid"),
		Host:            v.GetString("host"),
		Port:            v.GetString("port"),
		Schema:          v.GetString("schema"),
		Mode:            mode,
		PromptPassword:  v.GetBool("prompt-password"),
		UseKeychain:     v.GetBool("use-keychain"),
		CheckConnection: v.GetBool("check-connection"),
		Timeout:         v.GetDuration("timeout"),
		DryRun:          v.GetBool("dry-run"),
	}
	// --host "" and friends fall back to the defaults.
	if cfg.Host == "" {
		cfg.Host = config.DefaultHost
	}
	if cfg.Port == "" {
		cfg.Port = config.DefaultPort
	}
	if cfg.Schema == "" {
		cfg.Schema = config.DefaultSchema
	}
	if err := cfg.Validate(); err != nil {
		return config.ImportConfig{}, err
	}
	return cfg, nil
}

// runImport drives one import and reports it in the [*]/[+]/[-] style.
func runImport(ctx context.Context, cfg config.ImportConfig) error {
	pterm.Println(importHeadline(cfg))

	secrets := newPasswordSource()
	r := &importer.Runner{
		Secrets: secrets,
		Progress: func() func() {
			return startProgress("[*] Running " + importer.ToolName)
		},
		Preflight: preflight,
		Started: func(command []string) {
			pterm.Println("[*] Executing command")
			pterm.Println("[+]", displayCommand(command))
		},
		Log: logger,
	}

	res, err := r.Run(ctx, cfg)
	if err != nil {
		if perrors.Is(err, perrors.ImportFailed) && len(res.Command) > 0 {
			pterm.Println()
			pterm.Println("[-]", displayCommand(res.Command))
		}
		return err
	}

	if cfg.DryRun {
		pterm.Println("[+]", displayCommand(res.Command))
		return nil
	}

	if out := strings.TrimSpace(res.Outcome.Stdout); out != "" {
		logger.Debug(importer.ToolName+" output", logger.Args("stdout", out))
	}
	// ogr2ogr reports non-fatal problems (skipped features, reprojection
	// warnings) on stderr even when it succeeds.
	if warn := strings.TrimSpace(res.Outcome.Stderr); warn != "" {
		logger.Warn(importer.ToolName+" reported warnings", logger.Args("stderr", logging.Mask(warn)))
	}
	pterm.Printf("[+] Import completed successfully in %s\n", res.Outcome.Duration.Round(time.Millisecond))

	if savePassword {
		storePrompted(cfg, secrets.prompted)
	}
	return nil
}

// importHeadline names the source and destination of an import. PostgreSQL
// has no database-qualified names, so the database is kept apart from the
// schema.table target.
func importHeadline(cfg config.ImportConfig) string {
	return fmt.Sprintf("[*] Importing %s into %s (%s)", cfg.Src, cfg.DBName, cfg.Target())
}

// storePrompted saves a prompted password for later --use-keychain runs. The
// import already succeeded, so failures here are only warnings.
func storePrompted(cfg config.ImportConfig, password string) {
	if password == "" {
		pterm.Println("[!] --save-password only applies together with --prompt-password / prompt_password")
		return
	}
	km, err := keychain.GetManager()
	if err == nil {
		err = km.SavePassword(cfg.SecretKey(), password)
	}
	if err != nil {
		logger.Warn("could not save password to keychain", logger.Args("error", err))
		return
	}
	pterm.Println("[+] Password saved to keychain for", cfg.SecretKey())
}

// preflight checks the destination database before ogr2ogr is spawned.
func preflight(ctx context.Context, cfg config.ImportConfig, password string) error {
	spinner, _ := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start("[*] Verifying database connection")
	report, err := dbcheck.Check(ctx, cfg, password)
	if spinner != nil {
		_ = spinner.Stop()
	}
	if err != nil {
		return err
	}
	pterm.Printf("[+] Connected to PostgreSQL %s (PostGIS %s)\n", report.ServerVersion, report.PostGISVersion)
	return nil
}

// displayCommand renders argv shell-quoted for copy/paste, with any secret
// masked.
func displayCommand(command []string) string {
	return logging.Mask(importer.Quote(command))
}

func init() {
	importFileCmd.Flags().StringVarP(&importConfigPath, "config", "c", "", "Path to the YAML config file")

	defineManualFlags(importManualCmd.Flags())
	manualEnv = bindManualEnv(importManualCmd.Flags())

	importCmd.PersistentFlags().BoolVar(&savePassword, "save-password", false, "Store the prompted password in the OS keychain after a successful import")

	importCmd.AddCommand(importFileCmd)
	importCmd.AddCommand(importManualCmd)
	rootCmd.AddCommand(importCmd)
}
