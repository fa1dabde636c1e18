// Copyright (c) 2025 pawgrate
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"
	"strings"

	"pawgrate/cli/internal/config"
	perrors "pawgrate/cli/internal/errors"
	"pawgrate/cli/internal/keychain"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var passwordLogin struct {
	host   string
	port   string
	user   string
	dbname string
}

// passwordCmd manages database passwords kept in the OS keychain for use with
// --use-keychain / use_keychain.
var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Manage database passwords stored in the OS keychain",
}

var passwordSetCmd = &cobra.Command{
	Use:     "set",
	Short:   "Store a database password in the OS keychain",
	Example: `  pawgrate password set --user postgres --dbname gis`,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := loginKey()
		if err != nil {
			return err
		}
		km, err := openKeychain()
		if err != nil {
			return err
		}
		pw, err := promptPassword(os.Stderr, os.Stdin)
		if err != nil {
			return err
		}
		if err := km.SavePassword(key, pw); err != nil {
			return perrors.Wrap(perrors.SecretUnavailable, "could not store password for "+key, err)
		}
		pterm.Println("[+] Password stored for", key)
		return nil
	},
}

var passwordClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove a stored database password",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := loginKey()
		if err != nil {
			return err
		}
		km, err := openKeychain()
		if err != nil {
			return err
		}
		if err := km.ClearPassword(key); err != nil {
			return perrors.Wrap(perrors.SecretUnavailable, "could not remove password for "+key, err)
		}
		pterm.Println("[+] Password removed for", key)
		return nil
	},
}

func loginKey() (string, error) {
	var missing []string
	if passwordLogin.user == "" {
		missing = append(missing, "--user")
	}
	if passwordLogin.dbname == "" {
		missing = append(missing, "--dbname")
	}
	if len(missing) > 0 {
		return "", perrors.Newf(perrors.ConfigError, "missing required flag(s): %s", strings.Join(missing, ", "))
	}
	return config.SecretKey(passwordLogin.user, passwordLogin.host, passwordLogin.port, passwordLogin.dbname), nil
}

func openKeychain() (*keychain.Manager, error) {
	km, err := keychain.GetManager()
	if err != nil {
		return nil, perrors.Wrap(perrors.SecretUnavailable, "secure storage is not available on this system", err)
	}
	return km, nil
}

func init() {
	pf := passwordCmd.PersistentFlags()
	pf.StringVar(&passwordLogin.host, "host", config.DefaultHost, "Database host")
	pf.StringVar(&passwordLogin.port, "port", config.DefaultPort, "Database port")
	pf.StringVar(&passwordLogin.user, "user", "", "Database user (required)")
	pf.StringVar(&passwordLogin.dbname, "dbname", "", "Database name (required)")

	passwordCmd.AddCommand(passwordSetCmd)
	passwordCmd.AddCommand(passwordClearCmd)
	rootCmd.AddCommand(passwordCmd)
}
