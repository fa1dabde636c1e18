// Copyright (c) 2025 pawgrate
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dbcheck verifies that the destination database of an import is
// reachable and ready for ogr2ogr before the import is started. It connects
// with the same coordinates and password ogr2ogr will use.
package dbcheck

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"pawgrate/cli/internal/config"
	perrors "pawgrate/cli/internal/errors"

	"github.com/jackc/pgx/v5"
)

// DefaultTimeout bounds the whole check.
const DefaultTimeout = 5 * time.Second

// Report describes a database that passed the check.
type Report struct {
	ServerVersion  string
	PostGISVersion string
}

// ConnString renders cfg (and password, when non-empty) as a libpq
// keyword/value connection string.
func ConnString(cfg config.ImportConfig, password string) string {
	pairs := []string{
		"host=" + quoteValue(cfg.Host),
		"port=" + quoteValue(cfg.Port),
		"user=" + quoteValue(cfg.User),
		"dbname=" + quoteValue(cfg.DBName),
	}
	if password != "" {
		pairs = append(pairs, "password="+quoteValue(password))
	}
	return strings.Join(pairs, " ")
}

// quoteValue quotes a keyword/value parameter as libpq expects: single quotes
// around the value, with backslashes and single quotes escaped.
func quoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

// Check connects to the destination database, confirms the PostGIS extension
// is installed and that the target schema exists. Failures are reported as
// PreflightFailed.
func Check(ctx context.Context, cfg config.ImportConfig, password string) (Report, error) {
	if _, err := strconv.ParseUint(cfg.Port, 10, 16); err != nil {
		return Report{}, perrors.Newf(perrors.ConfigError, "invalid port: %s", cfg.Port)
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	connCfg, err := pgx.ParseConfig(ConnString(cfg, password))
	if err != nil {
		return Report{}, perrors.Wrap(perrors.ConfigError, "invalid connection settings", err)
	}
	connCfg.ConnectTimeout = DefaultTimeout

	conn, err := pgx.ConnectConfig(ctx, connCfg)
	if err != nil {
		return Report{}, perrors.Wrap(perrors.PreflightFailed, "could not connect to "+cfg.SecretKey(), err)
	}
	defer conn.Close(context.Background())

	if err := conn.Ping(ctx); err != nil {
		return Report{}, perrors.Wrap(perrors.PreflightFailed, "database did not answer ping", err)
	}

	report := Report{ServerVersion: conn.PgConn().ParameterStatus("server_version")}

	err = conn.QueryRow(ctx, `SELECT extversion FROM pg_extension WHERE extname = 'postgis'`).Scan(&report.PostGISVersion)
	if errors.Is(err, pgx.ErrNoRows) {
		return Report{}, perrors.Newf(perrors.PreflightFailed, "the postgis extension is not installed in database %s", cfg.DBName)
	}
	if err != nil {
		return Report{}, perrors.Wrap(perrors.PreflightFailed, "could not query installed extensions", err)
	}

	var schemaExists bool
	if err := conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM pg_namespace WHERE nspname = $1)`, cfg.Schema).Scan(&schemaExists); err != nil {
		return Report{}, perrors.Wrap(perrors.PreflightFailed, "could not look up schema "+cfg.Schema, err)
	}
	if !schemaExists {
		return Report{}, perrors.Newf(perrors.PreflightFailed, "schema %s does not exist in database %s", cfg.Schema, cfg.DBName)
	}

	return report, nil
}
