// Package importer turns an ImportConfig into an ogr2ogr invocation and
// supervises the ogr2ogr process until it exits.
//
// The command is always executed as an argv array, never through a shell, so
// source paths and table names with spaces or shell metacharacters reach
// ogr2ogr untouched.
package importer

import (
	"os/exec"

	"pawgrate/cli/internal/config"
	perrors "pawgrate/cli/internal/errors"

	"github.com/kballard/go-shellquote"
)

// ToolName is the executable pawgrate drives.
const ToolName = "ogr2ogr"

// Layer creation options fixed for every import.
const (
	geometryColumn = "GEOMETRY_NAME=geom"
	primaryKey     = "FID=gid"
	spatialIndex   = "SPATIAL_INDEX=GIST"
)

// VerifyToolAvailable resolves ogr2ogr on PATH and returns its location.
func VerifyToolAvailable() (string, error) {
	path, err := exec.LookPath(ToolName)
	if err != nil {
		return "", perrors.Wrap(perrors.ToolMissing, ToolName+" not found in PATH. Make sure GDAL is installed", err)
	}
	return path, nil
}

// BuildCommand returns the ogr2ogr argv for cfg. The only failure is a mode
// outside append/overwrite, reported as a ConfigError.
func BuildCommand(cfg config.ImportConfig) ([]string, error) {
	mode, err := modeFlag(cfg.Mode)
	if err != nil {
		return nil, err
	}
	return []string{
		ToolName,
		"-f", "PostgreSQL",
		connectionString(cfg),
		cfg.Src,
		"-nln", cfg.Target(),
		"-lco", "SCHEMA=" + cfg.Schema,
		"-nlt", cfg.GeomType,
		"-lco", geometryColumn,
		"-lco", primaryKey,
		"-lco", spatialIndex,
		"-t_srs", "EPSG:" + cfg.SRID,
		mode,
	}, nil
}

// connectionString builds the PG: datasource. The password is never part of
// it; ogr2ogr picks it up from PGPASSWORD.
func connectionString(cfg config.ImportConfig) string {
	return "PG:host=" + cfg.Host +
		" dbname=" + cfg.DBName +
		" user=" + cfg.User +
		" port=" + cfg.Port
}

func modeFlag(mode config.Mode) (string, error) {
	switch mode {
	case config.ModeAppend:
		return "-append", nil
	case config.ModeOverwrite:
		return "-overwrite", nil
	}
	return "", perrors.Newf(perrors.ConfigError, "invalid mode: %s", mode)
}

// Quote renders command as a single shell-safe line for display.
func Quote(command []string) string {
	return shellquote.Join(command...)
}
