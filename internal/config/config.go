// Package config holds the import parameters pawgrate hands to ogr2ogr.
// An ImportConfig is built once, either from command-line flags or from a YAML
// document, and is treated as read-only from then on.
package config

import (
	"strings"
	"time"

	perrors "pawgrate/cli/internal/errors"
)

// Mode selects how ogr2ogr writes into an existing table.
type Mode string

const (
	ModeAppend    Mode = "append"
	ModeOverwrite Mode = "overwrite"
)

// Defaults for optional fields.
const (
	DefaultHost   = "localhost"
	DefaultPort   = "5432"
	DefaultSchema = "public"
	DefaultMode   = ModeAppend
)

// ParseMode converts raw text into a Mode. An empty value selects DefaultMode;
// otherwise the text must be exactly "append" or "overwrite".
func ParseMode(raw string) (Mode, error) {
	switch Mode(raw) {
	case "":
		return DefaultMode, nil
	case ModeAppend:
		return ModeAppend, nil
	case ModeOverwrite:
		return ModeOverwrite, nil
	}
	return "", perrors.Newf(perrors.ConfigError, "invalid mode: %q (expected append or overwrite)", raw)
}

// ImportConfig is the full set of parameters for one import.
type ImportConfig struct {
	Src      string
	DBName   string
	User     string
	Table    string
	GeomType string
	SRID     string

	Host   string
	Port   string
	Schema string
	Mode   Mode

	PromptPassword  bool
	DryRun          bool
	UseKeychain     bool
	CheckConnection bool

	// Timeout bounds the ogr2ogr run. Zero means no limit.
	Timeout time.Duration
}

// Defaults returns an ImportConfig with every optional field set.
func Defaults() ImportConfig {
	return ImportConfig{
		Host:   DefaultHost,
		Port:   DefaultPort,
		Schema: DefaultSchema,
		Mode:   DefaultMode,
	}
}

// Validate checks that every required field is present. All missing fields
// are reported in a single ConfigError.
func (c ImportConfig) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"src", c.Src},
		{"dbname", c.DBName},
		{"user", c.User},
		{"table", c.Table},
		{"geomtype", c.GeomType},
		{"srid", c.SRID},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return perrors.Newf(perrors.ConfigError, "missing required field(s): %s", strings.Join(missing, ", "))
	}
	if c.Timeout < 0 {
		return perrors.Newf(perrors.ConfigError, "timeout must not be negative: %s", c.Timeout)
	}
	return nil
}

// Target returns the "<schema>.<table>" layer name.
func (c ImportConfig) Target() string {
	return c.Schema + "." + c.Table
}

// SecretKey identifies the database login a stored password belongs to.
func (c ImportConfig) SecretKey() string {
	return SecretKey(c.User, c.Host, c.Port, c.DBName)
}

// SecretKey formats user@host:port/dbname.
func SecretKey(user, host, port, dbname string) string {
	return user + "@" + host + ":" + port + "/" + dbname
}
