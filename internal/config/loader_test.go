package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	perrors "pawgrate/cli/internal/errors"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "src: /tmp/a.shp\n"+
		"dbname: pawx\n"+
		"table: t\n"+
		"geomtype: PROMOTE_TO_MULTI\n"+
		"srid: '26912'\n"+
		"user: postgres\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "/tmp/a.shp", cfg.Src)
	require.Equal(t, "pawx", cfg.DBName)
	require.Equal(t, "t", cfg.Table)
	require.Equal(t, "26912", cfg.SRID)
	require.Equal(t, DefaultHost, cfg.Host)
	require.Equal(t, DefaultPort, cfg.Port)
	require.Equal(t, DefaultSchema, cfg.Schema)
	require.Equal(t, ModeAppend, cfg.Mode)
	require.False(t, cfg.DryRun)
	require.False(t, cfg.PromptPassword)
	require.Zero(t, cfg.Timeout)
}

func TestLoadNumericScalarsAndOptionalFields(t *testing.T) {
	path := writeConfig(t, `
src: "/data/roads file.geojson"
dbname: gis
user: loader
table: roads
geomtype: MULTILINESTRING
srid: 4326
host: db.internal
port: 6543
schema: staging
mode: overwrite
dry_run: true
check_connection: true
timeout: 45m
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "/data/roads file.geojson", cfg.Src)
	require.Equal(t, "4326", cfg.SRID)
	require.Equal(t, "6543", cfg.Port)
	require.Equal(t, "db.internal", cfg.Host)
	require.Equal(t, "staging.roads", cfg.Target())
	require.Equal(t, ModeOverwrite, cfg.Mode)
	require.True(t, cfg.DryRun)
	require.True(t, cfg.CheckConnection)
	require.Equal(t, 45*time.Minute, cfg.Timeout)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantMsg string
	}{
		{
			name:    "no path",
			path:    func(t *testing.T) string { return "" },
			wantMsg: "config file was not provided",
		},
		{
			name:    "missing file",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.yml") },
			wantMsg: "could not find config file",
		},
		{
			name:    "invalid yaml",
			path:    func(t *testing.T) string { return writeConfig(t, "src: [unterminated\n") },
			wantMsg: "invalid yaml",
		},
		{
			name: "unknown key",
			path: func(t *testing.T) string {
				return writeConfig(t, "src: a.shp\ndbname: d\nuser: u\ntable: t\ngeomtype: POINT\nsrid: 4326\ncolour: blue\n")
			},
			wantMsg: "colour",
		},
		{
			name: "invalid mode",
			path: func(t *testing.T) string {
				return writeConfig(t, "src: a.shp\ndbname: d\nuser: u\ntable: t\ngeomtype: POINT\nsrid: 4326\nmode: upsert\n")
			},
			wantMsg: `invalid mode: "upsert"`,
		},
		{
			name: "mode is case sensitive",
			path: func(t *testing.T) string {
				return writeConfig(t, "src: a.shp\ndbname: d\nuser: u\ntable: t\ngeomtype: POINT\nsrid: 4326\nmode: OVERWRITE\n")
			},
			wantMsg: `invalid mode: "OVERWRITE"`,
		},
		{
			name: "second document",
			path: func(t *testing.T) string {
				return writeConfig(t, "src: a.shp\ndbname: d\nuser: u\ntable: t\ngeomtype: POINT\nsrid: 4326\n---\nsrc: b.shp\n")
			},
			wantMsg: "more than one yaml document",
		},
		{
			name:    "missing required fields",
			path:    func(t *testing.T) string { return writeConfig(t, "src: a.shp\n") },
			wantMsg: "dbname, user, table, geomtype, srid",
		},
		{
			name:    "empty document",
			path:    func(t *testing.T) string { return writeConfig(t, "") },
			wantMsg: "missing required field(s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t))
			require.Error(t, err)
			require.True(t, perrors.Is(err, perrors.ConfigError), "want ConfigError, got %v", err)
			require.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		raw     string
		want    Mode
		wantErr bool
	}{
		{raw: "", want: ModeAppend},
		{raw: "append", want: ModeAppend},
		{raw: "overwrite", want: ModeOverwrite},
		{raw: "Overwrite", wantErr: true},
		{raw: "APPEND", wantErr: true},
		{raw: " append ", wantErr: true},
		{raw: "nope", wantErr: true},
		{raw: "replace", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.raw)
		if tt.wantErr {
			if err == nil || !perrors.Is(err, perrors.ConfigError) {
				t.Fatalf("ParseMode(%q) expected ConfigError, got %v", tt.raw, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseMode(%q) returned error: %v", tt.raw, err)
		}
		if got != tt.want {
			t.Fatalf("ParseMode(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestValidateNegativeTimeout(t *testing.T) {
	cfg := Defaults()
	cfg.Src, cfg.DBName, cfg.User, cfg.Table, cfg.GeomType, cfg.SRID = "a.shp", "d", "u", "t", "POINT", "4326"
	cfg.Timeout = -time.Second

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "timeout") {
		t.Fatalf("Validate() = %v, want timeout error", err)
	}
}

func TestSecretKey(t *testing.T) {
	cfg := Defaults()
	cfg.User, cfg.DBName = "loader", "gis"
	if got := cfg.SecretKey(); got != "loader@localhost:5432/gis" {
		t.Fatalf("SecretKey() = %q", got)
	}
}
