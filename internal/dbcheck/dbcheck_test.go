// Copyright (c) 2025 pawgrate
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dbcheck

import (
	"context"
	"net"
	"os"
	"testing"

	"pawgrate/cli/internal/config"
	perrors "pawgrate/cli/internal/errors"

	"github.com/jackc/pgx/v5"
)

func baseConfig() config.ImportConfig {
	cfg := config.Defaults()
	cfg.Src = "/tmp/a.shp"
	cfg.DBName = "pawx"
	cfg.User = "u"
	cfg.Table = "t"
	cfg.GeomType = "PROMOTE_TO_MULTI"
	cfg.SRID = "26912"
	return cfg
}

func TestConnString(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*config.ImportConfig)
		password string
		want     string
	}{
		{
			name: "defaults without password",
			want: "host=localhost port=5432 user=u dbname=pawx",
		},
		{
			name:     "password is quoted when needed",
			password: `it's a \secret`,
			want:     `host=localhost port=5432 user=u dbname=pawx password='it\'s a \\secret'`,
		},
		{
			name:   "database name with spaces",
			mutate: func(c *config.ImportConfig) { c.DBName = "my db" },
			want:   "host=localhost port=5432 user=u dbname='my db'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			if got := ConnString(cfg, tt.password); got != tt.want {
				t.Errorf("ConnString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConnStringParsesWithPgx(t *testing.T) {
	cfg := baseConfig()
	cfg.DBName = "my db"
	parsed, err := pgx.ParseConfig(ConnString(cfg, `it's a \secret`))
	if err != nil {
		t.Fatalf("ParseConfig() returned error: %v", err)
	}
	if parsed.Database != "my db" || parsed.Password != `it's a \secret` || parsed.Port != 5432 {
		t.Fatalf("parsed config = %+v", parsed)
	}
}

func TestCheckInvalidPort(t *testing.T) {
	cfg := baseConfig()
	cfg.Port = "not-a-port"
	_, err := Check(context.Background(), cfg, "")
	if !perrors.Is(err, perrors.ConfigError) {
		t.Fatalf("Check() = %v, want ConfigError", err)
	}
}

func TestCheckUnreachable(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	_, port, _ := net.SplitHostPort(l.Addr().String())
	l.Close()

	cfg := baseConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = port
	_, err = Check(context.Background(), cfg, "pw")
	if !perrors.Is(err, perrors.PreflightFailed) {
		t.Fatalf("Check() = %v, want PreflightFailed", err)
	}
}

// TestCheckLive runs against a real PostGIS database when one is configured,
// e.g. PAWGRATE_TEST_PGHOST=localhost PAWGRATE_TEST_PGUSER=postgres.
func TestCheckLive(t *testing.T) {
	host := os.Getenv("PAWGRATE_TEST_PGHOST")
	if host == "" {
		t.Skip("PAWGRATE_TEST_PGHOST not set")
	}
	cfg := baseConfig()
	cfg.Host = host
	cfg.User = os.Getenv("PAWGRATE_TEST_PGUSER")
	cfg.DBName = os.Getenv("PAWGRATE_TEST_PGDATABASE")
	if p := os.Getenv("PAWGRATE_TEST_PGPORT"); p != "" {
		cfg.Port = p
	}

	report, err := Check(context.Background(), cfg, os.Getenv("PAWGRATE_TEST_PGPASSWORD"))
	if err != nil {
		t.Fatalf("Check() returned error: %v", err)
	}
	if report.PostGISVersion == "" {
		t.Fatal("Check() returned an empty PostGIS version")
	}
}
