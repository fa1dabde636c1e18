package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	perrors "pawgrate/cli/internal/errors"

	"gopkg.in/yaml.v3"
)

// scalar accepts any YAML scalar and keeps its literal text, so that
// `srid: 26912` and `srid: '26912'` load the same way.
type scalar string

func (s *scalar) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar value", n.Line)
	}
	*s = scalar(n.Value)
	return nil
}

// document mirrors the YAML keys accepted in a config file.
type document struct {
	Src      string `yaml:"src"`
	DBName   string `yaml:"dbname"`
	User     string `yaml:"user"`
	Table    string `yaml:"table"`
	GeomType string `yaml:"geomtype"`
	SRID     scalar `yaml:"srid"`

	Host   string `yaml:"host"`
	Port   scalar `yaml:"port"`
	Schema string `yaml:"schema"`
	Mode   string `yaml:"mode"`

	PromptPassword  bool          `yaml:"prompt_password"`
	DryRun          bool          `yaml:"dry_run"`
	UseKeychain     bool          `yaml:"use_keychain"`
	CheckConnection bool          `yaml:"check_connection"`
	Timeout         time.Duration `yaml:"timeout"`
}

// Load reads an ImportConfig from the YAML file at path. Keys left out of the
// document take their defaults. Every failure is a ConfigError.
func Load(path string) (ImportConfig, error) {
	if strings.TrimSpace(path) == "" {
		return ImportConfig{}, perrors.New(perrors.ConfigError, "config file was not provided")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ImportConfig{}, perrors.Newf(perrors.ConfigError, "could not find config file %s", path)
		}
		return ImportConfig{}, perrors.Wrap(perrors.ConfigError, "could not read config file "+path, err)
	}
	return Parse(data, path)
}

// Parse decodes a YAML document. name is used in error messages only.
func Parse(data []byte, name string) (ImportConfig, error) {
	d := Defaults()
	doc := document{
		Host:   d.Host,
		Port:   scalar(d.Port),
		Schema: d.Schema,
		Mode:   string(d.Mode),
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	err := dec.Decode(&doc)
	if err == nil {
		err = expectEnd(dec, name)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) {
			return ImportConfig{}, perrors.Newf(perrors.ConfigError, "invalid config %s: %s", name, strings.Join(typeErr.Errors, "; "))
		}
		if perrors.KindOf(err) != "" {
			return ImportConfig{}, err
		}
		return ImportConfig{}, perrors.Newf(perrors.ConfigError, "invalid yaml in %s: %v", name, err)
	}

	mode, err := ParseMode(doc.Mode)
	if err != nil {
		return ImportConfig{}, err
	}

	cfg := ImportConfig{
		Src:             doc.Src,
		DBName:          doc.DBName,
		User:            doc.User,
		Table:           doc.Table,
		GeomType:        doc.GeomType,
		SRID:            string(doc.SRID),
		Host:            orDefault(doc.Host, d.Host),
		Port:            orDefault(string(doc.Port), d.Port),
		Schema:          orDefault(doc.Schema, d.Schema),
		Mode:            mode,
		PromptPassword:  doc.PromptPassword,
		DryRun:          doc.DryRun,
		UseKeychain:     doc.UseKeychain,
		CheckConnection: doc.CheckConnection,
		Timeout:         doc.Timeout,
	}
	if err := cfg.Validate(); err != nil {
		return ImportConfig{}, err
	}
	return cfg, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// expectEnd fails when dec holds another document after the config. A bare
// trailing "---" is tolerated.
func expectEnd(dec *yaml.Decoder, name string) error {
	var extra yaml.Node
	err := dec.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(extra.Content) == 0 || extra.Content[0].Tag == "!!null" {
		return expectEnd(dec, name)
	}
	return perrors.Newf(perrors.ConfigError, "%s contains more than one yaml document; put each import in its own file", name)
}
