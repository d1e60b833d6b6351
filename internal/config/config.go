// Package config loads converter settings from YAML, .env files and the
// environment.
//
// Precedence, lowest first: Default, the YAML file, environment variables,
// then command-line flags applied by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rezonia/nfe-converter/internal/catalog"
	"github.com/rezonia/nfe-converter/internal/model"
)

// DefaultFile is read when no config path is given and the file exists
const DefaultFile = "nfe-converter.yaml"

// Environment variables
const (
	EnvHeaderFields = "NFE_HEADER_FIELDS"
	EnvItemFields   = "NFE_ITEM_FIELDS"
	EnvFormat       = "NFE_FORMAT"
	EnvSummary      = "NFE_SUMMARY"
	EnvAddress      = "NFE_ADDRESS"
	EnvLogLevel     = "NFE_LOG_LEVEL"
)

// Config holds all converter settings
type Config struct {
	Fields FieldsConfig `yaml:"fields"`
	Output OutputConfig `yaml:"output"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// FieldsConfig holds the field selections by catalog id
type FieldsConfig struct {
	Header []string `yaml:"header"`
	Items  []string `yaml:"items"`
}

// OutputConfig controls formatting and the exported workbook
type OutputConfig struct {
	Format  bool   `yaml:"format"`
	Summary bool   `yaml:"summary"`
	Prefix  string `yaml:"prefix"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Address      string        `yaml:"address"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	CacheSize    int           `yaml:"cache_size"`
	MaxUploadMB  int64         `yaml:"max_upload_mb"`
	Debug        bool          `yaml:"debug"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the built-in configuration
func Default() *Config {
	cat := catalog.Default()
	return &Config{
		Fields: FieldsConfig{
			Header: cat.DefaultHeaderIDs(),
			Items:  cat.DefaultItemIDs(),
		},
		Output: OutputConfig{
			Format:  true,
			Summary: true,
			Prefix:  "NFe_Notas_Fiscais",
		},
		Server: ServerConfig{
			Address:      ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 5 * time.Minute,
			CacheSize:    32,
			MaxUploadMB:  64,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults, or DefaultFile when it exists in the working directory.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err != nil {
			return cfg, nil
		}
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads .env style files into the process environment.
// Missing files are ignored; existing variables are not overwritten.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// ApplyEnv overrides settings from NFE_* environment variables
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvHeaderFields); ok {
		c.Fields.Header = SplitList(v)
	}
	if v, ok := os.LookupEnv(EnvItemFields); ok {
		c.Fields.Items = SplitList(v)
	}
	if v, ok := os.LookupEnv(EnvFormat); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvFormat, err)
		}
		c.Output.Format = b
	}
	if v, ok := os.LookupEnv(EnvSummary); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSummary, err)
		}
		c.Output.Summary = b
	}
	if v, ok := os.LookupEnv(EnvAddress); ok && v != "" {
		c.Server.Address = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate checks the field selections against cat and the server limits
func (c *Config) Validate(cat *catalog.Catalog) error {
	if len(c.Fields.Header) == 0 {
		return model.ErrNoHeaderFields
	}

	var errs []error
	for _, id := range cat.UnknownHeader(c.Fields.Header) {
		errs = append(errs, model.NewValidationError("fields.header", id, "known_field", "unknown invoice field"))
	}
	for _, id := range cat.UnknownItems(c.Fields.Items) {
		errs = append(errs, model.NewValidationError("fields.items", id, "known_field", "unknown item field"))
	}
	if c.Server.CacheSize <= 0 {
		errs = append(errs, model.NewValidationError("server.cache_size", c.Server.CacheSize, "positive", "cache size must be positive"))
	}
	if c.Server.MaxUploadMB <= 0 {
		errs = append(errs, model.NewValidationError("server.max_upload_mb", c.Server.MaxUploadMB, "positive", "upload limit must be positive"))
	}
	return errors.Join(errs...)
}

// SplitList splits a comma separated list, dropping blanks
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
