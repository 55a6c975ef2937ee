// Package config resolves studylog settings from built-in defaults, an
// optional YAML file and STUDYLOG_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/studylog/internal/domain"
	"github.com/alexanderramin/studylog/internal/proof"
	"gopkg.in/yaml.v3"
)

// Config holds all configurable studylog settings.
type Config struct {
	DBPath        string `yaml:"db_path"`
	StateDir      string `yaml:"state_dir"`
	ReportDir     string `yaml:"report_dir"`
	Timezone      string `yaml:"timezone"` // IANA name or "Local"
	OverlapPolicy string `yaml:"overlap_policy"`
	MaxProofBytes int64  `yaml:"max_proof_bytes"`
	LogLevel      string `yaml:"log_level"`
	LogUseCases   bool   `yaml:"log_usecases"`
}

// ParseError is returned when a config file exists but is not valid YAML.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing config %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Defaults returns the settings used when nothing overrides them. Paths
// live under home/.studylog.
func Defaults(home string) Config {
	base := filepath.Join(home, ".studylog")
	return Config{
		DBPath:        filepath.Join(base, "studylog.db"),
		StateDir:      base,
		ReportDir:     ".",
		Timezone:      "Local",
		OverlapPolicy: string(domain.OverlapReject),
		MaxProofBytes: proof.DefaultMaxBytes,
		LogLevel:      "info",
	}
}

// Load resolves the effective configuration. The YAML file is
// $STUDYLOG_CONFIG when set, otherwise ~/.studylog/config.yaml; a missing
// default file is not an error.
func Load() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("finding home directory: %w", err)
	}
	cfg := Defaults(home)

	path := os.Getenv("STUDYLOG_CONFIG")
	explicit := path != ""
	if !explicit {
		path = filepath.Join(home, ".studylog", "config.yaml")
	}
	if err := cfg.mergeFile(path, explicit); err != nil {
		return Config{}, err
	}

	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// mergeFile overlays non-zero fields from the YAML file at path.
func (c *Config) mergeFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return &ParseError{Path: path, Err: err}
	}
	c.merge(file)
	return nil
}

func (c *Config) merge(o Config) {
	if o.DBPath != "" {
		c.DBPath = o.DBPath
	}
	if o.StateDir != "" {
		c.StateDir = o.StateDir
	}
	if o.ReportDir != "" {
		c.ReportDir = o.ReportDir
	}
	if o.Timezone != "" {
		c.Timezone = o.Timezone
	}
	if o.OverlapPolicy != "" {
		c.OverlapPolicy = o.OverlapPolicy
	}
	if o.MaxProofBytes > 0 {
		c.MaxProofBytes = o.MaxProofBytes
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.LogUseCases {
		c.LogUseCases = true
	}
}

// applyEnv reads STUDYLOG_* overrides. Unparseable numbers and booleans are
// ignored, keeping the earlier value.
func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("STUDYLOG_DB"); v != "" {
		c.DBPath = v
	}
	if v := getenv("STUDYLOG_STATE_DIR"); v != "" {
		c.StateDir = v
	}
	if v := getenv("STUDYLOG_REPORT_DIR"); v != "" {
		c.ReportDir = v
	}
	if v := getenv("STUDYLOG_TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := getenv("STUDYLOG_OVERLAP_POLICY"); v != "" {
		c.OverlapPolicy = v
	}
	if v := getenv("STUDYLOG_MAX_PROOF_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			c.MaxProofBytes = n
		}
	}
	if v := getenv("STUDYLOG_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("STUDYLOG_LOG_USECASES"); v != "" {
		c.LogUseCases, _ = strconv.ParseBool(v)
	}
}

// Validate checks enumerated and parseable fields.
func (c Config) Validate() error {
	if !domain.ValidOverlapPolicies[c.OverlapPolicy] {
		return fmt.Errorf("invalid overlap_policy %q (want reject or allow)", c.OverlapPolicy)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone. "Local" and "" mean the system zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Policy returns the configured overlap policy.
func (c Config) Policy() domain.OverlapPolicy {
	return domain.OverlapPolicy(c.OverlapPolicy)
}

// SlogLevel maps LogLevel onto a slog level.
func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return lvl, nil
}
