// Package config memuat konfigurasi sysreport: default, file yaml,
// lalu environment SYSREPORT_*. Flag CLI diterapkan pemanggil sesudahnya.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"corp/sysreport/vuln"
)

const (
	DefaultReportPath = "system_report.html"
	DefaultLogPath    = "sysreport.log"
	DefaultFileName   = "sysreport.yaml"

	FormatHTML = "html"
	FormatJSON = "json"

	envPrefix = "SYSREPORT_"
)

// Config konfigurasi runtime.
type Config struct {
	ReportPath string        `yaml:"report_path"`
	Format     string        `yaml:"format"`
	LogPath    string        `yaml:"log_path"`
	Verbose    bool          `yaml:"verbose"`
	Workers    int           `yaml:"workers"`
	Timeout    time.Duration `yaml:"timeout"` // per collector
	Progress   bool          `yaml:"progress"`
	Feed       Feed          `yaml:"feed"`
}

// Feed konfigurasi sumber data kerentanan.
type Feed struct {
	URLTemplate string        `yaml:"url_template"`
	DocumentID  string        `yaml:"document_id"` // kosong = ID bulan berjalan
	Timeout     time.Duration `yaml:"timeout"`
}

// Default mengembalikan konfigurasi bawaan.
func Default() Config {
	return Config{
		ReportPath: DefaultReportPath,
		Format:     FormatHTML,
		LogPath:    DefaultLogPath,
		Workers:    1,
		Timeout:    60 * time.Second,
		Progress:   true,
		Feed: Feed{
			URLTemplate: vuln.DefaultURLTemplate,
			Timeout:     vuln.DefaultTimeout,
		},
	}
}

// Load: default -> file yaml (kalau ada) -> environment -> validasi.
// path kosong berarti tanpa file; file yang disebut tapi tidak ada = error.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	var errs []error

	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = b
		}
	}
	integer := func(name string, dst *int) {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			i, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = i
		}
	}
	duration := func(name string, dst *time.Duration) {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = d
		}
	}

	str("REPORT_PATH", &cfg.ReportPath)
	str("FORMAT", &cfg.Format)
	str("LOG_PATH", &cfg.LogPath)
	boolean("VERBOSE", &cfg.Verbose)
	integer("WORKERS", &cfg.Workers)
	duration("TIMEOUT", &cfg.Timeout)
	boolean("PROGRESS", &cfg.Progress)
	str("FEED_URL", &cfg.Feed.URLTemplate)
	str("DOCUMENT_ID", &cfg.Feed.DocumentID)
	duration("FEED_TIMEOUT", &cfg.Feed.Timeout)

	return errors.Join(errs...)
}

// Validate memeriksa nilai yang tidak masuk akal.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.ReportPath) == "" {
		errs = append(errs, errors.New("report_path must not be empty"))
	}
	switch c.Format {
	case FormatHTML, FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("format %q: want %s or %s", c.Format, FormatHTML, FormatJSON))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be >= 1, got %d", c.Workers))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if c.Feed.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("feed.timeout must be positive, got %s", c.Feed.Timeout))
	}
	if !strings.Contains(c.Feed.URLTemplate, "{document_id}") {
		errs = append(errs, fmt.Errorf("feed.url_template %q has no {document_id} placeholder", c.Feed.URLTemplate))
	}
	return errors.Join(errs...)
}

// Exists: file config ada dan bukan direktori
func Exists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
