// Package config loads the YAML configuration for the banner and the
// required-course filter options.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rcliao/course-selector/internal/courselist"
	"github.com/rcliao/course-selector/internal/dismissal"
)

// Config is the top-level configuration file.
type Config struct {
	Banner  BannerConfig `yaml:"banner"`
	Filters FilterConfig `yaml:"filters"`
}

// BannerConfig describes the version announcement banner.
type BannerConfig struct {
	StorageKey      string `yaml:"storage_key"`
	Version         string `yaml:"version"`
	DismissDuration string `yaml:"dismiss_duration"` // Go duration, e.g. "24h"
	TargetURL       string `yaml:"target_url"`
}

// FilterConfig lists the options offered by the required-course filters.
type FilterConfig struct {
	Departments []string            `yaml:"departments"`
	Grades      []courselist.Option `yaml:"grades"`
	Classes     []string            `yaml:"classes"`
}

// Default returns the built-in configuration.
func Default() *Config {
	d := dismissal.DefaultConfig()
	return &Config{
		Banner: BannerConfig{
			StorageKey:      d.StorageKey,
			Version:         d.Version,
			DismissDuration: d.DismissDuration.String(),
			TargetURL:       d.TargetURL,
		},
		Filters: FilterConfig{
			Departments: []string{"資工系", "電機系", "機電系", "企管系", "外文系", "中文系"},
			Grades: []courselist.Option{
				{Value: "1", Label: "一年級"},
				{Value: "2", Label: "二年級"},
				{Value: "3", Label: "三年級"},
				{Value: "4", Label: "四年級"},
			},
			Classes: []string{"不分班", "甲班", "乙班", "全英班"},
		},
	}
}

// Load reads the config file at path on top of the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if _, err := cfg.Dismissal(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Dismissal converts the banner section into a dismissal policy config.
func (c *Config) Dismissal() (dismissal.Config, error) {
	d, err := time.ParseDuration(c.Banner.DismissDuration)
	if err != nil {
		return dismissal.Config{}, fmt.Errorf("invalid banner.dismiss_duration %q: %w", c.Banner.DismissDuration, err)
	}
	if d <= 0 {
		return dismissal.Config{}, fmt.Errorf("banner.dismiss_duration must be positive, got %s", d)
	}
	if c.Banner.StorageKey == "" {
		return dismissal.Config{}, fmt.Errorf("banner.storage_key is required")
	}
	if c.Banner.Version == "" {
		return dismissal.Config{}, fmt.Errorf("banner.version is required")
	}

	return dismissal.Config{
		StorageKey:      c.Banner.StorageKey,
		Version:         c.Banner.Version,
		DismissDuration: d,
		TargetURL:       c.Banner.TargetURL,
	}, nil
}

// Options converts the filter section into view options.
func (c *Config) Options() courselist.Options {
	return courselist.Options{
		Departments: c.Filters.Departments,
		Grades:      c.Filters.Grades,
		Classes:     c.Filters.Classes,
	}
}
