// Package config loads the failreport CLI configuration from .failreport.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/xgx-io/failreport"
)

// FileName is the configuration file looked up in the working directory and
// in the user configuration directory.
const FileName = ".failreport.yaml"

// Config is the CLI configuration.
type Config struct {
	Mode           string `yaml:"mode"`
	LogDir         string `yaml:"log_dir,omitempty"`
	Assertions     bool   `yaml:"assertions"`
	Bail           bool   `yaml:"bail"`
	ServerSoftware string `yaml:"server_software,omitempty"`
	// Environment attaches the process environment to stored XML reports.
	Environment bool `yaml:"environment"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Mode:       failreport.ModeConsole.String(),
		Assertions: true,
	}
}

// Load reads the configuration at path. An empty path searches FileName in
// the working directory, then in the user configuration directory; when
// neither exists the defaults are returned. An explicit path must exist.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = findConfigPath()
		if path == "" {
			return Default(), nil
		}
	}

	// #nosec G304 -- path is either user-supplied via --config or a fixed lookup location
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML onto the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c Config) Validate() error {
	if _, err := failreport.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("mode: %w", err)
	}
	if c.Bail && !c.Assertions {
		return errors.New("bail requires assertions")
	}
	return nil
}

// ReportMode returns the parsed Mode. Call Validate first.
func (c Config) ReportMode() failreport.Mode {
	m, _ := failreport.ParseMode(c.Mode)
	return m
}

func findConfigPath() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(dir, "failreport", FileName)
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}
