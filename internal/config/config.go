// Package config loads the formatter configuration.
//
// Settings come from, in increasing precedence: built-in defaults, the YAML
// file (~/.dotsible/callback.yaml or an explicit path) and DOTSIBLE_*
// environment variables.
package config

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	dserrors "github.com/dotsible/dotsible/internal/errors"
)

// Config holds the formatter settings.
type Config struct {
	LogDir string `yaml:"log_dir"`
	Color  string `yaml:"color"`

	// Source is the config file that was read, empty when none was found.
	Source string `yaml:"-"`
}

// Load reads the configuration on fs from path, or from
// <home>/.dotsible/callback.yaml when path is empty. A missing default file
// yields defaults; a missing explicit file is an error.
func Load(fs afero.Fs, home, path string) (*Config, error) {
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigType("yaml")
	v.SetDefault("log_dir", DefaultLogDir(home))
	v.SetDefault("color", DefaultColor)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigFileName)
		v.AddConfigPath(DefaultLogDir(home))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, dserrors.Config("failed to read config file", err)
		}
	}

	settings := map[string]interface{}{
		"log_dir": v.GetString("log_dir"),
		"color":   normalizeColor(v.GetString("color")),
	}
	// Unknown keys in the file are rejected by the schema.
	for _, key := range v.AllKeys() {
		if _, ok := settings[key]; !ok {
			settings[key] = v.Get(key)
		}
	}
	if err := validateSettings(settings); err != nil {
		return nil, dserrors.Config("invalid configuration", err)
	}

	return &Config{
		LogDir: expandHome(settings["log_dir"].(string), home),
		Color:  settings["color"].(string),
		Source: v.ConfigFileUsed(),
	}, nil
}

// UseColor resolves the colour mode against whether output is a terminal.
func (c *Config) UseColor(terminal bool) bool {
	switch c.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return terminal
	}
}

// YAML returns the effective configuration as a YAML document.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// expandHome resolves a leading "~/" against home.
func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
