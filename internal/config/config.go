// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the base name of both the global and the project config file.
const FileName = "snek.yml"

// Config holds all configuration values for snek.
type Config struct {
	MainBranch     string            `mapstructure:"main_branch" yaml:"main_branch"`
	Remote         string            `mapstructure:"remote" yaml:"remote"`
	Wrapper        string            `mapstructure:"wrapper" yaml:"wrapper"`
	LineLength     int               `mapstructure:"line_length" yaml:"line_length"`
	MinCoverage    int               `mapstructure:"min_coverage" yaml:"min_coverage"`
	PythonVersions []string          `mapstructure:"python_versions" yaml:"python_versions,omitempty"`
	DocsGenerator  string            `mapstructure:"docs_generator" yaml:"docs_generator,omitempty"`
	PackageIndex   string            `mapstructure:"package_index" yaml:"package_index,omitempty"`
	BumpCommand    string            `mapstructure:"bump_command" yaml:"bump_command"`
	StateDir       string            `mapstructure:"state_dir" yaml:"state_dir"`
	LogLevel       string            `mapstructure:"log_level" yaml:"log_level"`
	LogFile        string            `mapstructure:"log_file" yaml:"log_file,omitempty"`
	DefaultContext map[string]string `mapstructure:"default_context" yaml:"default_context,omitempty"`
}

// Defaults returns the configuration used when no file or env var sets a key.
func Defaults() *Config {
	return &Config{
		MainBranch:  "master",
		Remote:      "origin",
		Wrapper:     "poetry run",
		LineLength:  79,
		MinCoverage: 0,
		BumpCommand: "poetry run bump2version",
		StateDir:    ".snek",
		LogLevel:    "info",
	}
}

// envKeys lists every key bound to a SNEK_ environment variable.
var envKeys = []string{
	"main_branch",
	"remote",
	"wrapper",
	"line_length",
	"min_coverage",
	"python_versions",
	"docs_generator",
	"package_index",
	"bump_command",
	"state_dir",
	"log_level",
	"log_file",
}

// Load loads configuration for the project in dir with full precedence:
// ENV vars > project config > XDG global config > defaults.
// CLI flags are applied by the caller on the returned value.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	d := Defaults()
	v.SetDefault("main_branch", d.MainBranch)
	v.SetDefault("remote", d.Remote)
	v.SetDefault("wrapper", d.Wrapper)
	v.SetDefault("line_length", d.LineLength)
	v.SetDefault("min_coverage", d.MinCoverage)
	v.SetDefault("python_versions", []string{})
	v.SetDefault("docs_generator", "")
	v.SetDefault("package_index", "")
	v.SetDefault("bump_command", d.BumpCommand)
	v.SetDefault("state_dir", d.StateDir)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", "")

	v.SetEnvPrefix("SNEK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key, "SNEK_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	if globalPath := GlobalPath(); fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	if projectPath := ProjectPath(dir); fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects values no task could work with.
func (c *Config) Validate() error {
	if c.MainBranch == "" {
		return fmt.Errorf("main_branch must not be empty")
	}
	if c.LineLength <= 0 {
		return fmt.Errorf("line_length must be > 0 (got %d)", c.LineLength)
	}
	if c.MinCoverage < 0 || c.MinCoverage > 100 {
		return fmt.Errorf("min_coverage must be between 0 and 100 (got %d)", c.MinCoverage)
	}
	switch strings.ToLower(c.DocsGenerator) {
	case "", "mkdocs", "sphinx":
	default:
		return fmt.Errorf("docs_generator must be mkdocs or sphinx (got %q)", c.DocsGenerator)
	}
	return nil
}

// Exists returns true if any config file exists (global or project).
func Exists(dir string) bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath(dir))
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/snek/snek.yml or $XDG_CONFIG_HOME/snek/snek.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "snek", FileName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "snek", FileName)
}

// ProjectPath returns the project-local config path inside dir.
func ProjectPath(dir string) string {
	return filepath.Join(dir, FileName)
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return write(path, cfg)
}

// WriteProject writes the config to the project-local location in dir.
func WriteProject(dir string, cfg *Config) error {
	return write(ProjectPath(dir), cfg)
}

func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
