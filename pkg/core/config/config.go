// File: config.go
// Title: Configuration Loading
// Description: Typed configuration for cstkit hosts, loaded from TOML or YAML
//              (detected by file extension), with defaults, environment
//              expansion and validation.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial configuration model

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	ckerror "github.com/msto63/cstkit/pkg/core/error"
	cklog "github.com/msto63/cstkit/pkg/core/log"
)

// EnvConfigPath names the environment variable holding the config file path
const EnvConfigPath = "CSTKIT_CONFIG"

// Format represents a configuration file format
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// String returns the string representation of the format
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// Config holds the complete application configuration
type Config struct {
	General  GeneralConfig  `toml:"general" yaml:"general"`
	Language LanguageConfig `toml:"language" yaml:"language"`
	History  HistoryConfig  `toml:"history" yaml:"history"`
	Server   ServerConfig   `toml:"server" yaml:"server"`
	REPL     REPLConfig     `toml:"repl" yaml:"repl"`
}

// GeneralConfig holds logging settings
type GeneralConfig struct {
	LogLevel  string `toml:"log_level" yaml:"log_level"`
	LogFormat string `toml:"log_format" yaml:"log_format"`
}

// LanguageConfig holds the illustrative language's vocabulary and limits
type LanguageConfig struct {
	EntryRule      string         `toml:"entry_rule" yaml:"entry_rule"`
	Numbers        map[string]int `toml:"numbers" yaml:"numbers"`
	DigitLiterals  *bool          `toml:"digit_literals" yaml:"digit_literals"`
	MaxInputLength int            `toml:"max_input_length" yaml:"max_input_length"`
}

// DigitsEnabled reports whether decimal digit literals are part of the vocabulary
func (l LanguageConfig) DigitsEnabled() bool {
	return l.DigitLiterals == nil || *l.DigitLiterals
}

// HistoryConfig holds the evaluation history store settings
type HistoryConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Path    string `toml:"path" yaml:"path"`
}

// ServerConfig holds the RPC service settings
type ServerConfig struct {
	Host             string `toml:"host" yaml:"host"`
	Port             int    `toml:"port" yaml:"port"`
	EnableReflection bool   `toml:"enable_reflection" yaml:"enable_reflection"`
}

// Address returns host:port
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// REPLConfig holds interactive shell settings
type REPLConfig struct {
	Prompt      string `toml:"prompt" yaml:"prompt"`
	HistorySize int    `toml:"history_size" yaml:"history_size"`
}

// DefaultNumbers is the number-word vocabulary used when none is configured
func DefaultNumbers() map[string]int {
	words := []string{
		"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten",
		"eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen", "seventeen",
		"eighteen", "nineteen", "twenty",
	}
	numbers := make(map[string]int, len(words))
	for i, w := range words {
		numbers[w] = i
	}
	return numbers
}

// Default returns a configuration with all defaults applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML or YAML file
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, ckerror.Wrapf(err, "read config %s", path).WithCode(ckerror.CodeConfig)
	}

	cfg, err := LoadFromBytes(content, DetectFormat(path))
	if err != nil {
		return nil, ckerror.Wrapf(err, "load config %s", path).WithCode(ckerror.CodeConfig)
	}
	return cfg, nil
}

// LoadFromBytes parses configuration content in the given format
func LoadFromBytes(content []byte, format Format) (*Config, error) {
	var cfg Config
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return nil, ckerror.Wrap(err, "failed to parse YAML").WithCode(ckerror.CodeConfig)
		}
	default:
		if _, err := toml.Decode(string(content), &cfg); err != nil {
			return nil, ckerror.Wrap(err, "failed to parse TOML").WithCode(ckerror.CodeConfig)
		}
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads the file named by CSTKIT_CONFIG, then the default search
// paths; without any file the defaults are returned.
func LoadFromEnv() (*Config, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return Load(path)
	}

	for _, p := range defaultPaths() {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}
	return Default(), nil
}

func defaultPaths() []string {
	paths := []string{"./cstkit.toml", "./cstkit.yaml", "./configs/cstkit.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "cstkit", "config.toml"))
	}
	return paths
}

// DetectFormat picks the format from the file extension; TOML is the fallback
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

func (c *Config) applyDefaults() {
	if c.General.LogLevel == "" {
		c.General.LogLevel = "warn"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "text"
	}

	if c.Language.EntryRule == "" {
		c.Language.EntryRule = "expression"
	}
	if len(c.Language.Numbers) == 0 {
		c.Language.Numbers = DefaultNumbers()
	}
	if c.Language.MaxInputLength == 0 {
		c.Language.MaxInputLength = 4096
	}

	if c.History.Path == "" {
		c.History.Path = "./data/history.db"
	}

	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 9310
	}

	if c.REPL.Prompt == "" {
		c.REPL.Prompt = "» "
	}
	if c.REPL.HistorySize == 0 {
		c.REPL.HistorySize = 100
	}
}

func (c *Config) expandEnvVars() {
	c.History.Path = os.ExpandEnv(c.History.Path)
}

// Validate checks value ranges and vocabulary words
func (c *Config) Validate() error {
	if _, err := cklog.ParseLevel(c.General.LogLevel); err != nil {
		return ckerror.Wrap(err, "general.log_level").WithCode(ckerror.CodeConfig)
	}
	if _, err := cklog.ParseFormat(c.General.LogFormat); err != nil {
		return ckerror.Wrap(err, "general.log_format").WithCode(ckerror.CodeConfig)
	}
	if c.Language.MaxInputLength < 0 {
		return ckerror.Newf(ckerror.CodeConfig, "language.max_input_length must not be negative, got %d", c.Language.MaxInputLength)
	}
	for word, value := range c.Language.Numbers {
		if !isWord(word) {
			return ckerror.Newf(ckerror.CodeConfig, "language.numbers: %q is not a lowercase word", word)
		}
		if value < 0 {
			return ckerror.Newf(ckerror.CodeConfig, "language.numbers: %q has negative value %d", word, value)
		}
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return ckerror.Newf(ckerror.CodeConfig, "server.port out of range: %d", c.Server.Port)
	}
	if c.REPL.HistorySize < 0 {
		return ckerror.Newf(ckerror.CodeConfig, "repl.history_size must not be negative, got %d", c.REPL.HistorySize)
	}
	return nil
}

// Logger builds the logger described by the general section
func (c *Config) Logger(name string) *cklog.Logger {
	level, _ := cklog.ParseLevel(c.General.LogLevel)
	format, _ := cklog.ParseFormat(c.General.LogFormat)
	return cklog.NewWithConfig(cklog.Config{Level: level, Format: format, Name: name})
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
