// Package config loads the machine, lexer and logging settings of broas
// from YAML or TOML files.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/broas/asm"
	"github.com/sarchlab/broas/core"
	"github.com/sarchlab/broas/errs"
)

// Machine holds the execution limits.
type Machine struct {
	MemorySize      int    `yaml:"memory_size" toml:"memory_size"`
	MaxInstructions int    `yaml:"max_instructions" toml:"max_instructions"`
	MaxSteps        uint64 `yaml:"max_steps" toml:"max_steps"`
}

// Lexer holds the tokenizer limits.
type Lexer struct {
	MaxLineLength int `yaml:"max_line_length" toml:"max_line_length"`
	MaxTokens     int `yaml:"max_tokens" toml:"max_tokens"`
}

// Log selects the log level and the handler format (text or json).
type Log struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Config is the full configuration.
type Config struct {
	Machine Machine `yaml:"machine" toml:"machine"`
	Lexer   Lexer   `yaml:"lexer" toml:"lexer"`
	Log     Log     `yaml:"log" toml:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Machine: Machine{
			MemorySize:      core.DefaultMemorySize,
			MaxInstructions: asm.DefaultMaxInstructions,
		},
		Lexer: Lexer{
			MaxLineLength: asm.DefaultMaxLineLength,
			MaxTokens:     asm.DefaultMaxTokens,
		},
		Log: Log{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads path on top of the defaults. The format follows the file
// extension: .toml for TOML, .yaml or .yml for YAML.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errs.Config.Wrap(err, "read %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, errs.Config.Wrap(err, "parse %s", path)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errs.Config.Wrap(err, "parse %s", path)
		}
	default:
		return cfg, errs.Config.New("%s: unknown config format %q", path, filepath.Ext(path))
	}

	if err := cfg.Validate(); err != nil {
		return cfg, errs.Config.Wrap(err, "%s", path)
	}

	return cfg, nil
}

// Validate checks that the values are usable.
func (c Config) Validate() error {
	if c.Machine.MemorySize < 1 {
		return errs.Config.New("machine.memory_size must be positive, got %d", c.Machine.MemorySize)
	}
	if c.Machine.MaxInstructions < 0 {
		return errs.Config.New("machine.max_instructions must not be negative")
	}
	if c.Lexer.MaxLineLength < 0 || c.Lexer.MaxTokens < 0 {
		return errs.Config.New("lexer limits must not be negative")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return errs.Config.New("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// ParseLevel maps a level name to a slog level. "trace" selects the
// instruction trace level.
func ParseLevel(name string) (slog.Level, error) {
	if strings.EqualFold(name, "trace") {
		return core.LevelTrace, nil
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return 0, errs.Config.Wrap(err, "log level %q", name)
	}
	return l, nil
}

// AsmOptions returns the assembler limits.
func (c Config) AsmOptions() asm.Options {
	return asm.Options{
		MaxLineLength:   c.Lexer.MaxLineLength,
		MaxTokens:       c.Lexer.MaxTokens,
		MaxInstructions: c.Machine.MaxInstructions,
	}
}

// Apply carries the machine limits into a builder.
func (c Config) Apply(b core.Builder) core.Builder {
	return b.
		WithMemorySize(c.Machine.MemorySize).
		WithMaxSteps(c.Machine.MaxSteps)
}
