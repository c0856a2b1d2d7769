// Package config provides the ProjectConfig struct and loader for
// .cfrscore.yaml project-level configuration files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dshills/cfrscore/internal/schema"
)

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultFile = ".cfrscore.yaml"

	DefaultProvider     = "anthropic"
	DefaultMaxTokens    = 2048
	DefaultTemperature  = 0.2
	DefaultTimeout      = 120
	DefaultContextBytes = 60000

	DefaultProfile = "cfr"
	DefaultFormat  = "json"

	DefaultHistoryDriver = "sqlite"
	// An empty DSN lets the history store pick the default for its driver.
	DefaultHistoryDSN = ""
)

// LLMConfig holds generator settings.
type LLMConfig struct {
	Provider     string  `yaml:"provider,omitempty"`
	Model        string  `yaml:"model,omitempty"`
	MaxTokens    int     `yaml:"max_tokens,omitempty"`
	Temperature  float64 `yaml:"temperature"`
	Timeout      int     `yaml:"timeout,omitempty"` // seconds
	ContextBytes int     `yaml:"context_bytes,omitempty"`
}

// OutputConfig holds rendering settings.
type OutputConfig struct {
	Format    string `yaml:"format,omitempty"`
	FailBelow string `yaml:"fail_below,omitempty"`
}

// HistoryConfig holds the evaluation history store settings.
type HistoryConfig struct {
	Save   bool   `yaml:"save"`
	Driver string `yaml:"driver,omitempty"`
	DSN    string `yaml:"dsn,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .cfrscore.yaml.
type ProjectConfig struct {
	Profile string        `yaml:"profile,omitempty"`
	LLM     LLMConfig     `yaml:"llm,omitempty"`
	Output  OutputConfig  `yaml:"output,omitempty"`
	History HistoryConfig `yaml:"history,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Profile: DefaultProfile,
		LLM: LLMConfig{
			Provider:     DefaultProvider,
			MaxTokens:    DefaultMaxTokens,
			Temperature:  DefaultTemperature,
			Timeout:      DefaultTimeout,
			ContextBytes: DefaultContextBytes,
		},
		Output: OutputConfig{
			Format: DefaultFormat,
		},
		History: HistoryConfig{
			Driver: DefaultHistoryDriver,
			DSN:    DefaultHistoryDSN,
		},
	}
}

// Load reads the config file at path over the defaults. An empty path means
// DefaultFile in the working directory, which may be absent; an explicitly
// named file must exist. Unknown keys are rejected.
func Load(path string) (*ProjectConfig, error) {
	cfg := New()
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *ProjectConfig) Validate() error {
	var errs []error
	if c.LLM.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("llm.temperature must be in [0, 2], got %v", c.LLM.Temperature))
	}
	if c.LLM.Timeout < 0 {
		errs = append(errs, fmt.Errorf("llm.timeout must not be negative, got %d", c.LLM.Timeout))
	}
	switch strings.ToLower(c.Output.Format) {
	case "json", "md", "markdown", "html", "text", "txt":
	default:
		errs = append(errs, fmt.Errorf("output.format %q is not one of json, md, html, text", c.Output.Format))
	}
	if c.Output.FailBelow != "" {
		if _, ok := schema.ParseRating(c.Output.FailBelow); !ok {
			errs = append(errs, fmt.Errorf("output.fail_below %q is not a rating", c.Output.FailBelow))
		}
	}
	switch c.History.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("history.driver %q is not sqlite or postgres", c.History.Driver))
	}
	return errors.Join(errs...)
}

// LoadEnv loads provider API keys from .env files. Variables already set in
// the environment win. Missing files are skipped.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: loading %s: %w", f, err)
		}
	}
	return nil
}
