// Package config holds all configuration options for nilgo.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds every knob of the detection pipeline.
type Config struct {
	// Language selects the tokenizer variant and file extensions.
	Language string `koanf:"language"`

	// MinLine is the minimum function length in lines.
	MinLine int `koanf:"min_line"`

	// MinToken is the minimum token count after normalization.
	MinToken int `koanf:"min_token"`

	// GramSize is the N-gram width.
	GramSize int `koanf:"gram_size"`

	// PartitionCount is the number of inverted-index partitions. Larger
	// values lower peak memory at the cost of more passes over the query
	// list.
	PartitionCount int `koanf:"partition_count"`

	// FiltrationThreshold is the early-cutoff N-gram similarity percent.
	FiltrationThreshold int `koanf:"filtration_threshold"`

	// VerificationThreshold is the acceptance threshold for both the
	// fast-path N-gram similarity and the LCS similarity.
	VerificationThreshold int `koanf:"verification_threshold"`

	// Threads is the worker count for preprocessing and detection.
	Threads int `koanf:"threads"`

	// Output is the pair-file path.
	Output string `koanf:"output"`

	// CodeBlocks is the code-blocks file path.
	CodeBlocks string `koanf:"code_blocks"`

	// Gitignore toggles .gitignore handling during the source walk.
	Gitignore bool `koanf:"gitignore"`

	// Verbose enables the post-run similarity summary.
	Verbose bool `koanf:"verbose"`
}

// DefaultConfig returns a config with the documented defaults.
func DefaultConfig() *Config {
	return &Config{
		Language:              "java",
		MinLine:               6,
		MinToken:              50,
		GramSize:              5,
		PartitionCount:        10,
		FiltrationThreshold:   10,
		VerificationThreshold: 70,
		Threads:               runtime.NumCPU(),
		Output:                "clone_pairs.csv",
		CodeBlocks:            "code_blocks.csv",
		Gitignore:             true,
	}
}

// Load loads configuration from a file, layered over the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault looks for .nilgo.{toml,yaml,yml,json} in the working
// directory and loads the first match, falling back to the defaults.
func LoadOrDefault() *Config {
	for _, name := range []string{".nilgo.toml", ".nilgo.yaml", ".nilgo.yml", ".nilgo.json"} {
		if _, err := os.Stat(name); err == nil {
			if cfg, err := Load(name); err == nil {
				return cfg
			}
		}
	}
	return DefaultConfig()
}

// Validate checks option sanity. A non-nil error is a configuration error
// the caller surfaces with exit code 1.
func (c *Config) Validate() error {
	switch c.Language {
	case "java", "c", "cpp", "csharp", "python", "kotlin":
	default:
		return fmt.Errorf("unknown language: %s", c.Language)
	}
	if c.MinLine < 1 {
		return fmt.Errorf("min_line must be >= 1, got %d", c.MinLine)
	}
	if c.MinToken < 1 {
		return fmt.Errorf("min_token must be >= 1, got %d", c.MinToken)
	}
	if c.GramSize < 1 {
		return fmt.Errorf("gram_size must be >= 1, got %d", c.GramSize)
	}
	if c.PartitionCount < 1 {
		return fmt.Errorf("partition_count must be >= 1, got %d", c.PartitionCount)
	}
	if c.FiltrationThreshold < 0 || c.FiltrationThreshold > 100 {
		return fmt.Errorf("filtration_threshold must be in [0,100], got %d", c.FiltrationThreshold)
	}
	if c.VerificationThreshold < 0 || c.VerificationThreshold > 100 {
		return fmt.Errorf("verification_threshold must be in [0,100], got %d", c.VerificationThreshold)
	}
	if c.Threads < 1 {
		return fmt.Errorf("threads must be >= 1, got %d", c.Threads)
	}
	return nil
}
