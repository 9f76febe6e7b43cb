// Package config loads the advisor's optional YAML defaults file. Values
// given on the command line always win over the file.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Provider  string   `yaml:"provider"`
	RulesFile string   `yaml:"rules_file"`
	HitsFile  string   `yaml:"hits_file"`
	DSN       string   `yaml:"dsn"`
	OutputDir string   `yaml:"output_dir"`
	Formats   []string `yaml:"formats"`
	Source    string   `yaml:"source"`
	Logging   Logging  `yaml:"logging"`
}

type Logging struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

func Default() *Config {
	return &Config{
		Provider:  "csv",
		OutputDir: ".",
		Formats:   []string{"csv"},
		Logging:   Logging{Level: "INFO"},
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected so
// a typo in the file fails loudly instead of silently using a default.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}
