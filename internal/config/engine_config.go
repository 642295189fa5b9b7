package config

import (
	"os"

	"gopkg.in/yaml.v3"

	pipelineerr "github.com/forgepages/pipeline/pkg/errors"
)

// EngineConfig is the top-level engine configuration document: the four
// recognized keys plus the ambient Parallelism/Serial knobs.
type EngineConfig struct {
	FailureLogLevel       string   `yaml:"failure_log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	CleanMode             string   `yaml:"clean_mode,omitempty" validate:"omitempty,oneof=none self full"`
	Analyzers             []string `yaml:"analyzers,omitempty"`
	UseStringContentFiles bool     `yaml:"use_string_content_files,omitempty"`
	Parallelism           int      `yaml:"parallelism,omitempty" validate:"omitempty,min=1,max=256"`
	Serial                bool     `yaml:"serial,omitempty"`
}

// LoadEngineConfig loads and validates an EngineConfig document from disk.
func LoadEngineConfig(path string) (*EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pipelineerr.Wrap(pipelineerr.CodeConfig, "failed to read engine config", err).
			WithContext(map[string]interface{}{"path": path})
	}

	var cfg EngineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, pipelineerr.Wrap(pipelineerr.CodeConfig, "failed to parse engine config", err).
			WithContext(map[string]interface{}{"path": path})
	}

	if cfg.FailureLogLevel == "" {
		cfg.FailureLogLevel = "error"
	}

	if err := GetValidator().Struct(&cfg); err != nil {
		return nil, pipelineerr.Wrap(pipelineerr.CodeValidation, "engine config failed validation", err).
			WithContext(map[string]interface{}{"path": path})
	}

	return &cfg, nil
}
