package main

import (
	"github.com/forgepages/pipeline/internal/config"
	"github.com/forgepages/pipeline/internal/modules"
	"github.com/forgepages/pipeline/internal/pipeline"
	"github.com/forgepages/pipeline/internal/registry"
)

// loadPipelineSet loads and validates a declarative pipeline document at
// documentPath, registering the reference module catalog and building
// the resulting pipeline.Set. A real host application would register its
// own content-generation modules here instead of (or alongside)
// modules.RegisterDefaults.
func loadPipelineSet(documentPath string) (*pipeline.Set, *registry.Registry, error) {
	doc, err := config.LoadPipelineDocument(documentPath)
	if err != nil {
		return nil, nil, err
	}

	reg := registry.New(registry.PolicyWarn)
	if err := modules.RegisterDefaults(reg); err != nil {
		return nil, nil, err
	}

	set, err := config.BuildPipelineSet(doc, reg)
	if err != nil {
		return nil, nil, err
	}

	return set, reg, nil
}

// loadEngineConfig loads an EngineConfig from path, or returns one with
// every field at its default (FailureLogLevel "error", as LoadEngineConfig
// fills it, and every other field zero) when path is empty.
func loadEngineConfig(path string) (*config.EngineConfig, error) {
	if path == "" {
		return &config.EngineConfig{FailureLogLevel: "error"}, nil
	}
	return config.LoadEngineConfig(path)
}
