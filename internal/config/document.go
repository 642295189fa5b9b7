package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/forgepages/pipeline/internal/pipeline"
	"github.com/forgepages/pipeline/internal/registry"
	pipelineerr "github.com/forgepages/pipeline/pkg/errors"
)

// PipelineDocument is the declarative YAML form of a pipeline.Set: a list
// of named pipelines, each with its four phase module chains described by
// registered module type name plus a config map.
type PipelineDocument struct {
	Pipelines []PipelineDecl `yaml:"pipelines" validate:"required,min=1,dive"`
}

// PipelineDecl is one pipeline entry.
type PipelineDecl struct {
	Name        string       `yaml:"name" validate:"required,pipeline_name"`
	DependsOn   []string     `yaml:"depends_on,omitempty"`
	Isolated    bool         `yaml:"isolated,omitempty"`
	Deployment  bool         `yaml:"deployment,omitempty"`
	Policy      string       `yaml:"policy,omitempty" validate:"omitempty,oneof=always manual normal"`
	Input       []ModuleDecl `yaml:"input,omitempty" validate:"omitempty,dive"`
	Process     []ModuleDecl `yaml:"process,omitempty" validate:"omitempty,dive"`
	PostProcess []ModuleDecl `yaml:"post_process,omitempty" validate:"omitempty,dive"`
	Output      []ModuleDecl `yaml:"output,omitempty" validate:"omitempty,dive"`
}

// ModuleDecl names a registered module type plus its config map. The
// "type" key is reserved; every other key is passed through to
// registry.BuildModule's config map.
type ModuleDecl struct {
	Type   string                 `yaml:"type" validate:"required"`
	Config map[string]interface{} `yaml:"-"`
}

// UnmarshalYAML decodes the type field, then re-decodes the whole node
// into a generic map for Config, dropping the reserved "type" key. This
// mirrors the teacher's Step.UnmarshalYAML inline-decode-by-type pattern,
// generalized to a config map instead of a fixed set of typed structs
// since module configs are not known at compile time.
func (m *ModuleDecl) UnmarshalYAML(value *yaml.Node) error {
	type typeOnly struct {
		Type string `yaml:"type"`
	}
	var t typeOnly
	if err := value.Decode(&t); err != nil {
		return err
	}

	var raw map[string]interface{}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	delete(raw, "type")

	m.Type = t.Type
	m.Config = raw
	return nil
}

// LoadPipelineDocument loads and validates a declarative pipeline
// document from disk.
func LoadPipelineDocument(path string) (*PipelineDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pipelineerr.Wrap(pipelineerr.CodeConfig, "failed to read pipeline document", err).
			WithContext(map[string]interface{}{"path": path})
	}

	var doc PipelineDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, pipelineerr.Wrap(pipelineerr.CodeConfig, "failed to parse pipeline document", err).
			WithContext(map[string]interface{}{"path": path})
	}

	if err := GetValidator().Struct(&doc); err != nil {
		return nil, pipelineerr.Wrap(pipelineerr.CodeValidation, "pipeline document failed validation", err).
			WithContext(map[string]interface{}{"path": path})
	}

	return &doc, nil
}

// policyFromString maps a declared policy string onto pipeline.ExecutionPolicy.
func policyFromString(s string) pipeline.ExecutionPolicy {
	switch s {
	case "always":
		return pipeline.Always
	case "manual":
		return pipeline.Manual
	case "normal":
		return pipeline.Normal
	default:
		return pipeline.Default
	}
}

// BuildPipelineSet constructs a pipeline.Set from a declarative document,
// resolving every ModuleDecl against reg.
func BuildPipelineSet(doc *PipelineDocument, reg *registry.Registry) (*pipeline.Set, error) {
	set := pipeline.NewSet()

	for _, decl := range doc.Pipelines {
		p := pipeline.NewPipeline(decl.Name)
		p.Isolated = decl.Isolated
		p.Deployment = decl.Deployment
		p.Policy = policyFromString(decl.Policy)
		for _, dep := range decl.DependsOn {
			p.DependsOn(dep)
		}

		var err error
		if p.Input, err = buildModules(reg, decl.Input); err != nil {
			return nil, withPipelineContext(err, decl.Name, "input")
		}
		if p.Process, err = buildModules(reg, decl.Process); err != nil {
			return nil, withPipelineContext(err, decl.Name, "process")
		}
		if p.PostProcess, err = buildModules(reg, decl.PostProcess); err != nil {
			return nil, withPipelineContext(err, decl.Name, "post_process")
		}
		if p.Output, err = buildModules(reg, decl.Output); err != nil {
			return nil, withPipelineContext(err, decl.Name, "output")
		}

		if err := set.Add(p); err != nil {
			return nil, err
		}
	}

	return set, nil
}

func buildModules(reg *registry.Registry, decls []ModuleDecl) ([]pipeline.Module, error) {
	if len(decls) == 0 {
		return nil, nil
	}
	modules := make([]pipeline.Module, 0, len(decls))
	for _, decl := range decls {
		m, err := reg.BuildModule(decl.Type, decl.Config)
		if err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, nil
}

func withPipelineContext(err error, pipelineName, phase string) error {
	var perr *pipelineerr.Error
	if e, ok := err.(*pipelineerr.Error); ok {
		perr = e
	} else {
		perr = pipelineerr.Wrap(pipelineerr.CodeConfig, "failed to build module", err)
	}
	return perr.WithContext(map[string]interface{}{"pipeline": pipelineName, "phase": phase})
}
