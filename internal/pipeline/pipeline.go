package pipeline

import "strings"

// ExecutionPolicy selects whether a pipeline participates in a selection
// that does not name it explicitly.
type ExecutionPolicy int

const (
	// Default resolves to Manual if the pipeline is a Deployment pipeline,
	// else Normal.
	Default ExecutionPolicy = iota
	// Always-policy pipelines are included in every selection.
	Always
	// Manual pipelines run only when named explicitly (or pulled in via a
	// dependency edge).
	Manual
	// Normal pipelines are included whenever includeNormal is set.
	Normal
)

func (p ExecutionPolicy) String() string {
	switch p {
	case Always:
		return "Always"
	case Manual:
		return "Manual"
	case Normal:
		return "Normal"
	default:
		return "Default"
	}
}

// Pipeline is a named, user-declared sequence of modules partitioned into
// four phases, with dependency and scheduling metadata.
type Pipeline struct {
	Name        string
	Input       []Module
	Process     []Module
	PostProcess []Module
	Output      []Module

	// Dependencies is the set of pipeline names (case-insensitive) this
	// pipeline needs.
	Dependencies map[string]struct{}

	// Isolated pipelines may have no dependencies and no pipeline may
	// depend on them.
	Isolated bool

	// Deployment pipelines are gated behind all non-deployment pipelines'
	// Output phases.
	Deployment bool

	Policy ExecutionPolicy
}

// NewPipeline constructs a Pipeline with an initialized, empty dependency
// set.
func NewPipeline(name string) *Pipeline {
	return &Pipeline{Name: name, Dependencies: make(map[string]struct{})}
}

// DependsOn registers a dependency on another pipeline by name.
func (p *Pipeline) DependsOn(name string) *Pipeline {
	if p.Dependencies == nil {
		p.Dependencies = make(map[string]struct{})
	}
	p.Dependencies[NormalizeName(name)] = struct{}{}
	return p
}

// ModulesFor returns the module list for the given phase kind.
func (p *Pipeline) ModulesFor(kind PhaseKind) []Module {
	switch kind {
	case Input:
		return p.Input
	case Process:
		return p.Process
	case PostProcess:
		return p.PostProcess
	case Output:
		return p.Output
	default:
		return nil
	}
}

// EffectivePolicy resolves ExecutionPolicy Default into Manual or Normal
// based on the Deployment flag, per the data model invariant in spec.md §3.
func (p *Pipeline) EffectivePolicy() ExecutionPolicy {
	if p.Policy != Default {
		return p.Policy
	}
	if p.Deployment {
		return Manual
	}
	return Normal
}

// NormalizeName returns the case-insensitive comparison key for a pipeline
// name (pipeline names are unique under case-insensitive comparison).
func NormalizeName(name string) string {
	return strings.ToLower(name)
}
