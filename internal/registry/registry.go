// Package registry is the explicit, non-reflective registration API for
// modules, initializers, and analyzers. It doubles as both the
// ServiceContainer and ClassCatalog collaborator interfaces since this
// module's assembly is explicit rather than reflective.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/forgepages/pipeline/internal/pipeline"
	pipelineerr "github.com/forgepages/pipeline/pkg/errors"
)

// ModuleFactory builds a Module instance from a declarative config map
// (the decoded body of one YAML module entry).
type ModuleFactory func(config map[string]interface{}) (pipeline.Module, error)

// Initializer runs once at engine construction, after its declared
// dependencies have run successfully.
type Initializer struct {
	Name         string
	Dependencies []string
	Run          func(c *Registry) error
}

// Analyzer processes an AnalyzerResult stream; registered analyzers are
// addressable by name from EngineConfig.Analyzers ("name=level" entries).
type Analyzer func(result pipeline.AnalyzerResult)

// DependencyPolicy controls how a broken initializer dependency is
// handled during Validate.
type DependencyPolicy int

const (
	// PolicyWarn disables only the affected initializers and continues.
	PolicyWarn DependencyPolicy = iota
	// PolicyStrict fails Validate on the first broken dependency or cycle.
	PolicyStrict
)

// Registry is the ServiceContainer/ClassCatalog implementation: modules
// are looked up by registered type name, analyzers by name, and
// initializers run once in dependency order.
type Registry struct {
	mu           sync.RWMutex
	factories    map[string]ModuleFactory
	initializers map[string]*Initializer
	analyzers    map[string]Analyzer
	graph        *dependencyGraph
	disabled     map[string]bool
	policy       DependencyPolicy
}

// New constructs an empty registry with the given dependency policy.
func New(policy DependencyPolicy) *Registry {
	return &Registry{
		factories:    make(map[string]ModuleFactory),
		initializers: make(map[string]*Initializer),
		analyzers:    make(map[string]Analyzer),
		graph:        newDependencyGraph(),
		disabled:     make(map[string]bool),
		policy:       policy,
	}
}

// RegisterModule registers a module factory under a type name, the name
// a declarative pipeline document refers to it by.
func (r *Registry) RegisterModule(typeName string, factory ModuleFactory) error {
	if factory == nil {
		return pipelineerr.ConfigError("module factory is nil", map[string]interface{}{"type": typeName})
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[typeName]; exists {
		return pipelineerr.ConfigError("module type already registered", map[string]interface{}{"type": typeName})
	}
	r.factories[typeName] = factory
	return nil
}

// BuildModule constructs a module instance of the given registered type.
func (r *Registry) BuildModule(typeName string, config map[string]interface{}) (pipeline.Module, error) {
	r.mu.RLock()
	factory, ok := r.factories[typeName]
	r.mu.RUnlock()
	if !ok {
		return nil, pipelineerr.ConfigError("unknown module type", map[string]interface{}{"type": typeName})
	}
	return factory(config)
}

// RegisterInitializer adds an initializer with its dependency edges.
// Dependencies must themselves be registered (by name) before Validate
// runs, though registration order does not matter.
func (r *Registry) RegisterInitializer(init Initializer) error {
	if init.Name == "" {
		return pipelineerr.ConfigError("initializer must have a name", nil)
	}
	if init.Run == nil {
		return pipelineerr.ConfigError("initializer has no Run function", map[string]interface{}{"name": init.Name})
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.initializers[init.Name]; exists {
		return pipelineerr.ConfigError("initializer already registered", map[string]interface{}{"name": init.Name})
	}
	stored := init
	r.initializers[init.Name] = &stored
	r.graph.addNode(init.Name)
	for _, dep := range init.Dependencies {
		r.graph.addEdge(init.Name, dep)
	}
	return nil
}

// RegisterAnalyzer adds an analyzer under a name addressable from
// EngineConfig.Analyzers.
func (r *Registry) RegisterAnalyzer(name string, analyzer Analyzer) error {
	if analyzer == nil {
		return pipelineerr.ConfigError("analyzer is nil", map[string]interface{}{"name": name})
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.analyzers[name]; exists {
		return pipelineerr.ConfigError("analyzer already registered", map[string]interface{}{"name": name})
	}
	r.analyzers[name] = analyzer
	return nil
}

// Analyzer looks up a registered analyzer by name.
func (r *Registry) Analyzer(name string) (Analyzer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.analyzers[name]
	return a, ok
}

// ModuleTypes lists registered module type names in sorted order.
func (r *Registry) ModuleTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for name := range r.factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Validate checks the initializer dependency graph for missing
// dependencies and cycles, applying the configured DependencyPolicy.
// Under PolicyWarn, affected initializers are disabled (skipped by
// RunInitializers) rather than aborting the whole registry.
func (r *Registry) Validate() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.disabled = make(map[string]bool)

	for name, init := range r.initializers {
		for _, dep := range init.Dependencies {
			if _, ok := r.initializers[dep]; !ok {
				err := pipelineerr.ConfigError("initializer has unresolved dependency", map[string]interface{}{
					"initializer": name, "dependency": dep,
				})
				if r.policy == PolicyStrict {
					return err
				}
				r.disabled[name] = true
			}
		}
	}

	if cycle := r.graph.detectCycle(); len(cycle) > 0 {
		err := pipelineerr.New(pipelineerr.CodeCycle, "circular initializer dependency").
			WithContext(map[string]interface{}{"cycle": cycle})
		if r.policy == PolicyStrict {
			return err
		}
		for _, name := range cycle {
			r.disabled[name] = true
		}
	}

	return nil
}

// Disabled reports initializer names disabled by the last Validate call.
func (r *Registry) Disabled() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.disabled))
	for name := range r.disabled {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// RunInitializers runs every non-disabled initializer exactly once, in
// dependency order.
func (r *Registry) RunInitializers() error {
	r.mu.RLock()
	order, cycle := r.graph.topoSort()
	for _, name := range cycle {
		if !r.disabled[name] {
			r.mu.RUnlock()
			return pipelineerr.New(pipelineerr.CodeCycle, "circular initializer dependency").
				WithContext(map[string]interface{}{"cycle": cycle})
		}
	}
	type target struct {
		name string
		init *Initializer
	}
	var targets []target
	for _, name := range order {
		if r.disabled[name] {
			continue
		}
		init, ok := r.initializers[name]
		if !ok {
			continue
		}
		targets = append(targets, target{name: name, init: init})
	}
	r.mu.RUnlock()

	for _, t := range targets {
		if err := t.init.Run(r); err != nil {
			return fmt.Errorf("initializer %q: %w", t.name, err)
		}
	}
	return nil
}
