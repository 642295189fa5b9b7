// Package graph compiles a pipeline.Set into a topologically sorted phase
// array: a two-pass-plus-sort algorithm (per-pipeline DFS, post-process
// cross-link pass, deployment input gate pass, final topological sort),
// grounded on the teacher's Kahn's-algorithm DAG builder and its DFS-based
// cycle detector.
package graph

import (
	"sort"

	"github.com/forgepages/pipeline/internal/pipeline"
	pipelineerr "github.com/forgepages/pipeline/pkg/errors"
)

type visitState int

const (
	unvisited visitState = iota
	visiting
	done
)

type phaseSet [4]*pipeline.Phase

// builder carries the working state of a single Build call.
type builder struct {
	set    *pipeline.Set
	phases map[string]*phaseSet // normalized pipeline name -> its four phases
	state  map[string]visitState
}

// Build compiles set into an array of phases in dependency order: every
// phase appears after all phases in its Dependencies.
func Build(set *pipeline.Set) ([]*pipeline.Phase, error) {
	b := &builder{
		set:    set,
		phases: make(map[string]*phaseSet),
		state:  make(map[string]visitState),
	}

	for _, p := range set.Ordered() {
		if err := b.visit(p); err != nil {
			return nil, err
		}
	}

	if err := b.crossLinkPostProcess(); err != nil {
		return nil, err
	}
	if err := b.gateDeploymentInputs(); err != nil {
		return nil, err
	}

	return b.topoSort()
}

// visit performs the per-pipeline DFS described in spec.md §4.4 step 1:
// isolated pipelines get a linear four-phase chain with no cross-pipeline
// edges; non-isolated pipelines recurse into their dependencies first,
// validating existence and the isolated/deployment constraints, then wire
// Process to depend on Input plus every dependency's Process.
func (b *builder) visit(p *pipeline.Pipeline) error {
	key := pipeline.NormalizeName(p.Name)

	switch b.state[key] {
	case done:
		return nil
	case visiting:
		return pipelineerr.New(pipelineerr.CodeCycle, "circular dependency detected").
			WithContext(map[string]interface{}{"pipeline": p.Name})
	}

	b.state[key] = visiting

	phases := b.newPhaseSet(p)
	phases[pipeline.Process].AddDependency(phases[pipeline.Input])

	if p.Isolated {
		if len(p.Dependencies) > 0 {
			return pipelineerr.ConfigError("isolated pipeline may not declare dependencies", map[string]interface{}{"pipeline": p.Name})
		}
	} else {
		depNames := sortedKeys(p.Dependencies)
		for _, depKey := range depNames {
			dep, ok := b.set.Get(depKey)
			if !ok {
				return pipelineerr.ConfigError("unknown pipeline dependency", map[string]interface{}{"pipeline": p.Name, "dependency": depKey})
			}
			if dep.Isolated {
				return pipelineerr.ConfigError("cannot depend on an isolated pipeline", map[string]interface{}{"pipeline": p.Name, "dependency": dep.Name})
			}
			if dep.Deployment && !p.Deployment {
				return pipelineerr.ConfigError("non-deployment pipeline cannot depend on a deployment pipeline", map[string]interface{}{"pipeline": p.Name, "dependency": dep.Name})
			}
			if err := b.visit(dep); err != nil {
				return err
			}
		}

		for _, depKey := range depNames {
			depPhases := b.phases[depKey]
			phases[pipeline.Process].AddDependency(depPhases[pipeline.Process])
		}
	}
	phases[pipeline.Process].Predecessor = phases[pipeline.Input]

	phases[pipeline.PostProcess].AddDependency(phases[pipeline.Process])
	phases[pipeline.PostProcess].Predecessor = phases[pipeline.Process]
	phases[pipeline.Output].AddDependency(phases[pipeline.PostProcess])
	phases[pipeline.Output].Predecessor = phases[pipeline.PostProcess]

	b.phases[key] = phases
	b.state[key] = done
	return nil
}

func (b *builder) newPhaseSet(p *pipeline.Pipeline) *phaseSet {
	ps := &phaseSet{}
	for _, kind := range [4]pipeline.PhaseKind{pipeline.Input, pipeline.Process, pipeline.PostProcess, pipeline.Output} {
		ps[kind] = &pipeline.Phase{Pipeline: p, Kind: kind, Modules: p.ModulesFor(kind)}
	}
	return ps
}

// crossLinkPostProcess is step 2: for every non-isolated pipeline P, append
// to P.PostProcess.Dependencies the Process phase of every other
// non-isolated pipeline sharing the same Deployment flag.
func (b *builder) crossLinkPostProcess() error {
	for _, pKey := range orderedKeysFromSet(b.set) {
		p, _ := b.set.Get(pKey)
		if p.Isolated {
			continue
		}
		pPhases := b.phases[pKey]
		for _, qKey := range orderedKeysFromSet(b.set) {
			if qKey == pKey {
				continue
			}
			q, _ := b.set.Get(qKey)
			if q.Isolated || q.Deployment != p.Deployment {
				continue
			}
			qPhases := b.phases[qKey]
			pPhases[pipeline.PostProcess].AddDependency(qPhases[pipeline.Process])
		}
	}
	return nil
}

// gateDeploymentInputs is step 3: for every Deployment pipeline P, append to
// P.Input.Dependencies the Output phase of every non-Deployment pipeline.
func (b *builder) gateDeploymentInputs() error {
	for _, pKey := range orderedKeysFromSet(b.set) {
		p, _ := b.set.Get(pKey)
		if !p.Deployment {
			continue
		}
		pPhases := b.phases[pKey]
		for _, qKey := range orderedKeysFromSet(b.set) {
			q, _ := b.set.Get(qKey)
			if q.Deployment {
				continue
			}
			qPhases := b.phases[qKey]
			pPhases[pipeline.Input].AddDependency(qPhases[pipeline.Output])
		}
	}
	return nil
}

// topoSort is step 4: DFS over all phases in pipeline-insertion order ×
// Input/Process/PostProcess/Output order, emitting each phase after its
// dependencies. The two cross-link passes only add edges from later
// phase-kinds to earlier phase-kinds of other pipelines, in a direction the
// per-pipeline chain never reverses, so no new cycle can arise here.
func (b *builder) topoSort() ([]*pipeline.Phase, error) {
	var order []*pipeline.Phase
	visitedPhase := make(map[*pipeline.Phase]bool)
	onStack := make(map[*pipeline.Phase]bool)

	var emit func(ph *pipeline.Phase) error
	emit = func(ph *pipeline.Phase) error {
		if visitedPhase[ph] {
			return nil
		}
		if onStack[ph] {
			return pipelineerr.New(pipelineerr.CodeCycle, "circular dependency detected in phase graph").
				WithContext(map[string]interface{}{"phase": ph.ID()})
		}
		onStack[ph] = true
		for _, dep := range ph.Dependencies {
			if err := emit(dep); err != nil {
				return err
			}
		}
		onStack[ph] = false
		visitedPhase[ph] = true
		order = append(order, ph)
		return nil
	}

	for _, p := range b.set.Ordered() {
		key := pipeline.NormalizeName(p.Name)
		phases := b.phases[key]
		for _, kind := range [4]pipeline.PhaseKind{pipeline.Input, pipeline.Process, pipeline.PostProcess, pipeline.Output} {
			if err := emit(phases[kind]); err != nil {
				return nil, err
			}
		}
	}

	return order, nil
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func orderedKeysFromSet(set *pipeline.Set) []string {
	// insertion order, not alphabetical — the builder tie-break rule.
	out := make([]string, 0, set.Len())
	for _, p := range set.Ordered() {
		out = append(out, pipeline.NormalizeName(p.Name))
	}
	return out
}
