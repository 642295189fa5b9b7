package engine

import (
	"github.com/forgepages/pipeline/internal/pipeline"
	pipelineerr "github.com/forgepages/pipeline/pkg/errors"
)

// ValidateExplicit rejects an explicit pipeline selection that names a
// pipeline not present in set: a configuration error, raised before any
// phase runs. Engine.Execute calls this ahead of ComputeSelection so an
// unknown --pipeline name never silently runs a partial selection.
func ValidateExplicit(set *pipeline.Set, explicit []string) error {
	for _, name := range explicit {
		if _, ok := set.Get(pipeline.NormalizeName(name)); !ok {
			return pipelineerr.ConfigError("unknown pipeline name in explicit selection", map[string]interface{}{"pipeline": name})
		}
	}
	return nil
}

// ComputeSelection resolves which pipelines participate in one Execute
// call: every Always-policy pipeline, every Normal-policy pipeline when
// includeNormal is set, every explicitly named pipeline, and the
// transitive closure of Dependencies over all of those. Callers must
// reject unknown explicit names with ValidateExplicit before calling
// ComputeSelection; by the time selection runs, every explicit name is
// assumed to exist.
func ComputeSelection(set *pipeline.Set, explicit []string, includeNormal bool) map[string]bool {
	selected := make(map[string]bool)

	var add func(name string)
	add = func(name string) {
		key := pipeline.NormalizeName(name)
		if selected[key] {
			return
		}
		p, ok := set.Get(key)
		if !ok {
			return
		}
		selected[key] = true
		for dep := range p.Dependencies {
			add(dep)
		}
	}

	for _, p := range set.Ordered() {
		if p.EffectivePolicy() == pipeline.Always {
			add(p.Name)
		}
	}
	if includeNormal {
		for _, p := range set.Ordered() {
			if p.EffectivePolicy() == pipeline.Normal {
				add(p.Name)
			}
		}
	}
	for _, name := range explicit {
		add(name)
	}

	return selected
}
