package modules

import (
	"github.com/forgepages/pipeline/internal/pipeline"
	"github.com/forgepages/pipeline/internal/registry"
	pipelineerr "github.com/forgepages/pipeline/pkg/errors"
)

// foreachModule runs a nested chain of modules once per input document,
// re-entering the scheduler's module-chain runner via
// ExecutionContext.ExecuteModules, and concatenates the per-document
// results back into a single batch in input order.
type foreachModule struct {
	chain []pipeline.Module
}

// NewForEachFactory builds a registry.ModuleFactory for the "for_each"
// module type. It closes over reg so nested module entries (declared
// under the "modules" config key) can be resolved by type name the same
// way top-level phase modules are, without widening the ModuleFactory
// signature for every other module type.
func NewForEachFactory(reg *registry.Registry) registry.ModuleFactory {
	return func(config map[string]interface{}) (pipeline.Module, error) {
		raw, _ := config["modules"].([]interface{})
		if len(raw) == 0 {
			return nil, pipelineerr.ConfigError("for_each module requires a non-empty modules list", nil)
		}

		chain := make([]pipeline.Module, 0, len(raw))
		for _, entry := range raw {
			decl, ok := entry.(map[string]interface{})
			if !ok {
				return nil, pipelineerr.ConfigError("for_each modules entry must be a mapping", nil)
			}
			typeName, _ := decl["type"].(string)
			if typeName == "" {
				return nil, pipelineerr.ConfigError("for_each modules entry missing type", nil)
			}
			nestedConfig := make(map[string]interface{}, len(decl))
			for k, v := range decl {
				if k != "type" {
					nestedConfig[k] = v
				}
			}
			m, err := reg.BuildModule(typeName, nestedConfig)
			if err != nil {
				return nil, err
			}
			chain = append(chain, m)
		}

		return &foreachModule{chain: chain}, nil
	}
}

func (m *foreachModule) Name() string { return "for_each" }

func (m *foreachModule) Execute(ctx pipeline.ExecutionContext) (*pipeline.Batch, error) {
	input := ctx.Inputs()
	if input.Len() == 0 {
		return pipeline.Empty(), nil
	}

	results := make([]*pipeline.Batch, 0, input.Len())
	for _, doc := range input.Documents() {
		out, err := ctx.ExecuteModules(m.chain, pipeline.NewBatch(doc))
		if err != nil {
			return nil, err
		}
		results = append(results, out)
	}
	return pipeline.Concat(results...), nil
}
