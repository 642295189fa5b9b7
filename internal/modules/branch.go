package modules

import (
	"github.com/forgepages/pipeline/internal/pipeline"
	"github.com/forgepages/pipeline/internal/registry"
	pipelineerr "github.com/forgepages/pipeline/pkg/errors"
)

// branchModule partitions its input batch by a metadata-key/value
// predicate and runs each partition through one of two nested chains,
// skipping a chain entirely when its partition is empty. Output order is
// the matching-partition documents first, then the non-matching ones,
// mirroring the order ExecuteModules was called in.
type branchModule struct {
	metadataKey   string
	metadataValue interface{}
	onMatch       []pipeline.Module
	onNoMatch     []pipeline.Module
}

// NewBranchFactory builds a registry.ModuleFactory for the "branch"
// module type, resolving its "match"/"no_match" nested chains against
// reg the same way for_each resolves its "modules" chain.
func NewBranchFactory(reg *registry.Registry) registry.ModuleFactory {
	return func(config map[string]interface{}) (pipeline.Module, error) {
		key, _ := config["metadata_key"].(string)
		if key == "" {
			return nil, pipelineerr.ConfigError("branch module requires metadata_key", nil)
		}
		value := config["metadata_value"]

		onMatch, err := buildChain(reg, config["match"])
		if err != nil {
			return nil, err
		}
		onNoMatch, err := buildChain(reg, config["no_match"])
		if err != nil {
			return nil, err
		}

		return &branchModule{
			metadataKey:   key,
			metadataValue: value,
			onMatch:       onMatch,
			onNoMatch:     onNoMatch,
		}, nil
	}
}

func buildChain(reg *registry.Registry, raw interface{}) ([]pipeline.Module, error) {
	entries, _ := raw.([]interface{})
	if len(entries) == 0 {
		return nil, nil
	}
	chain := make([]pipeline.Module, 0, len(entries))
	for _, entry := range entries {
		decl, ok := entry.(map[string]interface{})
		if !ok {
			return nil, pipelineerr.ConfigError("branch chain entry must be a mapping", nil)
		}
		typeName, _ := decl["type"].(string)
		if typeName == "" {
			return nil, pipelineerr.ConfigError("branch chain entry missing type", nil)
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
	return chain, nil
}

func (m *branchModule) Name() string { return "branch" }

func (m *branchModule) Execute(ctx pipeline.ExecutionContext) (*pipeline.Batch, error) {
	input := ctx.Inputs()

	var matched, unmatched []*pipeline.Document
	for _, doc := range input.Documents() {
		v, _ := doc.Metadata.Get(m.metadataKey)
		if v == m.metadataValue {
			matched = append(matched, doc)
		} else {
			unmatched = append(unmatched, doc)
		}
	}

	var outs []*pipeline.Batch

	if len(matched) > 0 && len(m.onMatch) > 0 {
		out, err := ctx.ExecuteModules(m.onMatch, pipeline.NewBatch(matched...))
		if err != nil {
			return nil, err
		}
		outs = append(outs, out)
	} else if len(matched) > 0 {
		outs = append(outs, pipeline.NewBatch(matched...))
	}

	if len(unmatched) > 0 && len(m.onNoMatch) > 0 {
		out, err := ctx.ExecuteModules(m.onNoMatch, pipeline.NewBatch(unmatched...))
		if err != nil {
			return nil, err
		}
		outs = append(outs, out)
	} else if len(unmatched) > 0 {
		outs = append(outs, pipeline.NewBatch(unmatched...))
	}

	return pipeline.Concat(outs...), nil
}
