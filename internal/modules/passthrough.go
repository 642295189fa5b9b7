package modules

import "github.com/forgepages/pipeline/internal/pipeline"

// passthroughModule returns its input batch unchanged. Useful as a
// placeholder phase entry, or as a no-op branch in tests exercising the
// branch module below.
type passthroughModule struct{}

// NewPassthrough builds a module that returns its input unchanged.
func NewPassthrough(config map[string]interface{}) (pipeline.Module, error) {
	return &passthroughModule{}, nil
}

func (m *passthroughModule) Name() string { return "passthrough" }

func (m *passthroughModule) Execute(ctx pipeline.ExecutionContext) (*pipeline.Batch, error) {
	return ctx.Inputs(), nil
}
