package modules

import (
	"context"

	"github.com/forgepages/pipeline/internal/pipeline"
)

// fakeExecutionContext is a minimal pipeline.ExecutionContext for exercising
// module Execute implementations without spinning up the engine's scheduler.
// ExecuteModules re-runs the given chain directly, in the same spirit as
// engine.execContext.ExecuteModules but without Before/AfterModuleExecution
// event raising, since these tests only assert module-level behavior.
type fakeExecutionContext struct {
	inputs *pipeline.Batch
}

var _ pipeline.ExecutionContext = (*fakeExecutionContext)(nil)

func (c *fakeExecutionContext) Context() context.Context   { return context.Background() }
func (c *fakeExecutionContext) Inputs() *pipeline.Batch     { return c.inputs }
func (c *fakeExecutionContext) Phase() *pipeline.Phase      { return nil }
func (c *fakeExecutionContext) PipelineName() string        { return "test" }
func (c *fakeExecutionContext) Services() pipeline.Services { return nil }

func (c *fakeExecutionContext) WithInputs(input *pipeline.Batch) pipeline.ExecutionContext {
	return &fakeExecutionContext{inputs: input}
}

func (c *fakeExecutionContext) ExecuteModules(modules []pipeline.Module, input *pipeline.Batch) (*pipeline.Batch, error) {
	current := input
	for _, m := range modules {
		out, err := m.Execute(&fakeExecutionContext{inputs: current})
		if err != nil {
			return nil, err
		}
		current = out
	}
	return current, nil
}
