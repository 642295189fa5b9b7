package engine

import (
	"context"

	"github.com/forgepages/pipeline/internal/pipeline"
)

// execContext is the concrete pipeline.ExecutionContext handed to every
// module. ExecuteModules lets a module recurse into a sub-chain (a
// for-each-document container module, say) without the scheduler's
// involvement, re-raising BeforeModuleExecution/AfterModuleExecution for
// each nested call exactly as the top-level phase loop does.
type execContext struct {
	ctx          context.Context
	inputs       *pipeline.Batch
	phase        *pipeline.Phase
	pipelineName string
	services     pipeline.Services
	bus          *Bus
}

var _ pipeline.ExecutionContext = (*execContext)(nil)

func (c *execContext) Context() context.Context    { return c.ctx }
func (c *execContext) Inputs() *pipeline.Batch      { return c.inputs }
func (c *execContext) Phase() *pipeline.Phase       { return c.phase }
func (c *execContext) PipelineName() string         { return c.pipelineName }
func (c *execContext) Services() pipeline.Services  { return c.services }

// WithInputs returns a copy of this context with a different input batch,
// used when a module hands a sub-batch to a nested ExecuteModules call.
func (c *execContext) WithInputs(input *pipeline.Batch) pipeline.ExecutionContext {
	clone := *c
	clone.inputs = input
	return &clone
}

// ExecuteModules runs modules in sequence, each consuming the prior
// module's output as its input (the first consumes input), raising
// Before/AfterModuleExecution around each call exactly as the scheduler's
// own phase loop does. This is the re-entrant path a container module
// (e.g. a for-each-document module) uses to recurse into a nested chain.
func (c *execContext) ExecuteModules(modules []pipeline.Module, input *pipeline.Batch) (*pipeline.Batch, error) {
	return runModuleChain(c.ctx, c.bus, c.pipelineName, c.phase, modules, input, c.services)
}
