package engine

import (
	"context"
	"time"

	"github.com/forgepages/pipeline/internal/pipeline"
	pipelineerr "github.com/forgepages/pipeline/pkg/errors"
)

// runModuleChain executes modules in sequence, threading each module's
// output batch into the next module's input, raising
// BeforeModuleExecution/AfterModuleExecution around every call. A
// BeforeModuleExecution handler that sets OverriddenOutputs suppresses
// the module's own Execute call; an AfterModuleExecution handler may
// replace the outputs that flow to the next module.
func runModuleChain(ctx context.Context, bus *Bus, pipelineName string, phase *pipeline.Phase, modules []pipeline.Module, input *pipeline.Batch, svc pipeline.Services) (*pipeline.Batch, error) {
	current := orEmptyBatch(input)

	for _, m := range modules {
		before := &ModuleExecutionArgs{
			PipelineName: pipelineName,
			Phase:        phase.Kind,
			Module:       m,
			Inputs:       current,
		}
		if _, err := bus.Raise(ctx, BeforeModuleExecution, before); err != nil {
			return nil, pipelineerr.Wrap(pipelineerr.CodeExecution, "before-module handler failed", err).
				WithBreadcrumb(pipelineName, phase.Kind.String(), m.Name())
		}

		start := time.Now()
		var out *pipeline.Batch
		if before.OverriddenOutputs != nil {
			out = before.OverriddenOutputs
		} else {
			execCtx := &execContext{ctx: ctx, inputs: current, phase: phase, pipelineName: pipelineName, services: svc, bus: bus}
			result, err := m.Execute(execCtx)
			if err != nil {
				return nil, pipelineerr.Wrap(pipelineerr.CodeExecution, "module execution failed", err).
					WithBreadcrumb(pipelineName, phase.Kind.String(), m.Name())
			}
			out = result
		}
		out = orEmptyBatch(out)
		elapsed := time.Since(start)

		after := &AfterModuleExecutionArgs{ModuleExecutionArgs: *before, Outputs: out, ElapsedMS: elapsed.Milliseconds()}
		if _, err := bus.Raise(ctx, AfterModuleExecution, after); err != nil {
			return nil, pipelineerr.Wrap(pipelineerr.CodeExecution, "after-module handler failed", err).
				WithBreadcrumb(pipelineName, phase.Kind.String(), m.Name())
		}
		if after.OverriddenOutputs != nil {
			out = after.OverriddenOutputs
		}

		current = out
	}

	return current, nil
}

func orEmptyBatch(b *pipeline.Batch) *pipeline.Batch {
	if b == nil {
		return pipeline.Empty()
	}
	return b
}
