package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/forgepages/pipeline/internal/engine"
)

// Attach registers bus handlers that translate the engine's module and
// deployment-gate events into Bubbletea messages, delivered through send.
// Used by the CLI to drive both the interactive program (program.Send)
// and the non-interactive fallback (direct Model.Update calls).
func Attach(bus *engine.Bus, send func(tea.Msg)) {
	bus.On(engine.BeforeModuleExecution, func(ctx context.Context, args interface{}) error {
		a, ok := args.(*engine.ModuleExecutionArgs)
		if !ok {
			return nil
		}
		send(ModuleStartMsg{PipelineName: a.PipelineName, Phase: a.Phase, ModuleName: a.Module.Name()})
		return nil
	})

	bus.On(engine.AfterModuleExecution, func(ctx context.Context, args interface{}) error {
		a, ok := args.(*engine.AfterModuleExecutionArgs)
		if !ok {
			return nil
		}
		send(ModuleCompleteMsg{
			PipelineName: a.PipelineName,
			Phase:        a.Phase,
			ModuleName:   a.Module.Name(),
			ElapsedMS:    a.ElapsedMS,
		})
		return nil
	})

	bus.On(engine.BeforeDeployment, func(ctx context.Context, args interface{}) error {
		send(DeploymentGateMsg{})
		return nil
	})

	bus.On(engine.AfterEngineExecution, func(ctx context.Context, args interface{}) error {
		a, ok := args.(*engine.AfterEngineExecutionArgs)
		if !ok {
			return nil
		}
		send(EngineDoneMsg{Failed: a.Failed})
		return nil
	})
}
