package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forgepages/pipeline/internal/pipeline"
)

type echoModule struct{ name string }

func (e *echoModule) Name() string { return e.name }
func (e *echoModule) Execute(ctx pipeline.ExecutionContext) (*pipeline.Batch, error) {
	return ctx.Inputs(), nil
}

func TestRunModuleChainThreadsOutputIntoNextInput(t *testing.T) {
	t.Parallel()
	bus := NewBus()
	ph := &pipeline.Phase{Pipeline: &pipeline.Pipeline{Name: "site"}, Kind: pipeline.Process}

	var seenInputs []int
	bus.On(BeforeModuleExecution, func(ctx context.Context, args interface{}) error {
		a := args.(*ModuleExecutionArgs)
		seenInputs = append(seenInputs, a.Inputs.Len())
		return nil
	})

	in := pipeline.NewBatch(pipeline.NewDocument("a", "a"))
	modules := []pipeline.Module{&echoModule{"m1"}, &echoModule{"m2"}}

	out, err := runModuleChain(context.Background(), bus, "site", ph, modules, in, nil)
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	require.Equal(t, []int{1, 1}, seenInputs)
}

func TestRunModuleChainBeforeHandlerOverrideSuppressesExecute(t *testing.T) {
	t.Parallel()
	bus := NewBus()
	ph := &pipeline.Phase{Pipeline: &pipeline.Pipeline{Name: "site"}, Kind: pipeline.Process}

	override := pipeline.NewBatch(pipeline.NewDocument("overridden", "overridden"))
	bus.On(BeforeModuleExecution, func(ctx context.Context, args interface{}) error {
		args.(*ModuleExecutionArgs).OverriddenOutputs = override
		return nil
	})

	executed := false
	modules := []pipeline.Module{&trackingModule{onExecute: func() { executed = true }}}

	out, err := runModuleChain(context.Background(), bus, "site", ph, modules, pipeline.Empty(), nil)
	require.NoError(t, err)
	require.False(t, executed)
	require.Same(t, override, out)
}

func TestRunModuleChainAfterHandlerOverrideReplacesOutputs(t *testing.T) {
	t.Parallel()
	bus := NewBus()
	ph := &pipeline.Phase{Pipeline: &pipeline.Pipeline{Name: "site"}, Kind: pipeline.Process}

	override := pipeline.NewBatch(pipeline.NewDocument("replaced", "replaced"))
	bus.On(AfterModuleExecution, func(ctx context.Context, args interface{}) error {
		args.(*AfterModuleExecutionArgs).OverriddenOutputs = override
		return nil
	})

	modules := []pipeline.Module{&echoModule{"m1"}}
	out, err := runModuleChain(context.Background(), bus, "site", ph, modules, pipeline.NewBatch(pipeline.NewDocument("a", "a")), nil)
	require.NoError(t, err)
	require.Same(t, override, out)
}

func TestRunModuleChainWrapsModuleErrorWithBreadcrumb(t *testing.T) {
	t.Parallel()
	bus := NewBus()
	ph := &pipeline.Phase{Pipeline: &pipeline.Pipeline{Name: "site"}, Kind: pipeline.Process}
	modules := []pipeline.Module{&failingModule{}}

	_, err := runModuleChain(context.Background(), bus, "site", ph, modules, pipeline.Empty(), nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "module execution failed")
}

func TestRunModuleChainRecordsElapsedMS(t *testing.T) {
	t.Parallel()
	bus := NewBus()
	ph := &pipeline.Phase{Pipeline: &pipeline.Pipeline{Name: "site"}, Kind: pipeline.Process}

	var elapsed int64 = -1
	bus.On(AfterModuleExecution, func(ctx context.Context, args interface{}) error {
		elapsed = args.(*AfterModuleExecutionArgs).ElapsedMS
		return nil
	})

	modules := []pipeline.Module{&echoModule{"m1"}}
	_, err := runModuleChain(context.Background(), bus, "site", ph, modules, pipeline.Empty(), nil)
	require.NoError(t, err)
	require.GreaterOrEqual(t, elapsed, int64(0))
}

type trackingModule struct{ onExecute func() }

func (t *trackingModule) Name() string { return "tracking" }
func (t *trackingModule) Execute(ctx pipeline.ExecutionContext) (*pipeline.Batch, error) {
	t.onExecute()
	return pipeline.Empty(), nil
}
