package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/forgepages/pipeline/internal/pipeline"
)

func buildTwoModulePipelineSet(t *testing.T) *pipeline.Set {
	t.Helper()
	set := pipeline.NewSet()
	p := pipeline.NewPipeline("site")
	p.Input = []pipeline.Module{&namedModule{"static"}}
	p.Process = []pipeline.Module{&namedModule{"passthrough"}}
	require.NoError(t, set.Add(p))
	return set
}

type namedModule struct{ name string }

func (n *namedModule) Name() string { return n.name }
func (n *namedModule) Execute(ctx pipeline.ExecutionContext) (*pipeline.Batch, error) {
	return pipeline.Empty(), nil
}

func TestNewModelCountsEveryDeclaredModule(t *testing.T) {
	t.Parallel()
	m := NewModel(buildTwoModulePipelineSet(t), false)
	require.Equal(t, 2, m.TotalModules())
	require.Equal(t, 0, m.CompletedModules())
	require.False(t, m.IsFinished())
}

func TestUpdateModuleStartThenCompleteAdvancesCount(t *testing.T) {
	t.Parallel()
	m := NewModel(buildTwoModulePipelineSet(t), false)

	updated, _ := m.Update(ModuleStartMsg{PipelineName: "site", Phase: pipeline.Input, ModuleName: "static"})
	m = updated.(Model)
	require.Equal(t, 0, m.CompletedModules())

	updated, _ = m.Update(ModuleCompleteMsg{PipelineName: "site", Phase: pipeline.Input, ModuleName: "static"})
	m = updated.(Model)
	require.Equal(t, 1, m.CompletedModules())
}

func TestUpdateCompleteIsIdempotentAgainstDoubleCount(t *testing.T) {
	t.Parallel()
	m := NewModel(buildTwoModulePipelineSet(t), false)

	updated, _ := m.Update(ModuleCompleteMsg{PipelineName: "site", Phase: pipeline.Input, ModuleName: "static"})
	m = updated.(Model)
	updated, _ = m.Update(ModuleCompleteMsg{PipelineName: "site", Phase: pipeline.Input, ModuleName: "static", Failed: true})
	m = updated.(Model)

	require.Equal(t, 1, m.CompletedModules())
}

func TestUpdateEngineDoneMarksFinished(t *testing.T) {
	t.Parallel()
	m := NewModel(buildTwoModulePipelineSet(t), false)
	updated, _ := m.Update(EngineDoneMsg{Failed: true})
	m = updated.(Model)
	require.True(t, m.IsFinished())
}

func TestUpdateCtrlCMarksCancelledAndFinished(t *testing.T) {
	t.Parallel()
	m := NewModel(buildTwoModulePipelineSet(t), false)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = updated.(Model)
	require.True(t, m.IsFinished())
}

func TestViewRendersWithoutPanicking(t *testing.T) {
	t.Parallel()
	m := NewModel(buildTwoModulePipelineSet(t), false)
	updated, _ := m.Update(ModuleStartMsg{PipelineName: "site", Phase: pipeline.Input, ModuleName: "static"})
	m = updated.(Model)
	require.NotEmpty(t, m.View())
}
