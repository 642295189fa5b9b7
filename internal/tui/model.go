package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/forgepages/pipeline/internal/pipeline"
	"github.com/forgepages/pipeline/internal/tui/components"
)

// ModuleStatus mirrors the lifecycle a single module entry passes
// through as the engine's event bus reports on it.
type ModuleStatus string

const (
	StatusPending ModuleStatus = "pending"
	StatusRunning ModuleStatus = "running"
	StatusSuccess ModuleStatus = "success"
	StatusFailed  ModuleStatus = "failed"
)

// ModuleStartMsg reports that a module has begun executing, relayed from
// a BeforeModuleExecution handler.
type ModuleStartMsg struct {
	PipelineName string
	Phase        pipeline.PhaseKind
	ModuleName   string
}

// ModuleCompleteMsg reports that a module has finished, relayed from an
// AfterModuleExecution handler.
type ModuleCompleteMsg struct {
	PipelineName string
	Phase        pipeline.PhaseKind
	ModuleName   string
	ElapsedMS    int64
	Failed       bool
	Message      string
}

// DeploymentGateMsg reports that the BeforeDeployment gate has fired.
type DeploymentGateMsg struct{}

// EngineDoneMsg reports that the engine run has finished.
type EngineDoneMsg struct {
	Failed bool
}

type tickMsg struct{}

// entryKey identifies one module slot within a pipeline phase.
type entryKey struct {
	pipelineName string
	phase        pipeline.PhaseKind
	moduleName   string
}

// Model is the Bubbletea state for the engine's live execution view.
type Model struct {
	set            *pipeline.Set
	order          []entryKey
	entries        map[entryKey]components.ModuleEntry
	total          int
	completed      int
	finished       bool
	cancelled      bool
	deploymentGate bool
	failed         bool
	nonInteractive bool
}

// NewModel constructs a Model tracking every module declared across set,
// in pipeline-insertion, then phase, then module order.
func NewModel(set *pipeline.Set, nonInteractive bool) Model {
	m := Model{
		set:            set,
		entries:        make(map[entryKey]components.ModuleEntry),
		nonInteractive: nonInteractive,
	}

	if set == nil {
		return m
	}

	for _, p := range set.Ordered() {
		for _, kind := range []pipeline.PhaseKind{pipeline.Input, pipeline.Process, pipeline.PostProcess, pipeline.Output} {
			for _, mod := range p.ModulesFor(kind) {
				key := entryKey{pipelineName: p.Name, phase: kind, moduleName: mod.Name()}
				if _, exists := m.entries[key]; exists {
					continue
				}
				m.entries[key] = components.ModuleEntry{
					PipelineName: p.Name,
					Phase:        kind,
					ModuleName:   mod.Name(),
					Status:       string(StatusPending),
				}
				m.order = append(m.order, key)
				m.total++
			}
		}
	}

	return m
}

// Init starts the Bubbletea program's animation tick.
func (m Model) Init() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg { return tickMsg{} })
}

// TotalModules returns the number of module slots tracked by the model.
func (m Model) TotalModules() int { return m.total }

// CompletedModules returns the number of module slots that have reached
// a terminal state.
func (m Model) CompletedModules() int { return m.completed }

// IsFinished reports whether the engine run has completed.
func (m Model) IsFinished() bool { return m.finished }

func (m *Model) ensure(key entryKey) {
	if _, exists := m.entries[key]; exists {
		return
	}
	m.entries[key] = components.ModuleEntry{
		PipelineName: key.pipelineName,
		Phase:        key.phase,
		ModuleName:   key.moduleName,
		Status:       string(StatusPending),
	}
	m.order = append(m.order, key)
	m.total++
}
