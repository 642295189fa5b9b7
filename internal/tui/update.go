package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, nil
	case ModuleStartMsg:
		key := entryKey{pipelineName: msg.PipelineName, phase: msg.Phase, moduleName: msg.ModuleName}
		m.ensure(key)
		entry := m.entries[key]
		entry.Status = string(StatusRunning)
		m.entries[key] = entry
		return m, nil
	case ModuleCompleteMsg:
		key := entryKey{pipelineName: msg.PipelineName, phase: msg.Phase, moduleName: msg.ModuleName}
		m.ensure(key)
		entry := m.entries[key]
		previouslyTerminal := entry.Status == string(StatusSuccess) || entry.Status == string(StatusFailed)
		entry.Message = msg.Message
		entry.ElapsedMS = msg.ElapsedMS
		if msg.Failed {
			entry.Status = string(StatusFailed)
		} else {
			entry.Status = string(StatusSuccess)
		}
		m.entries[key] = entry
		if !previouslyTerminal {
			m.completed++
		}
		return m, nil
	case DeploymentGateMsg:
		m.deploymentGate = true
		return m, nil
	case EngineDoneMsg:
		m.finished = true
		m.failed = msg.Failed
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancelled = true
			m.finished = true
			return m, nil
		}
	case tea.QuitMsg:
		m.finished = true
		return m, nil
	}

	return m, nil
}
