package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/forgepages/pipeline/internal/tui/components"
)

// View renders the current state of the model.
func (m Model) View() string {
	var sections []string

	sections = append(sections, titleStyle.Render("Pipeline execution"))

	progress := components.NewProgress(m.total).View(m.completed)
	sections = append(sections, sectionStyle.Render("Progress"), progress)

	entries := make([]components.ModuleEntry, 0, len(m.order))
	for _, key := range m.order {
		entries = append(entries, m.entries[key])
	}
	listComp := components.NewModuleList(entries)
	if rendered := listComp.Entries(); len(rendered) > 0 {
		sections = append(sections, sectionStyle.Render("Modules"))
		sections = append(sections, renderModuleEntries(rendered))
	}

	summary := components.NewSummary(components.SummaryData{
		Total:          m.total,
		Completed:      m.completed,
		Finished:       m.finished,
		Cancelled:      m.cancelled,
		Failed:         m.failed,
		DeploymentGate: m.deploymentGate,
	}).View()
	if strings.TrimSpace(summary) != "" {
		sections = append(sections, sectionStyle.Render("Summary"), summaryStyle.Render(summary))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderModuleEntries(entries []components.ModuleEntry) string {
	var lines []string
	for _, entry := range entries {
		icon := StatusIcon(entry.Status)
		line := fmt.Sprintf(" %s %s/%s/%s", icon, entry.PipelineName, entry.Phase, entry.ModuleName)
		if strings.TrimSpace(entry.Message) != "" {
			line = fmt.Sprintf("%s — %s", line, entry.Message)
		}
		if entry.ElapsedMS > 0 {
			line = fmt.Sprintf("%s (%s)", line, (time.Duration(entry.ElapsedMS) * time.Millisecond).Truncate(time.Millisecond))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// StatusIcon returns the glyph representing a module status.
func StatusIcon(status string) string {
	switch ModuleStatus(status) {
	case StatusSuccess:
		return successStyle.Render("✓")
	case StatusRunning:
		return runningStyle.Render("⏳")
	case StatusFailed:
		return failureStyle.Render("✗")
	default:
		return pendingStyle.Render("…")
	}
}
