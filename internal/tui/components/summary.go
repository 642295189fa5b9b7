package components

import (
	"fmt"
	"strings"
)

// SummaryData aggregates counts for rendering the run summary.
type SummaryData struct {
	Total          int
	Completed      int
	Finished       bool
	Cancelled      bool
	Failed         bool
	DeploymentGate bool
}

// Summary renders a textual execution summary.
type Summary struct {
	data SummaryData
}

// NewSummary creates a new Summary component.
func NewSummary(data SummaryData) Summary {
	return Summary{data: data}
}

// View renders the summary.
func (s Summary) View() string {
	var lines []string
	if s.data.Total > 0 {
		lines = append(lines, fmt.Sprintf("Modules: %d/%d completed", s.data.Completed, s.data.Total))
	}

	if s.data.DeploymentGate {
		lines = append(lines, "Deployment gate: fired")
	}

	switch {
	case s.data.Cancelled:
		lines = append(lines, "Execution cancelled")
	case s.data.Finished && s.data.Failed:
		lines = append(lines, "Execution finished with failures")
	case s.data.Finished:
		lines = append(lines, "Execution finished successfully")
	}

	return strings.Join(lines, "\n")
}
