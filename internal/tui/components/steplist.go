package components

import "github.com/forgepages/pipeline/internal/pipeline"

// ModuleEntry represents a single module's current status for rendering.
type ModuleEntry struct {
	PipelineName string
	Phase        pipeline.PhaseKind
	ModuleName   string
	Status       string
	Message      string
	ElapsedMS    int64
}

// ModuleList renders an ordered list of module entries.
type ModuleList struct {
	entries []ModuleEntry
}

// NewModuleList constructs a module list component from an ordered slice of
// entries, copying it.
func NewModuleList(entries []ModuleEntry) ModuleList {
	clone := make([]ModuleEntry, len(entries))
	copy(clone, entries)
	return ModuleList{entries: clone}
}

// Entries returns the ordered module entries.
func (l ModuleList) Entries() []ModuleEntry {
	clone := make([]ModuleEntry, len(l.entries))
	copy(clone, l.entries)
	return clone
}
