package pipeline

import "fmt"

// PhaseKind identifies one of the four fixed phases every pipeline has.
type PhaseKind int

const (
	Input PhaseKind = iota
	Process
	PostProcess
	Output
)

// phaseKindNames is indexed by PhaseKind; ordering here is also the
// iteration order the phase-graph builder uses when visiting a pipeline's
// own phases (per spec.md §4.4's tie-break rule).
var phaseKindNames = [...]string{"Input", "Process", "PostProcess", "Output"}

// allPhaseKinds enumerates the four kinds in builder iteration order.
var allPhaseKinds = [...]PhaseKind{Input, Process, PostProcess, Output}

func (k PhaseKind) String() string {
	if k < 0 || int(k) >= len(phaseKindNames) {
		return "Unknown"
	}
	return phaseKindNames[k]
}

// Letter returns the single-character marker used by the result
// aggregator's ASCII timeline (I/P/T/O — T for PostProcess to avoid
// colliding with Process's P).
func (k PhaseKind) Letter() byte {
	switch k {
	case Input:
		return 'I'
	case Process:
		return 'P'
	case PostProcess:
		return 'T'
	case Output:
		return 'O'
	default:
		return '?'
	}
}

// Phase is a runtime scheduling node: one pipeline × one PhaseKind. It owns
// a module list and a set of phases it depends on (other phases that must
// complete successfully before this one starts).
//
// Dependencies drives scheduling order only (including cross-pipeline
// gating edges added by the graph builder). Predecessor is the narrower,
// intra-pipeline chain link (Input -> Process -> PostProcess -> Output)
// whose output batch feeds this phase's input; it is nil for Input, which
// always receives the empty batch. Cross-pipeline data flows through
// ctx.Services().Outputs(), never through a phase's own input batch.
type Phase struct {
	Pipeline     *Pipeline
	Kind         PhaseKind
	Modules      []Module
	Dependencies []*Phase
	Predecessor  *Phase
}

// ID returns a stable, human-readable identifier for logging and the ASCII
// timeline, of the form "PipelineName/Kind".
func (p *Phase) ID() string {
	if p == nil {
		return "<nil>"
	}
	name := "<nil>"
	if p.Pipeline != nil {
		name = p.Pipeline.Name
	}
	return fmt.Sprintf("%s/%s", name, p.Kind)
}

// AddDependency appends dep to p's dependency set, skipping duplicates.
func (p *Phase) AddDependency(dep *Phase) {
	if dep == nil || dep == p {
		return
	}
	for _, existing := range p.Dependencies {
		if existing == dep {
			return
		}
	}
	p.Dependencies = append(p.Dependencies, dep)
}

// PhaseResult is populated exactly once per successful execution of a
// phase; it is absent (no entry) when the phase was skipped or failed.
type PhaseResult struct {
	Kind      PhaseKind
	Outputs   *Batch
	StartedAt int64 // unix nanoseconds; supplied by the caller, never time.Now() internally
	ElapsedMS int64
}

// AnalyzerResult is a diagnostic record produced by an optional analyzer
// keyed to a phase. Recorded even when the phase's module chain throws.
type AnalyzerResult struct {
	PipelineName string
	Phase        PhaseKind
	Analyzer     string
	Severity     string
	Message      string
	Context      map[string]interface{}
}
