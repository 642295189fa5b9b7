package pipeline

import "context"

// Module is a user-supplied async batch transformer. Name is used only for
// logging/diagnostics. Execute may suspend on I/O, must observe the
// context's cancellation if it performs long-running work, and may return a
// nil batch — callers normalize nil to Empty().
type Module interface {
	Name() string
	Execute(ctx ExecutionContext) (*Batch, error)
}

// ExecutionContext is the per-module view of engine state handed to every
// Module.Execute call. The engine package provides the concrete
// implementation; this package only declares the contract so that Module
// implementations (including this package's container modules) do not need
// to import the engine.
type ExecutionContext interface {
	// Context returns the cancellation-bearing context.Context for this
	// execution. Modules that perform I/O should thread it through.
	Context() context.Context

	// Inputs returns the batch this phase is currently processing.
	Inputs() *Batch

	// Phase returns the phase this module is executing within.
	Phase() *Phase

	// PipelineName returns the name of the owning pipeline.
	PipelineName() string

	// Services exposes engine-wide collaborators (filesystem, settings,
	// outputs of prior pipelines, analyzer collection, stream factory).
	Services() Services

	// ExecuteModules runs modules synchronously-within-the-caller's-task
	// over the given input batch, re-entering the scheduler's module-chain
	// runner. Used by container modules such as for-each-document or
	// branching modules that need to run a nested sequence of modules
	// against an arbitrary batch rather than the phase's own inputs.
	ExecuteModules(modules []Module, input *Batch) (*Batch, error)

	// WithInputs returns a derived ExecutionContext presenting a different
	// input batch; exposed here so container modules can build nested
	// contexts without reaching into the engine package. ExecuteModules
	// and the phase executor build their contexts directly and do not call
	// it.
	WithInputs(input *Batch) ExecutionContext
}

// Settings captures the subset of EngineConfig a module may need to
// consult at runtime (e.g. whether to prefer temp files over in-memory
// buffers for string content).
type Settings struct {
	UseStringContentFiles bool
	Parallelism           int
}

// FileSystem is the external filesystem collaborator named in the external
// interfaces section: enumerate input paths, resolve/create/delete output
// and temp directories, open files, and track files this engine run wrote
// (so a later CleanMode=Self run can remove exactly those files).
type FileSystem interface {
	EnumerateInputs(root string) ([]string, error)
	OutputDir() string
	TempDir() string
	EnsureOutputDir() error
	EnsureTempDir() error
	CleanOutputDir() error
	CleanTempDir() error
	CleanWritten() error
	Open(path string) (ReadCloser, error)
	Create(path string) (WriteCloser, error)
	TrackWritten(path string)
	WrittenFiles() []string
}

// WriteCloser mirrors io.WriteCloser without importing io.
type WriteCloser interface {
	Write(p []byte) (n int, err error)
	Close() error
}

// StreamFactory produces writable memory or temp-file backed streams used by
// modules that materialize string content into a ContentProvider.
type StreamFactory interface {
	NewStream(useFile bool) (WriteCloser, ContentProvider, error)
}

// Analyzers collects AnalyzerResult records keyed to the phase currently
// executing; collection continues even when the phase's own module chain
// throws, per the diagnostic contract in the error handling design.
type Analyzers interface {
	Record(result AnalyzerResult)
	Results() []AnalyzerResult
}

// Outputs exposes the result aggregator's read side to modules (e.g.
// `ctx.Outputs["A"]` in the spec's scenarios): the document batch produced
// by a given pipeline's most recently completed phase of each kind.
type Outputs interface {
	// PipelineOutputs returns the most recent successful output batch for
	// each phase kind of the named pipeline. Missing/skipped phases are
	// simply absent from the map.
	PipelineOutputs(pipelineName string) map[PhaseKind]*Batch
}

// Services bundles every engine-wide collaborator exposed through
// ExecutionContext.Services().
type Services interface {
	FileSystem() FileSystem
	Settings() Settings
	Outputs() Outputs
	Analyzers() Analyzers
	Streams() StreamFactory
}
