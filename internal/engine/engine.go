// Package engine is the facade: it owns the pipeline set, the cached
// phase graph, the event bus, and the result aggregator, and exposes
// Execute/Dispose to callers (the CLI, the TUI, or an embedding host).
package engine

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/forgepages/pipeline/internal/graph"
	"github.com/forgepages/pipeline/internal/logging"
	"github.com/forgepages/pipeline/internal/pipeline"
	pipelineerr "github.com/forgepages/pipeline/pkg/errors"
)

// Options configures an Engine at construction.
type Options struct {
	Parallelism int // 0 = uncapped, mirrors EngineConfig.Parallelism
	Serial      bool
	Logger      *logging.Logger
}

// Engine is the execution facade over a pipeline.Set. A single Engine
// must not run two Execute calls concurrently; Execute returns a
// reentrancy error if called while a prior call is still in flight.
type Engine struct {
	set     *pipeline.Set
	bus     *Bus
	logger  *logging.Logger
	serial  bool
	parallelism int

	mu          sync.Mutex
	cachedRev   int
	cachedGraph []*pipeline.Phase

	running  atomic.Bool
	disposed atomic.Bool
}

// New constructs an Engine over set.
func New(set *pipeline.Set, bus *Bus, opts Options) *Engine {
	if bus == nil {
		bus = NewBus()
	}
	return &Engine{
		set:         set,
		bus:         bus,
		logger:      opts.Logger,
		serial:      opts.Serial,
		parallelism: opts.Parallelism,
		cachedRev:   -1,
	}
}

// Bus exposes the event bus so callers can register handlers before
// calling Execute.
func (e *Engine) Bus() *Bus { return e.bus }

// ExecuteOptions configures one Execute call.
type ExecuteOptions struct {
	// Pipelines names explicitly selected pipelines, pulled in alongside
	// their transitive Dependencies regardless of policy.
	Pipelines []string
	// IncludeNormal additionally selects every Normal-policy pipeline.
	IncludeNormal bool
	// Services bundles the collaborators handed to every module this run.
	Services pipeline.Services
	// Aggregator receives this run's PhaseResult output. A fresh
	// aggregator is created when nil.
	Aggregator *Aggregator
}

// Execute resolves the selection, builds (or reuses) the phase graph, and
// runs it to completion. It returns the aggregator holding this run's
// results alongside the first error encountered, if any.
func (e *Engine) Execute(ctx context.Context, opts ExecuteOptions) (*Aggregator, error) {
	if e.disposed.Load() {
		return nil, pipelineerr.New(pipelineerr.CodeDisposed, "engine has been disposed")
	}
	if !e.running.CompareAndSwap(false, true) {
		return nil, pipelineerr.New(pipelineerr.CodeReentrancy, "engine is already executing")
	}
	defer e.running.Store(false)

	if err := ValidateExplicit(e.set, opts.Pipelines); err != nil {
		return nil, err
	}

	if ctx == nil {
		ctx = context.Background()
	}

	executionID := newExecutionID()
	start := time.Now()

	if _, err := e.bus.Raise(ctx, BeforeEngineExecution, &EngineExecutionArgs{ExecutionID: executionID}); err != nil {
		return nil, pipelineerr.Wrap(pipelineerr.CodeExecution, "before-engine-execution handler failed", err)
	}

	phaseGraph, err := e.phaseGraph()
	if err != nil {
		return nil, err
	}

	if e.logger != nil {
		e.logger.Armer().Reset()
	}

	aggregator := opts.Aggregator
	if aggregator == nil {
		aggregator = NewAggregator()
	}

	svc := opts.Services
	if svc == nil {
		svc = NewServices(nil, pipeline.Settings{Parallelism: e.parallelism}, aggregator, NewAnalyzerSink(), nil)
	}

	selected := ComputeSelection(e.set, opts.Pipelines, opts.IncludeNormal)

	scheduler := NewScheduler(e.bus, aggregator, svc, e.logger, e.parallelism)

	var runErr error
	if e.serial {
		runErr = scheduler.RunSerial(ctx, phaseGraph, selected)
	} else {
		runErr = scheduler.Run(ctx, phaseGraph, selected)
	}

	failed := runErr != nil
	if e.logger != nil && e.logger.Armer().Armed() && runErr == nil {
		runErr = pipelineerr.New(pipelineerr.CodeFailureLog, "failure-level log records observed during execution").
			WithContext(map[string]interface{}{"count": e.logger.Armer().Count()})
		failed = true
	}

	if _, err := e.bus.Raise(ctx, AfterEngineExecution, &AfterEngineExecutionArgs{
		ExecutionID: executionID,
		ElapsedMS:   time.Since(start).Milliseconds(),
		Failed:      failed,
	}); err != nil && runErr == nil {
		runErr = pipelineerr.Wrap(pipelineerr.CodeExecution, "after-engine-execution handler failed", err)
	}

	return aggregator, runErr
}

// Dispose marks the engine unusable for further Execute calls. Dispose is
// idempotent.
func (e *Engine) Dispose() error {
	e.disposed.Store(true)
	return nil
}

// phaseGraph lazily builds and caches the phase graph, rebuilding only
// when the underlying Set has mutated since the last build.
func (e *Engine) phaseGraph() ([]*pipeline.Phase, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rev := e.set.Revision()
	if e.cachedGraph != nil && e.cachedRev == rev {
		return e.cachedGraph, nil
	}

	built, err := graph.Build(e.set)
	if err != nil {
		return nil, err
	}
	e.cachedGraph = built
	e.cachedRev = rev
	return built, nil
}

var executionCounter atomic.Int64

// newExecutionID produces a process-unique execution identifier without
// relying on wall-clock time, keeping Execute deterministic under test.
func newExecutionID() string {
	n := executionCounter.Add(1)
	return "exec-" + strconv.FormatInt(n, 10)
}
