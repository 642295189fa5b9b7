package engine

import (
	"context"
	"sort"
	"sync"

	"github.com/forgepages/pipeline/internal/pipeline"
)

// Tag identifies one of the five core event kinds raised at the engine's
// external boundary. Using a small closed set of tags (rather than
// reflection-keyed handler maps) is the strongly-typed registry called for
// in the design notes.
type Tag string

const (
	BeforeEngineExecution Tag = "before_engine_execution"
	AfterEngineExecution  Tag = "after_engine_execution"
	BeforeDeployment      Tag = "before_deployment"
	BeforeModuleExecution Tag = "before_module_execution"
	AfterModuleExecution  Tag = "after_module_execution"
)

// EngineExecutionArgs backs BeforeEngineExecution.
type EngineExecutionArgs struct {
	ExecutionID string
}

// AfterEngineExecutionArgs backs AfterEngineExecution.
type AfterEngineExecutionArgs struct {
	ExecutionID string
	ElapsedMS   int64
	Failed      bool
}

// BeforeDeploymentArgs backs BeforeDeployment.
type BeforeDeploymentArgs struct {
	ExecutionID string
}

// ModuleExecutionArgs backs BeforeModuleExecution and the embedded portion
// of AfterModuleExecutionArgs. A BeforeModuleExecution handler that sets
// OverriddenOutputs suppresses the module's own Execute call.
type ModuleExecutionArgs struct {
	PipelineName      string
	Phase             pipeline.PhaseKind
	Module            pipeline.Module
	Inputs            *pipeline.Batch
	OverriddenOutputs *pipeline.Batch
}

// AfterModuleExecutionArgs backs AfterModuleExecution. A handler may again
// set OverriddenOutputs to replace the module's (or the Before-handler's)
// outputs before they flow downstream.
type AfterModuleExecutionArgs struct {
	ModuleExecutionArgs
	Outputs           *pipeline.Batch
	ElapsedMS         int64
	OverriddenOutputs *pipeline.Batch
}

// Handler processes one occurrence of an event. A handler's error aborts
// the enclosing Raise call and is surfaced to the caller.
type Handler func(ctx context.Context, args interface{}) error

// Bus is an ordered async handler registry keyed by event tag. Raise
// invokes handlers sequentially, in registration order, awaiting each in
// turn, and returns whether at least one handler was registered.
type Bus struct {
	mu       sync.Mutex
	handlers map[Tag][]Handler
}

// NewBus constructs an empty event bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[Tag][]Handler)}
}

// On registers a handler for tag, appended after any already registered.
func (b *Bus) On(tag Tag, h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[tag] = append(b.handlers[tag], h)
}

// Raise invokes every handler registered for tag, in registration order,
// awaiting each before starting the next. It returns true iff at least one
// handler was registered, and the first handler error encountered (which
// aborts the remaining handlers for this raise).
func (b *Bus) Raise(ctx context.Context, tag Tag, args interface{}) (bool, error) {
	b.mu.Lock()
	handlers := append([]Handler(nil), b.handlers[tag]...)
	b.mu.Unlock()

	for _, h := range handlers {
		if err := h(ctx, args); err != nil {
			return true, err
		}
	}
	return len(handlers) > 0, nil
}

// sortedPipelineKeys is a small helper shared by callers that need a
// deterministic iteration order over a name set.
func sortedPipelineKeys(keys map[string]struct{}) []string {
	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
