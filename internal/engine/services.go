package engine

import (
	"sync"

	"github.com/forgepages/pipeline/internal/pipeline"
)

// AnalyzerSink is the default pipeline.Analyzers implementation: it
// stores every recorded result and forwards it to a set of subscribed
// callbacks (the registry analyzers selected by EngineConfig.Analyzers).
type AnalyzerSink struct {
	mu        sync.Mutex
	results   []pipeline.AnalyzerResult
	listeners []func(pipeline.AnalyzerResult)
}

// NewAnalyzerSink constructs an empty analyzer sink.
func NewAnalyzerSink() *AnalyzerSink {
	return &AnalyzerSink{}
}

// Subscribe registers a callback invoked synchronously for every
// recorded result, in Record's caller goroutine.
func (s *AnalyzerSink) Subscribe(fn func(pipeline.AnalyzerResult)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *AnalyzerSink) Record(result pipeline.AnalyzerResult) {
	s.mu.Lock()
	s.results = append(s.results, result)
	listeners := append([]func(pipeline.AnalyzerResult){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(result)
	}
}

func (s *AnalyzerSink) Results() []pipeline.AnalyzerResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]pipeline.AnalyzerResult(nil), s.results...)
}

var _ pipeline.Analyzers = (*AnalyzerSink)(nil)

// services bundles the engine-wide collaborators handed to every module
// through ExecutionContext.Services.
type services struct {
	fs        pipeline.FileSystem
	settings  pipeline.Settings
	outputs   pipeline.Outputs
	analyzers pipeline.Analyzers
	streams   pipeline.StreamFactory
}

// NewServices constructs the pipeline.Services bundle the engine hands to
// every module.
func NewServices(fs pipeline.FileSystem, settings pipeline.Settings, outputs pipeline.Outputs, analyzers pipeline.Analyzers, streams pipeline.StreamFactory) pipeline.Services {
	return &services{fs: fs, settings: settings, outputs: outputs, analyzers: analyzers, streams: streams}
}

func (s *services) FileSystem() pipeline.FileSystem   { return s.fs }
func (s *services) Settings() pipeline.Settings       { return s.settings }
func (s *services) Outputs() pipeline.Outputs         { return s.outputs }
func (s *services) Analyzers() pipeline.Analyzers     { return s.analyzers }
func (s *services) Streams() pipeline.StreamFactory   { return s.streams }

var _ pipeline.Services = (*services)(nil)
