package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Options describes logger configuration supplied at creation time.
type Options struct {
	Level         string
	HumanReadable bool
	Writer        io.Writer

	// FailureLogLevel arms the attached FailureArmer: any record at or
	// above this level trips it. Empty disables arming.
	FailureLogLevel string
}

// Logger wraps zerolog with the fixed field set the engine needs
// (pipeline, phase, module breadcrumbs) and an attached FailureArmer.
type Logger struct {
	base  zerolog.Logger
	armer *FailureArmer
}

// New creates a configured Logger from Options.
func New(opts Options) (*Logger, error) {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stdout
	}

	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	var output io.Writer = writer
	if opts.HumanReadable {
		console := zerolog.NewConsoleWriter()
		console.Out = writer
		console.TimeFormat = time.RFC3339
		output = console
	}

	armer, err := NewFailureArmer(opts.FailureLogLevel)
	if err != nil {
		return nil, err
	}

	hook := armingHook{armer: armer}
	base := zerolog.New(output).Level(level).Hook(hook).With().Timestamp().Logger()
	return &Logger{base: base, armer: armer}, nil
}

// WithBreadcrumb returns a derived logger carrying pipeline/phase/module
// context fields, the counterpart of pkg/errors.Error.WithBreadcrumb.
func (l *Logger) WithBreadcrumb(pipelineName string, phaseKind fmtStringer, moduleName string) *Logger {
	if l == nil {
		return nil
	}
	builder := l.base.With().Str("pipeline", pipelineName)
	if phaseKind != nil {
		builder = builder.Str("phase", phaseKind.String())
	}
	if moduleName != "" {
		builder = builder.Str("module", moduleName)
	}
	return &Logger{base: builder.Logger(), armer: l.armer}
}

// fmtStringer avoids importing the pipeline package here, keeping logging
// free of a dependency on the domain types it instruments.
type fmtStringer interface {
	String() string
}

func (l *Logger) Info(msg string, fields ...Field)  { l.log(zerolog.InfoLevel, msg, fields) }
func (l *Logger) Debug(msg string, fields ...Field) { l.log(zerolog.DebugLevel, msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.log(zerolog.WarnLevel, msg, fields) }

// Error writes an error log entry including the supplied error context.
func (l *Logger) Error(err error, msg string, fields ...Field) {
	if l == nil {
		return
	}
	event := l.base.Error()
	if err != nil {
		event = event.Err(err)
	}
	for _, f := range fields {
		event = event.Interface(f.Key, f.Value)
	}
	event.Msg(msg)
}

func (l *Logger) log(level zerolog.Level, msg string, fields []Field) {
	if l == nil {
		return
	}
	event := l.base.WithLevel(level)
	for _, f := range fields {
		event = event.Interface(f.Key, f.Value)
	}
	event.Msg(msg)
}

// Field is a structured key/value pair attached to a single log call.
type Field struct {
	Key   string
	Value interface{}
}

// F constructs a Field, shortening call sites.
func F(key string, value interface{}) Field { return Field{Key: key, Value: value} }

// Armer exposes the attached FailureArmer so the engine facade can consult
// it after AfterEngineExecution. A nil Logger reports a nil (never-armed)
// FailureArmer.
func (l *Logger) Armer() *FailureArmer {
	if l == nil {
		return nil
	}
	return l.armer
}

// armingHook is a zerolog.Hook that trips the FailureArmer on qualifying
// records, independent of where in the codebase the log call originates.
type armingHook struct {
	armer *FailureArmer
}

func (h armingHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	h.armer.observe(level)
}

// FailureArmer counts log records at or above a configured threshold
// level and, once armed, causes the engine to report a combined failure
// even when every phase individually succeeded (spec.md §7/§9: a noisy
// run can fail the whole execution without any single module erroring).
type FailureArmer struct {
	threshold zerolog.Level
	enabled   bool
	armed     atomic.Bool
	count     atomic.Int64
}

// NewFailureArmer builds an armer for the given level name. An empty level
// disables arming entirely: Armed() always reports false.
func NewFailureArmer(level string) (*FailureArmer, error) {
	if level == "" {
		return &FailureArmer{enabled: false}, nil
	}
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, err
	}
	return &FailureArmer{threshold: parsed, enabled: true}, nil
}

func (a *FailureArmer) observe(level zerolog.Level) {
	if a == nil || !a.enabled {
		return
	}
	if level < a.threshold {
		return
	}
	a.count.Add(1)
	a.armed.Store(true)
}

// Armed reports whether at least one qualifying record has been observed
// since the last Reset.
func (a *FailureArmer) Armed() bool {
	if a == nil {
		return false
	}
	return a.armed.Load()
}

// Count returns the number of qualifying records observed since the last
// Reset.
func (a *FailureArmer) Count() int64 {
	if a == nil {
		return 0
	}
	return a.count.Load()
}

// Reset clears the armed state and counter, called at the start of every
// engine Execute call.
func (a *FailureArmer) Reset() {
	if a == nil {
		return
	}
	a.armed.Store(false)
	a.count.Store(0)
}
