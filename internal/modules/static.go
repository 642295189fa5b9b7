// Package modules provides a small set of reference module
// implementations used to exercise the engine in tests and examples.
// They are registered by type name the same way a real content-generation
// module catalog would be, but deliberately stay generic: emitting a
// fixed document, passing a batch through unchanged, fanning out over
// each document in a batch, and branching between two nested chains.
package modules

import (
	"io"

	"github.com/forgepages/pipeline/internal/pipeline"
	pipelineerr "github.com/forgepages/pipeline/pkg/errors"
)

// staticConfig is the decoded form of a "static" module's declarative
// config map.
type staticConfig struct {
	DestPath string
	Content  string
}

func decodeStaticConfig(raw map[string]interface{}) (staticConfig, error) {
	var cfg staticConfig
	dest, _ := raw["dest_path"].(string)
	content, _ := raw["content"].(string)
	if dest == "" {
		return cfg, pipelineerr.ConfigError("static module requires dest_path", nil)
	}
	cfg.DestPath = dest
	cfg.Content = content
	return cfg, nil
}

// staticModule emits a single document carrying a fixed in-memory
// content string, ignoring whatever batch it was handed. It is the
// simplest possible Input-phase module.
type staticModule struct {
	name string
	cfg  staticConfig
}

// NewStatic builds a module that unconditionally emits one document with
// the configured destination path and content.
func NewStatic(config map[string]interface{}) (pipeline.Module, error) {
	cfg, err := decodeStaticConfig(config)
	if err != nil {
		return nil, err
	}
	return &staticModule{name: "static", cfg: cfg}, nil
}

func (m *staticModule) Name() string { return m.name }

func (m *staticModule) Execute(ctx pipeline.ExecutionContext) (*pipeline.Batch, error) {
	doc := pipeline.NewDocument("", m.cfg.DestPath).
		WithContent(stringContent(m.cfg.Content))
	return pipeline.NewBatch(doc), nil
}

// stringContent adapts a plain string into a pipeline.ContentProvider
// without touching the stream factory; fine for small fixed payloads.
type stringContent string

func (s stringContent) Open() (pipeline.ReadCloser, error) {
	return &stringReadCloser{data: string(s)}, nil
}

type stringReadCloser struct {
	data string
	pos  int
}

func (r *stringReadCloser) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

func (r *stringReadCloser) Close() error { return nil }
