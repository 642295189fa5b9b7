// Package adapters provides concrete, in-process default implementations
// of the engine's collaborator interfaces, so the module runs standalone
// without a host application wiring real infrastructure.
package adapters

import (
	"bytes"
	"sort"
	"sync"

	"github.com/forgepages/pipeline/internal/pipeline"
	pipelineerr "github.com/forgepages/pipeline/pkg/errors"
)

// memoryReadCloser adapts a byte slice to pipeline.ReadCloser.
type memoryReadCloser struct {
	*bytes.Reader
}

func (memoryReadCloser) Close() error { return nil }

// memoryWriteCloser buffers writes into a named slot of the owning
// filesystem, committing on Close.
type memoryWriteCloser struct {
	fs   *MemoryFileSystem
	path string
	buf  bytes.Buffer
}

func (w *memoryWriteCloser) Write(p []byte) (int, error) { return w.buf.Write(p) }

func (w *memoryWriteCloser) Close() error {
	w.fs.mu.Lock()
	defer w.fs.mu.Unlock()
	w.fs.files[w.path] = append([]byte(nil), w.buf.Bytes()...)
	w.fs.written[w.path] = struct{}{}
	return nil
}

// MemoryFileSystem is an in-process pipeline.FileSystem: reads resolve
// against a preloaded file set, writes land in memory and are tracked for
// CleanWritten. There is no real temp or output directory; EnsureOutputDir
// and EnsureTempDir are no-ops, matching an in-memory collaborator with no
// disk footprint.
type MemoryFileSystem struct {
	mu        sync.RWMutex
	files     map[string][]byte
	written   map[string]struct{}
	roots     map[string][]string // root -> enumerated input paths
	outputDir string
	tempDir   string
	ranOnce   bool // true once ApplyCleanMode has run at least once
}

// NewMemoryFileSystem constructs an empty in-memory filesystem.
func NewMemoryFileSystem(outputDir, tempDir string) *MemoryFileSystem {
	return &MemoryFileSystem{
		files:     make(map[string][]byte),
		written:   make(map[string]struct{}),
		roots:     make(map[string][]string),
		outputDir: outputDir,
		tempDir:   tempDir,
	}
}

// Seed preloads a readable file at path, used by tests to populate inputs.
func (fs *MemoryFileSystem) Seed(path string, content []byte) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.files[path] = append([]byte(nil), content...)
}

// SeedRoot registers the set of paths EnumerateInputs returns for root.
func (fs *MemoryFileSystem) SeedRoot(root string, paths []string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.roots[root] = append([]string(nil), paths...)
}

func (fs *MemoryFileSystem) EnumerateInputs(root string) ([]string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	paths, ok := fs.roots[root]
	if !ok {
		return nil, pipelineerr.New(pipelineerr.CodeExecution, "unknown input root").
			WithContext(map[string]interface{}{"root": root})
	}
	out := append([]string(nil), paths...)
	sort.Strings(out)
	return out, nil
}

func (fs *MemoryFileSystem) OutputDir() string { return fs.outputDir }
func (fs *MemoryFileSystem) TempDir() string   { return fs.tempDir }

func (fs *MemoryFileSystem) EnsureOutputDir() error { return nil }
func (fs *MemoryFileSystem) EnsureTempDir() error   { return nil }

// CleanOutputDir drops every written file whose path is under OutputDir.
func (fs *MemoryFileSystem) CleanOutputDir() error {
	return fs.cleanPrefix(fs.outputDir)
}

// CleanTempDir drops every written file whose path is under TempDir.
func (fs *MemoryFileSystem) CleanTempDir() error {
	return fs.cleanPrefix(fs.tempDir)
}

func (fs *MemoryFileSystem) cleanPrefix(prefix string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for path := range fs.written {
		if hasPrefix(path, prefix) {
			delete(fs.files, path)
			delete(fs.written, path)
		}
	}
	return nil
}

// CleanWritten drops every file this filesystem has written, regardless
// of location.
func (fs *MemoryFileSystem) CleanWritten() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for path := range fs.written {
		delete(fs.files, path)
	}
	fs.written = make(map[string]struct{})
	return nil
}

// ApplyCleanMode performs the one-time cleanup a run's CleanMode setting
// requests before execution starts. Temp is wiped unconditionally. The
// very first call ever made against this filesystem always performs a
// full output-directory wipe regardless of mode, since there is no
// "last run" to clean from yet; every call after that honors mode:
// "self" deletes only the files this filesystem wrote last time (the
// written set as it stood at the start of this call), "full" wipes the
// entire output directory, and "none" leaves it untouched.
func (fs *MemoryFileSystem) ApplyCleanMode(mode string) error {
	if err := fs.CleanTempDir(); err != nil {
		return err
	}

	fs.mu.Lock()
	first := !fs.ranOnce
	fs.ranOnce = true
	fs.mu.Unlock()

	if first {
		return fs.CleanOutputDir()
	}

	switch mode {
	case "self":
		return fs.CleanWritten()
	case "full":
		return fs.CleanOutputDir()
	}
	return nil
}

func (fs *MemoryFileSystem) Open(path string) (pipeline.ReadCloser, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	content, ok := fs.files[path]
	if !ok {
		return nil, pipelineerr.New(pipelineerr.CodeExecution, "file not found").
			WithContext(map[string]interface{}{"path": path})
	}
	return memoryReadCloser{bytes.NewReader(content)}, nil
}

func (fs *MemoryFileSystem) Create(path string) (pipeline.WriteCloser, error) {
	return &memoryWriteCloser{fs: fs, path: path}, nil
}

// TrackWritten records a path as written without going through Create,
// used by modules that produce content in memory and hand it to the
// batch directly rather than streaming through a WriteCloser.
func (fs *MemoryFileSystem) TrackWritten(path string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.written[path] = struct{}{}
}

func (fs *MemoryFileSystem) WrittenFiles() []string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	out := make([]string, 0, len(fs.written))
	for path := range fs.written {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

func hasPrefix(path, prefix string) bool {
	if prefix == "" {
		return false
	}
	return len(path) >= len(prefix) && path[:len(prefix)] == prefix
}

var _ pipeline.FileSystem = (*MemoryFileSystem)(nil)
