package adapters

import (
	"bytes"

	"github.com/forgepages/pipeline/internal/pipeline"
)

// bufferStream is a WriteCloser/ContentProvider pair sharing one buffer: a
// module writes through the WriteCloser, and the returned ContentProvider
// re-reads the same bytes on every Open call. This backs the
// UseStringContentFiles=false path (content kept in memory rather than
// spilled to a temp file).
type bufferStream struct {
	buf *bytes.Buffer
}

func (s *bufferStream) Write(p []byte) (int, error) { return s.buf.Write(p) }
func (s *bufferStream) Close() error                { return nil }

func (s *bufferStream) Open() (pipeline.ReadCloser, error) {
	return memoryReadCloser{bytes.NewReader(s.buf.Bytes())}, nil
}

// MemoryStreamFactory implements pipeline.StreamFactory entirely in
// memory: useFile is honored only in that a file-backed stream is routed
// through the owning filesystem's Create, while a non-file stream stays
// in a private buffer.
type MemoryStreamFactory struct {
	fs      *MemoryFileSystem
	nextTmp func() string
}

// NewMemoryStreamFactory builds a stream factory that spills file-backed
// streams into fs's temp directory, naming each with nextTmp.
func NewMemoryStreamFactory(fs *MemoryFileSystem, nextTmp func() string) *MemoryStreamFactory {
	return &MemoryStreamFactory{fs: fs, nextTmp: nextTmp}
}

func (f *MemoryStreamFactory) NewStream(useFile bool) (pipeline.WriteCloser, pipeline.ContentProvider, error) {
	if !useFile || f.fs == nil || f.nextTmp == nil {
		buf := &bufferStream{buf: &bytes.Buffer{}}
		return buf, buf, nil
	}

	path := f.nextTmp()
	wc, err := f.fs.Create(path)
	if err != nil {
		return nil, nil, err
	}
	provider := fileContentProvider{fs: f.fs, path: path}
	return wc, provider, nil
}

type fileContentProvider struct {
	fs   *MemoryFileSystem
	path string
}

func (p fileContentProvider) Open() (pipeline.ReadCloser, error) {
	return p.fs.Open(p.path)
}

var _ pipeline.StreamFactory = (*MemoryStreamFactory)(nil)
