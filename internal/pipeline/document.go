package pipeline

// ContentProvider is a lazy stream source attached to a Document. Concrete
// implementations (disk files, in-memory buffers, network fetches) are
// external collaborators; the engine only ever calls Open.
type ContentProvider interface {
	Open() (ReadCloser, error)
}

// ReadCloser mirrors io.ReadCloser without importing io here, keeping this
// package free of anything beyond what the data model needs.
type ReadCloser interface {
	Read(p []byte) (n int, err error)
	Close() error
}

// Document is an immutable value produced by one module and consumed by the
// next. Two Documents are never compared for equality; identity (for
// caching purposes) is reference identity on the *Document pointer.
type Document struct {
	SourcePath string
	DestPath   string
	Metadata   *Metadata
	Content    ContentProvider
}

// NewDocument constructs a Document with an initialized, empty Metadata map.
func NewDocument(sourcePath, destPath string) *Document {
	return &Document{SourcePath: sourcePath, DestPath: destPath, Metadata: NewMetadata()}
}

// WithMetadata returns the same Document after setting a metadata key. The
// engine never mutates a Document once handed to a module, so this helper is
// only safe to use while a Document is still being constructed by its
// producing module.
func (d *Document) WithMetadata(key string, value interface{}) *Document {
	if d.Metadata == nil {
		d.Metadata = NewMetadata()
	}
	d.Metadata.Set(key, value)
	return d
}

// WithContent attaches a lazy content provider.
func (d *Document) WithContent(provider ContentProvider) *Document {
	d.Content = provider
	return d
}

// Metadata is an ordered string-keyed mapping. Ordering matters for
// reproducible rendering of document metadata (e.g. front-matter dumps);
// lookups stay O(1) via a side index.
type Metadata struct {
	keys  []string
	index map[string]int
	vals  []interface{}
}

// NewMetadata constructs an empty, ordered metadata map.
func NewMetadata() *Metadata {
	return &Metadata{index: make(map[string]int)}
}

// Get returns the value for key and whether it was present.
func (m *Metadata) Get(key string) (interface{}, bool) {
	if m == nil {
		return nil, false
	}
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.vals[i], true
}

// Set inserts or overwrites a key, preserving first-insertion order.
func (m *Metadata) Set(key string, value interface{}) {
	if i, ok := m.index[key]; ok {
		m.vals[i] = value
		return
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.vals = append(m.vals, value)
}

// Keys returns the metadata keys in insertion order.
func (m *Metadata) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of metadata entries.
func (m *Metadata) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Clone returns a defensive shallow copy of the metadata map.
func (m *Metadata) Clone() *Metadata {
	if m == nil {
		return NewMetadata()
	}
	clone := &Metadata{
		keys:  append([]string(nil), m.keys...),
		vals:  append([]interface{}(nil), m.vals...),
		index: make(map[string]int, len(m.index)),
	}
	for k, v := range m.index {
		clone.index[k] = v
	}
	return clone
}
