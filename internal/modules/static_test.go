package modules

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forgepages/pipeline/internal/pipeline"
)

func readAll(t *testing.T, doc *pipeline.Document) string {
	t.Helper()
	rc, err := doc.Content.Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(readerFunc(rc.Read))
	require.NoError(t, err)
	return string(data)
}

type readerFunc func(p []byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) { return f(p) }

func TestNewStaticRequiresDestPath(t *testing.T) {
	t.Parallel()
	_, err := NewStatic(map[string]interface{}{"content": "x"})
	require.Error(t, err)
}

func TestStaticModuleEmitsFixedDocumentIgnoringInputs(t *testing.T) {
	t.Parallel()
	m, err := NewStatic(map[string]interface{}{"dest_path": "index.html", "content": "hello world"})
	require.NoError(t, err)

	out, err := m.Execute(&fakeExecutionContext{inputs: pipeline.NewBatch(pipeline.NewDocument("ignored", "ignored"))})
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	require.Equal(t, "index.html", out.At(0).DestPath)
	require.Equal(t, "hello world", readAll(t, out.At(0)))
}

func TestStringReadCloserReturnsIOEOFAtExhaustion(t *testing.T) {
	t.Parallel()
	rc := &stringReadCloser{data: "ab"}
	buf := make([]byte, 10)
	n, err := rc.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	n, err = rc.Read(buf)
	require.Equal(t, 0, n)
	require.ErrorIs(t, err, io.EOF)
}
