package adapters

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStreamFactoryInMemoryStreamRoundTrips(t *testing.T) {
	t.Parallel()
	factory := NewMemoryStreamFactory(nil, nil)

	wc, provider, err := factory.NewStream(false)
	require.NoError(t, err)
	_, err = wc.Write([]byte("rendered content"))
	require.NoError(t, err)
	require.NoError(t, wc.Close())

	rc, err := provider.Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc.(io.Reader))
	require.NoError(t, err)
	require.Equal(t, "rendered content", string(data))
}

func TestMemoryStreamFactoryFileBackedStreamUsesFileSystem(t *testing.T) {
	t.Parallel()
	fs := NewMemoryFileSystem("output", "tmp")
	n := 0
	factory := NewMemoryStreamFactory(fs, func() string {
		n++
		return "tmp/stream-1"
	})

	wc, provider, err := factory.NewStream(true)
	require.NoError(t, err)
	_, err = wc.Write([]byte("spilled"))
	require.NoError(t, err)
	require.NoError(t, wc.Close())

	require.Contains(t, fs.WrittenFiles(), "tmp/stream-1")

	rc, err := provider.Open()
	require.NoError(t, err)
	data, _ := io.ReadAll(rc.(io.Reader))
	require.Equal(t, "spilled", string(data))
}

func TestMemoryStreamFactoryReopenIsIndependentOfFirstRead(t *testing.T) {
	t.Parallel()
	factory := NewMemoryStreamFactory(nil, nil)
	wc, provider, _ := factory.NewStream(false)
	wc.Write([]byte("abc"))
	wc.Close()

	first, _ := provider.Open()
	io.ReadAll(first.(io.Reader))
	first.Close()

	second, err := provider.Open()
	require.NoError(t, err)
	data, _ := io.ReadAll(second.(io.Reader))
	require.Equal(t, "abc", string(data))
}
