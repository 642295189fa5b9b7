package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetadataSetPreservesFirstInsertionOrder(t *testing.T) {
	t.Parallel()
	m := NewMetadata()
	m.Set("b", 1)
	m.Set("a", 2)
	m.Set("b", 3) // overwrite, should not move

	require.Equal(t, []string{"b", "a"}, m.Keys())
	v, ok := m.Get("b")
	require.True(t, ok)
	require.Equal(t, 3, v)
}

func TestMetadataGetMissingKey(t *testing.T) {
	t.Parallel()
	m := NewMetadata()
	_, ok := m.Get("missing")
	require.False(t, ok)
}

func TestMetadataCloneIsIndependent(t *testing.T) {
	t.Parallel()
	m := NewMetadata()
	m.Set("k", "v")
	clone := m.Clone()
	clone.Set("k", "changed")

	orig, _ := m.Get("k")
	cloned, _ := clone.Get("k")
	require.Equal(t, "v", orig)
	require.Equal(t, "changed", cloned)
}

func TestNilMetadataIsSafe(t *testing.T) {
	t.Parallel()
	var m *Metadata
	require.Equal(t, 0, m.Len())
	require.Nil(t, m.Keys())
	_, ok := m.Get("x")
	require.False(t, ok)
}

func TestDocumentWithMetadataAndContent(t *testing.T) {
	t.Parallel()
	doc := NewDocument("src", "dst").WithMetadata("lang", "en")
	v, ok := doc.Metadata.Get("lang")
	require.True(t, ok)
	require.Equal(t, "en", v)
}
