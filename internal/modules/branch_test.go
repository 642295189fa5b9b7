package modules

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forgepages/pipeline/internal/pipeline"
)

func TestBranchPartitionsByMetadataAndRunsBothChains(t *testing.T) {
	t.Parallel()
	reg := newTestRegistry(t)
	factory := NewBranchFactory(reg)

	m, err := factory(map[string]interface{}{
		"metadata_key":   "lang",
		"metadata_value": "en",
		"match":          []interface{}{map[string]interface{}{"type": "passthrough"}},
		"no_match":       []interface{}{map[string]interface{}{"type": "passthrough"}},
	})
	require.NoError(t, err)

	en := pipeline.NewDocument("en.md", "en.md").WithMetadata("lang", "en")
	fr := pipeline.NewDocument("fr.md", "fr.md").WithMetadata("lang", "fr")

	out, err := m.Execute(&fakeExecutionContext{inputs: pipeline.NewBatch(en, fr)})
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())
	require.Equal(t, "en.md", out.At(0).SourcePath)
	require.Equal(t, "fr.md", out.At(1).SourcePath)
}

func TestBranchSkipsEmptyPartitionWithoutRunningItsChain(t *testing.T) {
	t.Parallel()
	reg := newTestRegistry(t)
	factory := NewBranchFactory(reg)

	m, err := factory(map[string]interface{}{
		"metadata_key":   "lang",
		"metadata_value": "en",
		"match":          []interface{}{map[string]interface{}{"type": "passthrough"}},
	})
	require.NoError(t, err)

	en := pipeline.NewDocument("en.md", "en.md").WithMetadata("lang", "en")
	out, err := m.Execute(&fakeExecutionContext{inputs: pipeline.NewBatch(en)})
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
}

func TestBranchPassesThroughUnchangedWhenChainUnset(t *testing.T) {
	t.Parallel()
	reg := newTestRegistry(t)
	factory := NewBranchFactory(reg)

	m, err := factory(map[string]interface{}{"metadata_key": "lang", "metadata_value": "en"})
	require.NoError(t, err)

	en := pipeline.NewDocument("en.md", "en.md").WithMetadata("lang", "en")
	out, err := m.Execute(&fakeExecutionContext{inputs: pipeline.NewBatch(en)})
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	require.Equal(t, "en.md", out.At(0).SourcePath)
}

func TestNewBranchFactoryRequiresMetadataKey(t *testing.T) {
	t.Parallel()
	reg := newTestRegistry(t)
	factory := NewBranchFactory(reg)
	_, err := factory(map[string]interface{}{})
	require.Error(t, err)
}
