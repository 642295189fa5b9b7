package modules

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forgepages/pipeline/internal/pipeline"
)

func TestPassthroughReturnsInputUnchanged(t *testing.T) {
	t.Parallel()
	m, err := NewPassthrough(nil)
	require.NoError(t, err)

	in := pipeline.NewBatch(pipeline.NewDocument("a", "a"))
	out, err := m.Execute(&fakeExecutionContext{inputs: in})
	require.NoError(t, err)
	require.Same(t, in, out)
}
