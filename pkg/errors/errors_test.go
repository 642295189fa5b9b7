package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCauseChain(t *testing.T) {
	t.Parallel()

	underlying := fmt.Errorf("unexpected token")
	err := Wrap(CodeConfig, "failed to parse document", underlying)

	require.True(t, stdErrors.Is(err, underlying))
	require.Contains(t, err.Error(), "CONFIG_ERROR")
	require.Contains(t, err.Error(), "failed to parse document")
}

func TestIsComparesByCode(t *testing.T) {
	t.Parallel()

	a := New(CodeCycle, "cycle detected in pipeline-a")
	b := New(CodeCycle, "cycle detected in pipeline-b")
	c := New(CodeConfig, "missing dependency")

	require.True(t, stdErrors.Is(a, b))
	require.False(t, stdErrors.Is(a, c))
}

func TestWithContextMergesWithoutMutatingOriginal(t *testing.T) {
	t.Parallel()

	base := New(CodeValidation, "invalid policy")
	enriched := base.WithContext(map[string]interface{}{"field": "policy"})

	require.Nil(t, base.Context)
	require.Equal(t, "policy", enriched.Context["field"])
}

func TestWithBreadcrumbAddsOnlyNonEmptyFields(t *testing.T) {
	t.Parallel()

	err := New(CodeExecution, "module failed").WithBreadcrumb("release", "process", "static")

	require.Equal(t, "release", err.Context["pipeline"])
	require.Equal(t, "process", err.Context["phase"])
	require.Equal(t, "static", err.Context["module"])

	bare := New(CodeExecution, "module failed").WithBreadcrumb("", "", "")
	require.Empty(t, bare.Context)
}

func TestConfigErrorCarriesContext(t *testing.T) {
	t.Parallel()

	err := ConfigError("unknown dependency", map[string]interface{}{"pipeline": "release", "missing": "build"})

	require.Equal(t, CodeConfig, err.Code)
	require.Equal(t, "build", err.Context["missing"])
}

func TestSkippedErrorWrapsDependencyCause(t *testing.T) {
	t.Parallel()

	cause := New(CodeExecution, "build failed")
	err := SkippedError("release/input", cause)

	require.Equal(t, CodeSkipped, err.Code)
	require.True(t, stdErrors.Is(err, cause))
	require.Equal(t, "release/input", err.Context["phase_id"])
}

func TestErrorStringOnNilReceiver(t *testing.T) {
	t.Parallel()

	var err *Error
	require.Equal(t, "<nil>", err.Error())
	require.Nil(t, err.Unwrap())
}
