package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forgepages/pipeline/internal/pipeline"
)

type stubModule struct{ name string }

func (s *stubModule) Name() string { return s.name }
func (s *stubModule) Execute(ctx pipeline.ExecutionContext) (*pipeline.Batch, error) {
	return pipeline.Empty(), nil
}

func stubFactory(config map[string]interface{}) (pipeline.Module, error) {
	return &stubModule{name: "stub"}, nil
}

func TestRegisterModuleRejectsDuplicateTypeName(t *testing.T) {
	t.Parallel()
	r := New(PolicyWarn)
	require.NoError(t, r.RegisterModule("stub", stubFactory))
	err := r.RegisterModule("stub", stubFactory)
	require.Error(t, err)
}

func TestBuildModuleRejectsUnknownType(t *testing.T) {
	t.Parallel()
	r := New(PolicyWarn)
	_, err := r.BuildModule("missing", nil)
	require.Error(t, err)
}

func TestBuildModuleDelegatesToFactory(t *testing.T) {
	t.Parallel()
	r := New(PolicyWarn)
	require.NoError(t, r.RegisterModule("stub", stubFactory))
	m, err := r.BuildModule("stub", map[string]interface{}{"x": 1})
	require.NoError(t, err)
	require.Equal(t, "stub", m.Name())
}

func TestModuleTypesIsSorted(t *testing.T) {
	t.Parallel()
	r := New(PolicyWarn)
	require.NoError(t, r.RegisterModule("zebra", stubFactory))
	require.NoError(t, r.RegisterModule("apple", stubFactory))
	require.Equal(t, []string{"apple", "zebra"}, r.ModuleTypes())
}

func TestValidateWarnsDisablesOnlyAffectedInitializer(t *testing.T) {
	t.Parallel()
	r := New(PolicyWarn)
	require.NoError(t, r.RegisterInitializer(Initializer{Name: "ok", Run: func(c *Registry) error { return nil }}))
	require.NoError(t, r.RegisterInitializer(Initializer{
		Name: "broken", Dependencies: []string{"missing"}, Run: func(c *Registry) error { return nil },
	}))

	require.NoError(t, r.Validate())
	require.Equal(t, []string{"broken"}, r.Disabled())
}

func TestValidateStrictFailsOnBrokenDependency(t *testing.T) {
	t.Parallel()
	r := New(PolicyStrict)
	require.NoError(t, r.RegisterInitializer(Initializer{
		Name: "broken", Dependencies: []string{"missing"}, Run: func(c *Registry) error { return nil },
	}))

	require.Error(t, r.Validate())
}

func TestValidateWarnsDisablesCycleMembers(t *testing.T) {
	t.Parallel()
	r := New(PolicyWarn)
	require.NoError(t, r.RegisterInitializer(Initializer{Name: "a", Dependencies: []string{"b"}, Run: func(c *Registry) error { return nil }}))
	require.NoError(t, r.RegisterInitializer(Initializer{Name: "b", Dependencies: []string{"a"}, Run: func(c *Registry) error { return nil }}))

	require.NoError(t, r.Validate())
	require.ElementsMatch(t, []string{"a", "b"}, r.Disabled())
}

func TestRunInitializersRunsInDependencyOrder(t *testing.T) {
	t.Parallel()
	r := New(PolicyWarn)
	var order []string
	require.NoError(t, r.RegisterInitializer(Initializer{
		Name: "base", Run: func(c *Registry) error { order = append(order, "base"); return nil },
	}))
	require.NoError(t, r.RegisterInitializer(Initializer{
		Name: "derived", Dependencies: []string{"base"},
		Run: func(c *Registry) error { order = append(order, "derived"); return nil },
	}))
	require.NoError(t, r.Validate())
	require.NoError(t, r.RunInitializers())
	require.Equal(t, []string{"base", "derived"}, order)
}

func TestRunInitializersSkipsDisabled(t *testing.T) {
	t.Parallel()
	r := New(PolicyWarn)
	ran := false
	require.NoError(t, r.RegisterInitializer(Initializer{
		Name: "broken", Dependencies: []string{"missing"},
		Run: func(c *Registry) error { ran = true; return nil },
	}))
	require.NoError(t, r.Validate())
	require.NoError(t, r.RunInitializers())
	require.False(t, ran)
}
