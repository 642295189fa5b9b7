package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forgepages/pipeline/internal/pipeline"
	pipelineerr "github.com/forgepages/pipeline/pkg/errors"
)

func phaseByKind(phases []*pipeline.Phase, pipelineName string, kind pipeline.PhaseKind) *pipeline.Phase {
	for _, ph := range phases {
		if ph.Pipeline.Name == pipelineName && ph.Kind == kind {
			return ph
		}
	}
	return nil
}

func TestBuildIsolatedPipelineHasNoCrossLinks(t *testing.T) {
	t.Parallel()

	set := pipeline.NewSet()
	iso := pipeline.NewPipeline("assets")
	iso.Isolated = true
	require.NoError(t, set.Add(iso))

	phases, err := Build(set)
	require.NoError(t, err)
	require.Len(t, phases, 4)

	process := phaseByKind(phases, "assets", pipeline.Process)
	require.Len(t, process.Dependencies, 1)
	require.Equal(t, pipeline.Input, process.Dependencies[0].Kind)
}

func TestBuildWiresDependencyProcessChain(t *testing.T) {
	t.Parallel()

	set := pipeline.NewSet()
	require.NoError(t, set.Add(pipeline.NewPipeline("base")))
	child := pipeline.NewPipeline("site").DependsOn("base")
	require.NoError(t, set.Add(child))

	phases, err := Build(set)
	require.NoError(t, err)

	siteProcess := phaseByKind(phases, "site", pipeline.Process)
	baseProcess := phaseByKind(phases, "base", pipeline.Process)

	found := false
	for _, dep := range siteProcess.Dependencies {
		if dep == baseProcess {
			found = true
		}
	}
	require.True(t, found)
}

func TestBuildRejectsUnknownDependency(t *testing.T) {
	t.Parallel()

	set := pipeline.NewSet()
	require.NoError(t, set.Add(pipeline.NewPipeline("site").DependsOn("missing")))

	_, err := Build(set)
	require.Error(t, err)
	var perr *pipelineerr.Error
	require.ErrorAs(t, err, &perr)
	require.Equal(t, pipelineerr.CodeConfig, perr.Code)
}

func TestBuildRejectsDependencyOnIsolatedPipeline(t *testing.T) {
	t.Parallel()

	set := pipeline.NewSet()
	iso := pipeline.NewPipeline("assets")
	iso.Isolated = true
	require.NoError(t, set.Add(iso))
	require.NoError(t, set.Add(pipeline.NewPipeline("site").DependsOn("assets")))

	_, err := Build(set)
	require.Error(t, err)
}

func TestBuildRejectsIsolatedPipelineWithDependencies(t *testing.T) {
	t.Parallel()

	set := pipeline.NewSet()
	require.NoError(t, set.Add(pipeline.NewPipeline("base")))
	iso := pipeline.NewPipeline("assets").DependsOn("base")
	iso.Isolated = true
	require.NoError(t, set.Add(iso))

	_, err := Build(set)
	require.Error(t, err)
}

func TestBuildRejectsNonDeploymentDependingOnDeployment(t *testing.T) {
	t.Parallel()

	set := pipeline.NewSet()
	deploy := pipeline.NewPipeline("release")
	deploy.Deployment = true
	require.NoError(t, set.Add(deploy))
	require.NoError(t, set.Add(pipeline.NewPipeline("site").DependsOn("release")))

	_, err := Build(set)
	require.Error(t, err)
}

func TestBuildDetectsCycle(t *testing.T) {
	t.Parallel()

	set := pipeline.NewSet()
	require.NoError(t, set.Add(pipeline.NewPipeline("a").DependsOn("b")))
	require.NoError(t, set.Add(pipeline.NewPipeline("b").DependsOn("a")))

	_, err := Build(set)
	require.Error(t, err)
	var perr *pipelineerr.Error
	require.ErrorAs(t, err, &perr)
	require.Equal(t, pipelineerr.CodeCycle, perr.Code)
}

func TestBuildCrossLinksPostProcessAmongSiblings(t *testing.T) {
	t.Parallel()

	set := pipeline.NewSet()
	require.NoError(t, set.Add(pipeline.NewPipeline("site")))
	require.NoError(t, set.Add(pipeline.NewPipeline("blog")))

	phases, err := Build(set)
	require.NoError(t, err)

	sitePost := phaseByKind(phases, "site", pipeline.PostProcess)
	blogProcess := phaseByKind(phases, "blog", pipeline.Process)

	found := false
	for _, dep := range sitePost.Dependencies {
		if dep == blogProcess {
			found = true
		}
	}
	require.True(t, found, "non-isolated pipelines sharing the Deployment flag must cross-link PostProcess to siblings' Process")
}

func TestBuildGatesDeploymentInputOnNonDeploymentOutputs(t *testing.T) {
	t.Parallel()

	set := pipeline.NewSet()
	require.NoError(t, set.Add(pipeline.NewPipeline("site")))
	deploy := pipeline.NewPipeline("release")
	deploy.Deployment = true
	require.NoError(t, set.Add(deploy))

	phases, err := Build(set)
	require.NoError(t, err)

	releaseInput := phaseByKind(phases, "release", pipeline.Input)
	siteOutput := phaseByKind(phases, "site", pipeline.Output)

	found := false
	for _, dep := range releaseInput.Dependencies {
		if dep == siteOutput {
			found = true
		}
	}
	require.True(t, found)
}

func TestBuildTopologicalOrderRespectsDependencies(t *testing.T) {
	t.Parallel()

	set := pipeline.NewSet()
	require.NoError(t, set.Add(pipeline.NewPipeline("base")))
	require.NoError(t, set.Add(pipeline.NewPipeline("site").DependsOn("base")))

	phases, err := Build(set)
	require.NoError(t, err)

	position := make(map[string]int, len(phases))
	for i, ph := range phases {
		position[ph.ID()] = i
	}

	require.Less(t, position["base/Process"], position["site/Process"])
	for _, ph := range phases {
		for _, dep := range ph.Dependencies {
			require.Less(t, position[dep.ID()], position[ph.ID()], "%s must follow its dependency %s", ph.ID(), dep.ID())
		}
	}
}

func TestBuildIsolatedPipelineStillOrdersItsOwnFourPhases(t *testing.T) {
	t.Parallel()

	set := pipeline.NewSet()
	iso := pipeline.NewPipeline("assets")
	iso.Isolated = true
	require.NoError(t, set.Add(iso))

	phases, err := Build(set)
	require.NoError(t, err)

	position := make(map[pipeline.PhaseKind]int, 4)
	for i, ph := range phases {
		position[ph.Kind] = i
	}
	require.Less(t, position[pipeline.Input], position[pipeline.Process])
	require.Less(t, position[pipeline.Process], position[pipeline.PostProcess])
	require.Less(t, position[pipeline.PostProcess], position[pipeline.Output])
}
