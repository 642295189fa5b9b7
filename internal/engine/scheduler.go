package engine

import (
	"context"
	"sync"
	"time"

	"github.com/forgepages/pipeline/internal/logging"
	"github.com/forgepages/pipeline/internal/pipeline"
	pipelineerr "github.com/forgepages/pipeline/pkg/errors"
)

// node is the scheduler's working state for one phase: a latch (done,
// closed exactly once) other phases continue on, plus whether this phase
// ran at all and whether it failed or was skipped.
type node struct {
	phase   *pipeline.Phase
	done    chan struct{}
	active  bool // this phase's pipeline is part of the current selection
	failed  bool
	skipped bool
}

// Scheduler drives one Execute call's phase graph to completion: a
// latch/continuation scheduler where each phase task waits on its
// dependencies' latches rather than being grouped into synchronized
// levels, so an unrelated branch keeps advancing while one is blocked.
type Scheduler struct {
	bus         *Bus
	aggregator  *Aggregator
	services    pipeline.Services
	logger      *logging.Logger
	parallelism int
}

// NewScheduler constructs a Scheduler. parallelism <= 0 means uncapped.
func NewScheduler(bus *Bus, aggregator *Aggregator, services pipeline.Services, logger *logging.Logger, parallelism int) *Scheduler {
	return &Scheduler{bus: bus, aggregator: aggregator, services: services, logger: logger, parallelism: parallelism}
}

// Run executes graph (a topologically sorted phase array) restricted to
// pipelines named in selected, running independent phases concurrently and
// honoring cooperative cancellation. It returns the first error encountered; phases
// unaffected by that error still run to completion (the dependency-skip
// cascade only propagates to phases actually downstream of the failure).
func (s *Scheduler) Run(ctx context.Context, graph []*pipeline.Phase, selected map[string]bool) error {
	return s.run(ctx, graph, selected, false)
}

// RunSerial is Run with concurrency disabled: phases still execute in
// graph's topological order, but strictly one at a time.
func (s *Scheduler) RunSerial(ctx context.Context, graph []*pipeline.Phase, selected map[string]bool) error {
	return s.run(ctx, graph, selected, true)
}

func (s *Scheduler) run(ctx context.Context, graph []*pipeline.Phase, selected map[string]bool, serial bool) error {
	nodes := make(map[*pipeline.Phase]*node, len(graph))
	for _, ph := range graph {
		active := selected[pipeline.NormalizeName(ph.Pipeline.Name)]
		nodes[ph] = &node{phase: ph, done: make(chan struct{}), active: active}
	}

	var gateTargets []*node
	for _, ph := range graph {
		n := nodes[ph]
		if n.active && !ph.Pipeline.Deployment && ph.Kind == pipeline.Output {
			gateTargets = append(gateTargets, n)
		}
	}

	var errMu sync.Mutex
	var firstErr error
	recordErr := func(err error) {
		if err == nil {
			return
		}
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errMu.Unlock()
	}

	var gateWG sync.WaitGroup
	gateWG.Add(1)
	go func() {
		defer gateWG.Done()
		for _, t := range gateTargets {
			<-t.done
		}
		if _, err := s.bus.Raise(ctx, BeforeDeployment, &BeforeDeploymentArgs{}); err != nil {
			recordErr(err)
		}
	}()

	var sem chan struct{}
	if s.parallelism > 0 {
		sem = make(chan struct{}, s.parallelism)
	}

	runOne := func(n *node) {
		defer close(n.done)

		for _, dep := range n.phase.Dependencies {
			<-nodes[dep].done
		}

		if !n.active {
			return
		}

		if cascadeFailed(n.phase, nodes) {
			n.skipped = true
			err := pipelineerr.SkippedError(n.phase.ID(), nil)
			recordErr(err)
			return
		}

		if ctx.Err() != nil {
			n.skipped = true
			recordErr(pipelineerr.Wrap(pipelineerr.CodeCancelled, "execution cancelled before phase start", ctx.Err()).
				WithContext(map[string]interface{}{"phase": n.phase.ID()}))
			return
		}

		if sem != nil {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				n.skipped = true
				recordErr(pipelineerr.Wrap(pipelineerr.CodeCancelled, "execution cancelled waiting for a worker slot", ctx.Err()).
					WithContext(map[string]interface{}{"phase": n.phase.ID()}))
				return
			}
		}

		if err := s.executePhase(ctx, n); err != nil {
			n.failed = true
			recordErr(err)
		}
	}

	if serial {
		for _, ph := range graph {
			runOne(nodes[ph])
		}
	} else {
		var wg sync.WaitGroup
		for _, ph := range graph {
			wg.Add(1)
			n := nodes[ph]
			go func() {
				defer wg.Done()
				runOne(n)
			}()
		}
		wg.Wait()
	}

	gateWG.Wait()
	return firstErr
}

// cascadeFailed reports whether any immediate dependency of ph failed or
// was itself skipped, per the dependency-skip cascade: a phase is skipped
// (never executed) when its join of selected dependencies did not all
// complete successfully.
func cascadeFailed(ph *pipeline.Phase, nodes map[*pipeline.Phase]*node) bool {
	for _, dep := range ph.Dependencies {
		dn := nodes[dep]
		if dn.active && (dn.failed || dn.skipped) {
			return true
		}
	}
	return false
}

func (s *Scheduler) executePhase(ctx context.Context, n *node) error {
	ph := n.phase
	pipelineName := ph.Pipeline.Name

	input := s.inputsFor(ph)
	start := time.Now()

	outputs, err := runModuleChain(ctx, s.bus, pipelineName, ph, ph.Modules, input, s.services)
	elapsed := time.Since(start)

	if err != nil {
		if s.logger != nil {
			s.logger.Error(err, "phase execution failed",
				logging.F("pipeline", pipelineName), logging.F("phase", ph.Kind.String()))
		}
		return err
	}

	s.aggregator.Store(pipelineName, pipeline.PhaseResult{
		Kind:      ph.Kind,
		Outputs:   outputs,
		StartedAt: start.UnixNano(),
		ElapsedMS: elapsed.Milliseconds(),
	})

	if s.logger != nil {
		s.logger.Debug("phase completed",
			logging.F("pipeline", pipelineName), logging.F("phase", ph.Kind.String()),
			logging.F("documents", outputs.Len()), logging.F("elapsed_ms", elapsed.Milliseconds()))
	}
	return nil
}

// inputsFor returns ph's intra-pipeline predecessor's output batch: Process
// receives Input's outputs, PostProcess receives Process's, Output receives
// PostProcess's, and Input always receives the empty batch. ph.Dependencies
// additionally holds cross-pipeline gating edges (added by the graph
// builder to order execution against other pipelines' phases), but those
// never contribute to a phase's own input batch — cross-pipeline data is
// read explicitly through ctx.Services().Outputs().
func (s *Scheduler) inputsFor(ph *pipeline.Phase) *pipeline.Batch {
	if ph.Predecessor == nil {
		return pipeline.Empty()
	}
	return s.aggregator.outputFor(ph.Predecessor)
}
