package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/forgepages/pipeline/internal/adapters"
	"github.com/forgepages/pipeline/internal/engine"
	"github.com/forgepages/pipeline/internal/logging"
	"github.com/forgepages/pipeline/internal/pipeline"
	"github.com/forgepages/pipeline/internal/tui"
)

type runOptions struct {
	DocumentPath   string
	Pipelines      []string
	IncludeNormal  bool
	Verbose        bool
	NonInteractive bool
	EngineConfig   string
}

func newRunCmd(root *rootFlags) *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run <pipeline-document.yaml>",
		Short: "Execute the pipelines declared in a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.DocumentPath = args[0]
			opts.Verbose = root.verbose
			opts.EngineConfig = root.engineConfig
			opts.NonInteractive = root.nonInteractive || !term.IsTerminal(int(os.Stdout.Fd()))
			return runRun(cmd, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Pipelines, "pipeline", nil, "explicitly select a pipeline by name (repeatable); pulls in its dependencies regardless of policy")
	cmd.Flags().BoolVar(&opts.IncludeNormal, "all", false, "additionally select every Normal-policy pipeline")

	return cmd
}

func runRun(cmd *cobra.Command, opts runOptions) error {
	set, _, err := loadPipelineSet(opts.DocumentPath)
	if err != nil {
		return err
	}

	engCfg, err := loadEngineConfig(opts.EngineConfig)
	if err != nil {
		return err
	}

	level := "info"
	if opts.Verbose {
		level = "debug"
	}
	log, err := logging.New(logging.Options{
		Level:           level,
		HumanReadable:   true,
		FailureLogLevel: engCfg.FailureLogLevel,
	})
	if err != nil {
		return err
	}

	bus := engine.NewBus()
	eng := engine.New(set, bus, engine.Options{
		Parallelism: engCfg.Parallelism,
		Serial:      engCfg.Serial,
		Logger:      log,
	})
	defer eng.Dispose() //nolint:errcheck

	fs := adapters.NewMemoryFileSystem("output", "tmp")
	fs.ApplyCleanMode(engCfg.CleanMode) //nolint:errcheck
	streams := adapters.NewMemoryStreamFactory(fs, newTempNamer("tmp"))
	aggregator := engine.NewAggregator()
	analyzers := engine.NewAnalyzerSink()
	settings := pipeline.Settings{UseStringContentFiles: engCfg.UseStringContentFiles, Parallelism: engCfg.Parallelism}
	svc := engine.NewServices(fs, settings, aggregator, analyzers, streams)

	modelState := tui.NewModel(set, opts.NonInteractive)
	interactive := !opts.NonInteractive

	var program *tea.Program
	var programErr error
	done := make(chan struct{})

	// Module events are raised from the scheduler's per-phase goroutines,
	// so the non-interactive fallback (which mutates modelState directly
	// rather than going through the Bubbletea program's serialized
	// channel) needs its own lock.
	var modelMu sync.Mutex
	send := func(msg tea.Msg) {
		if interactive {
			if program != nil {
				program.Send(msg)
			}
			return
		}
		modelMu.Lock()
		defer modelMu.Unlock()
		updated, _ := modelState.Update(msg)
		if m, ok := updated.(tui.Model); ok {
			modelState = m
		}
	}
	tui.Attach(bus, send)

	if interactive {
		program = tea.NewProgram(modelState)
		go func() {
			_, programErr = program.Run()
			close(done)
		}()
	}

	ctx := context.Background()
	_, execErr := eng.Execute(ctx, engine.ExecuteOptions{
		Pipelines:     opts.Pipelines,
		IncludeNormal: opts.IncludeNormal,
		Services:      svc,
		Aggregator:    aggregator,
	})

	if interactive {
		if program != nil {
			program.Send(tea.QuitMsg{})
		}
		<-done
		if programErr != nil {
			return programErr
		}
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), modelState.View())
		fmt.Fprintln(cmd.OutOrStdout(), aggregator.RenderTable())
		fmt.Fprintln(cmd.OutOrStdout(), aggregator.RenderTimeline())
	}

	return execErr
}

// newTempNamer returns a nextTmp closure for MemoryStreamFactory, naming
// successive temp streams under dir deterministically.
func newTempNamer(dir string) func() string {
	var n int
	return func() string {
		n++
		return fmt.Sprintf("%s/stream-%d", dir, n)
	}
}
