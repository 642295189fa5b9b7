package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forgepages/pipeline/internal/graph"
)

func newValidateCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <pipeline-document.yaml>",
		Short: "Build the phase graph without executing, surfacing configuration errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0])
		},
	}
	return cmd
}

func runValidate(cmd *cobra.Command, documentPath string) error {
	set, _, err := loadPipelineSet(documentPath)
	if err != nil {
		return err
	}

	phases, err := graph.Build(set)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "ok: %d pipelines, %d phases\n", set.Len(), len(phases))
	return nil
}
