package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/forgepages/pipeline/internal/graph"
)

func newListCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <pipeline-document.yaml>",
		Short: "List registered pipelines and their resolved phase order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args[0])
		},
	}
	return cmd
}

func runList(cmd *cobra.Command, documentPath string) error {
	set, _, err := loadPipelineSet(documentPath)
	if err != nil {
		return err
	}

	phases, err := graph.Build(set)
	if err != nil {
		return err
	}

	writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "ORDER\tPIPELINE\tPHASE\tPOLICY\tDEPLOYMENT")
	for i, ph := range phases {
		fmt.Fprintf(writer, "%d\t%s\t%s\t%s\t%v\n",
			i+1, ph.Pipeline.Name, ph.Kind, ph.Pipeline.EffectivePolicy(), ph.Pipeline.Deployment)
	}
	return writer.Flush()
}
