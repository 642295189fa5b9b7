package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	verbose        bool
	nonInteractive bool
	engineConfig   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "pipelinectl",
		Short:         "pipelinectl drives the document-pipeline execution engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&flags.nonInteractive, "non-interactive", false, "force the non-interactive summary renderer")
	cmd.PersistentFlags().StringVar(&flags.engineConfig, "engine-config", "", "path to an EngineConfig YAML file (optional)")

	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newListCmd(flags))
	cmd.AddCommand(newValidateCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
