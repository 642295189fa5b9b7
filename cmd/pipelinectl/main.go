// Command pipelinectl is the out-of-core CLI wrapper around the pipeline
// execution engine: it loads a declarative pipeline document, builds the
// engine, and translates engine errors into process exit codes.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}
