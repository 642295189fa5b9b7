package main

import (
	"errors"

	pipelineerr "github.com/forgepages/pipeline/pkg/errors"
)

// exitCodeFor maps the engine's error taxonomy onto process exit codes.
// Configuration/validation problems are distinguished from execution
// failures so scripts can tell "fix your document" apart from "a module
// failed" without parsing output.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	var perr *pipelineerr.Error
	if !errors.As(err, &perr) {
		return 1
	}
	switch perr.Code {
	case pipelineerr.CodeConfig, pipelineerr.CodeCycle, pipelineerr.CodeValidation:
		return 2
	case pipelineerr.CodeReentrancy, pipelineerr.CodeDisposed:
		return 3
	case pipelineerr.CodeCancelled:
		return 4
	default:
		return 1
	}
}
