package cmd

import (
	stderrors "errors"
	"fmt"
	"os"

	"soa-reconciliation-engine/pkg/errors"
)

// HandleError prints the error with its suggestion, if any, and returns the
// process exit code mapped from the error category.
func HandleError(err error) int {
	if err == nil {
		return 0
	}

	var re *errors.ReconcilerError
	if stderrors.As(err, &re) {
		fmt.Fprintf(os.Stderr, "Error: %s\n", re.Message)
		if re.Suggestion != "" {
			fmt.Fprintf(os.Stderr, "Suggestion: %s\n", re.Suggestion)
		}
		return re.GetExitCode()
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}
