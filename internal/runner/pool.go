package runner

import (
	"context"
	"fmt"
)

type Job func() error

// RunSequential executes jobs strictly one after another. A failing job does
// not stop the ones after it; once ctx is done the remaining jobs are skipped.
// Returns all errors.
func RunSequential(ctx context.Context, jobs []Job) []error {
	var errs []error
	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("skipped %d remaining jobs: %w", len(jobs)-i, err))
			break
		}
		if err := job(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
