package sim

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"
)

// Job is one independent run. Build is called on the worker goroutine so
// every run owns its world and controller.
type Job struct {
	Name   string
	Build  func() (*Runner, error)
	Config Config
}

// RunParallel runs jobs concurrently. Results keep the order of jobs; a
// failed job leaves a nil or partial result and its error is combined into
// the returned error.
func RunParallel(ctx context.Context, jobs []Job) ([]*Result, error) {
	results := make([]*Result, len(jobs))
	errs := make([]error, len(jobs))

	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(idx int, job Job) {
			defer wg.Done()

			runner, err := job.Build()
			if err == nil {
				results[idx], err = runner.Run(ctx, job.Config)
			}
			if err != nil {
				errs[idx] = fmt.Errorf("%s: %w", job.Name, err)
			}
		}(i, job)
	}

	wg.Wait()

	return results, multierr.Combine(errs...)
}
