package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// Run executes jobs across n workers and returns one result per executed
// job, in completion order. When ctx is canceled, unstarted jobs are
// dropped; running jobs see the cancellation through their own ctx.
func Run(ctx context.Context, n int, jobs []Job) []Result {
	if len(jobs) == 0 {
		return nil
	}
	if n <= 0 {
		n = 1
	}
	if n > len(jobs) {
		n = len(jobs)
	}

	in := make(chan Job)
	out := make(chan Result, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range in {
				out <- job.Execute(ctx)
			}
		}()
	}

	go func() {
		defer close(in)
		for _, job := range jobs {
			select {
			case in <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(out)

	results := make([]Result, 0, len(jobs))
	for r := range out {
		results = append(results, r)
	}
	return results
}
