package runner

import (
	"sync"
	"sync/atomic"
)

type Job func() error

// RunPool executes jobs with at most maxWorkers concurrently and returns all
// errors. With a single worker jobs run in order on the calling goroutine.
func RunPool(maxWorkers int, jobs []Job) []error {
	return RunPoolUntil(maxWorkers, jobs, nil)
}

// RunPoolUntil is RunPool, except that once stop reports true for a job's
// error no further jobs are started. Jobs already running finish. A nil stop
// never stops.
func RunPoolUntil(maxWorkers int, jobs []Job, stop func(error) bool) []error {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if maxWorkers == 1 {
		var errs []error
		for _, j := range jobs {
			if err := j(); err != nil {
				errs = append(errs, err)
				if stop != nil && stop(err) {
					break
				}
			}
		}
		return errs
	}

	var (
		mu      sync.Mutex
		errs    []error
		wg      sync.WaitGroup
		stopped atomic.Bool
	)
	sem := make(chan struct{}, maxWorkers)

	for _, job := range jobs {
		sem <- struct{}{}
		if stopped.Load() {
			<-sem
			break
		}
		wg.Add(1)
		go func(j Job) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := j(); err != nil {
				if stop != nil && stop(err) {
					stopped.Store(true)
				}
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(job)
	}
	wg.Wait()
	return errs
}
