// Package fileproc provides concurrent file processing that preserves input
// order, so downstream id assignment stays deterministic regardless of which
// worker finishes first.
package fileproc

import (
	"fmt"
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// ProgressFunc is called after each file is processed.
type ProgressFunc func()

// ErrorFunc is called when a file fails processing. If nil, failures are
// silently skipped.
type ErrorFunc func(path string, err error)

// ProcessingError ties a failure to the file that caused it.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ProcessingError) Unwrap() error {
	return e.Err
}

// MapIndexed processes files in parallel and returns results indexed by
// input position: results[i] corresponds to files[i]. Entries for failed
// files hold the zero value and ok[i] is false. If maxWorkers <= 0 it
// defaults to the number of CPUs.
func MapIndexed[T any](files []string, maxWorkers int, fn func(path string) (T, error), onProgress ProgressFunc, onError ErrorFunc) ([]T, []bool) {
	if len(files) == 0 {
		return nil, nil
	}
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}

	results := make([]T, len(files))
	ok := make([]bool, len(files))

	p := pool.New().WithMaxGoroutines(maxWorkers)
	for i, path := range files {
		p.Go(func() {
			result, err := fn(path)
			if err != nil {
				if onError != nil {
					onError(path, err)
				}
			} else {
				results[i] = result
				ok[i] = true
			}
			if onProgress != nil {
				onProgress()
			}
		})
	}
	p.Wait()

	return results, ok
}
