/*
Package runner fans a list of input files out over a bounded worker
pool and gathers the per-file results deterministically.

One file is one task: all parsing and transformation for a file happens
on a single worker. Results arrive in completion order but are sorted by
file name before they are returned, so downstream output never depends
on scheduling.
*/
package runner

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/hhandika/segul/sequence"
)

// Event is a progress notification. Progress reporting never influences
// control flow.
type Event int

const (
	FileStarted Event = iota
	FileCompleted
	FileFailed
)

// Progress receives an event for a file. It may be nil. Map serializes
// the callbacks with a mutex, so implementations need no locking.
type Progress func(event Event, file string)

// Result pairs one input file with what its worker produced.
type Result[T any] struct {
	File  string
	Value T
	Err   error
}

// Map runs fn over every file on up to workers goroutines. Zero workers
// means one per logical CPU.
//
// The first error stops new files from being dispatched; files already
// being processed run to completion so their outputs are not left half
// written. All errors are collected and returned joined, deduplicated
// by message. Results are sorted by alphanumeric file name and include
// only files whose fn succeeded.
func Map[T any](ctx context.Context, files []string, workers int, progress Progress, fn func(file string) (T, error)) ([]Result[T], error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if progress == nil {
		progress = func(Event, string) {}
	}

	var (
		group      errgroup.Group
		mu         sync.Mutex
		results    []Result[T]
		failures   []error
		stopped    atomic.Bool
		progressMu sync.Mutex
	)
	group.SetLimit(workers)

	notify := func(event Event, file string) {
		progressMu.Lock()
		progress(event, file)
		progressMu.Unlock()
	}

	for _, file := range files {
		file := file
		if stopped.Load() || ctx.Err() != nil {
			break
		}
		group.Go(func() error {
			notify(FileStarted, file)
			value, err := run(file, fn)
			if err != nil {
				stopped.Store(true)
				notify(FileFailed, file)
				mu.Lock()
				failures = append(failures, err)
				mu.Unlock()
				return nil
			}
			notify(FileCompleted, file)
			mu.Lock()
			results = append(results, Result[T]{File: file, Value: value})
			mu.Unlock()
			return nil
		})
	}
	group.Wait()

	sort.Slice(results, func(i, j int) bool {
		return sequence.CompareAlphanumeric(results[i].File, results[j].File) < 0
	})
	if err := ctx.Err(); err != nil && len(failures) == 0 {
		return results, err
	}
	return results, joinDeduplicated(failures)
}

// run executes fn with panic containment: a panicking worker reports an
// internal error for its file instead of taking the process down.
func run[T any](file string, fn func(file string) (T, error)) (value T, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = &sequence.InternalError{File: file, Cause: recovered}
		}
	}()
	return fn(file)
}

// joinDeduplicated joins errors, dropping repeats of the same message
// so a batch of files failing identically reads as one line.
func joinDeduplicated(failures []error) error {
	if len(failures) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(failures))
	var unique []error
	for _, failure := range failures {
		msg := failure.Error()
		if seen[msg] {
			continue
		}
		seen[msg] = true
		unique = append(unique, failure)
	}
	return errors.Join(unique...)
}
