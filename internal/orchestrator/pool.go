package orchestrator

import (
	"context"
	"sync"

	"github.com/kelsos/teknify/internal/client"
	"github.com/kelsos/teknify/internal/logger"
	"github.com/kelsos/teknify/internal/models"
	"github.com/kelsos/teknify/internal/task"
)

// Observer is notified about task progress. Started is called from worker
// goroutines, Completed only from the goroutine running the batch.
type Observer interface {
	Started(req models.UploadRequest)
	Completed(outcome models.TaskOutcome)
}

type nopObserver struct{}

func (nopObserver) Started(models.UploadRequest)   {}
func (nopObserver) Completed(models.TaskOutcome) {}

// Pool uploads files using a fixed set of workers.
type Pool struct {
	Workers  int
	Mode     models.OutputMode
	uploader client.Uploader
	observer Observer
}

// New creates a new upload pool. A nil observer is allowed.
func New(workers int, mode models.OutputMode, uploader client.Uploader, observer Observer) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Pool{Workers: workers, Mode: mode, uploader: uploader, observer: observer}
}

// Run dispatches one task per file in input order and returns once an outcome
// has been collected for every file. Outcomes are in completion order.
// A failing file never stops the others.
func (p *Pool) Run(ctx context.Context, files []string) []models.TaskOutcome {
	outcomes := make([]models.TaskOutcome, 0, len(files))
	if len(files) == 0 {
		return outcomes
	}

	workers := p.Workers
	if workers > len(files) {
		workers = len(files)
	}

	requests := make(chan models.UploadRequest)
	results := make(chan models.TaskOutcome, workers)

	go func() {
		defer close(requests)
		for i, path := range files {
			requests <- models.UploadRequest{Path: path, SequenceID: i}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for req := range requests {
				p.observer.Started(req)
				results <- task.Run(ctx, p.uploader, req, p.Mode)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	for outcome := range results {
		p.observer.Completed(outcome)
		outcomes = append(outcomes, outcome)
	}

	if len(outcomes) != len(files) {
		logger.Error("Collected %d outcomes for %d files", len(outcomes), len(files))
	}

	return outcomes
}
