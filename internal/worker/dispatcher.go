package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"orgscan/internal/jobs"
	"orgscan/internal/logging"
)

// Runner executes the processing pipeline for one job.
type Runner interface {
	Process(ctx context.Context, jobID, filePath string) error
}

// Dispatcher hands accepted uploads off for background processing and returns
// the task token recorded on the job.
type Dispatcher interface {
	Dispatch(ctx context.Context, jobID, filePath string) (string, error)
	Close() error
}

// Inline runs jobs on goroutines inside the API process. It is the default
// when no message bus is configured.
type Inline struct {
	store  *jobs.Store
	runner Runner
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewInline constructs the in-process dispatcher.
func NewInline(store *jobs.Store, runner Runner, logger *slog.Logger) *Inline {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Inline{store: store, runner: runner, logger: logger}
}

// Dispatch records a task token on the job and starts processing on a fresh
// goroutine. The pipeline runs on a background context so an upload request
// finishing does not cancel the work it queued.
func (d *Inline) Dispatch(ctx context.Context, jobID, filePath string) (string, error) {
	taskID, err := stampTask(ctx, d.store, jobID)
	if err != nil {
		return "", err
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.runner.Process(context.Background(), jobID, filePath); err != nil {
			d.logger.Error("background job run failed",
				logging.String("job_id", jobID),
				logging.String("task_id", taskID),
				logging.Error(err),
			)
		}
	}()
	return taskID, nil
}

// Close waits for in-flight jobs to finish.
func (d *Inline) Close() error {
	d.wg.Wait()
	return nil
}

func stampTask(ctx context.Context, store *jobs.Store, jobID string) (string, error) {
	taskID := uuid.NewString()
	job, err := store.Update(ctx, jobID, func(j *jobs.Job) error {
		j.TaskID = taskID
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("record task token: %w", err)
	}
	if job == nil {
		return "", fmt.Errorf("job %s not found", jobID)
	}
	return taskID, nil
}
