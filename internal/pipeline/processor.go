package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"orgscan/internal/jobs"
	"orgscan/internal/logging"
	"orgscan/internal/pdftext"
	"orgscan/internal/services"
)

// NameExtractor infers an organization name from document text.
type NameExtractor interface {
	ExtractName(ctx context.Context, text string) string
}

// Resolver maps an organization name to directory data.
type Resolver interface {
	Resolve(ctx context.Context, name string) (*jobs.OrgProfile, []jobs.MemberSummary, error)
}

// Processor drives one job through the pipeline states. All collaborators are
// injected at construction; the processor holds no ambient state.
type Processor struct {
	store     *jobs.Store
	extractor pdftext.Extractor
	names     NameExtractor
	directory Resolver
	logger    *slog.Logger

	// delay simulates long-running work in the async variant. Off by default;
	// an ops/testing knob, not a pipeline guarantee.
	delay time.Duration
}

// Option configures optional processor behavior.
type Option func(*Processor)

// WithSimulatedDelay makes each run pause before extraction.
func WithSimulatedDelay(delay time.Duration) Option {
	return func(p *Processor) {
		if delay > 0 {
			p.delay = delay
		}
	}
}

// New constructs a processor with explicit collaborators.
func New(store *jobs.Store, extractor pdftext.Extractor, names NameExtractor, directory Resolver, logger *slog.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Processor{
		store:     store,
		extractor: extractor,
		names:     names,
		directory: directory,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs the pipeline for one job: pending -> processing, extraction,
// name inference, directory lookup, then a single terminal commit. Every
// invocation lands the job in completed or failed; the returned error reports
// store-level trouble only, never a job outcome. The uploaded source file is
// removed on the way out regardless of outcome.
func (p *Processor) Process(ctx context.Context, jobID, filePath string) (err error) {
	logger := p.logger.With(logging.String("job_id", jobID))
	started := time.Now()

	defer p.removeSource(logger, filePath)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("pipeline panic", logging.Any("panic", r))
			err = p.markFailed(ctx, logger, jobID, fmt.Sprintf("unexpected error: %v", r))
		}
	}()

	job, err := p.store.Update(ctx, jobID, func(j *jobs.Job) error {
		if j.Status.IsTerminal() {
			return fmt.Errorf("job %s already %s", j.ID, j.Status)
		}
		j.SetProcessing()
		return nil
	})
	if err != nil {
		return fmt.Errorf("transition to processing: %w", err)
	}
	if job == nil {
		return fmt.Errorf("job %s: %w", jobID, services.ErrNotFound)
	}

	logger.Info("job processing started", logging.String("filename", job.Filename))

	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
		}
	}

	text, extractErr := p.extractor.Extract(ctx, filePath)
	if extractErr != nil {
		// Malformed input is not transient; the job fails with the original
		// message and any partial enrichment is discarded.
		logger.Warn("text extraction failed", logging.Error(extractErr))
		return p.markFailed(ctx, logger, jobID, services.Message(extractErr))
	}

	name := p.names.ExtractName(ctx, text)

	var (
		profile *jobs.OrgProfile
		members []jobs.MemberSummary
	)
	if name != "" {
		profile, members, err = p.directory.Resolve(ctx, name)
		if err != nil {
			// Lookup faults degrade to absent enrichment.
			logger.Warn("directory lookup failed", logging.String("company", name), logging.Error(err))
			profile, members = nil, nil
		}
	}

	job, err = p.store.Update(ctx, jobID, func(j *jobs.Job) error {
		j.CompanyName = name
		if err := j.SetOrgProfile(profile); err != nil {
			return err
		}
		if profile == nil {
			members = nil
		}
		if err := j.SetMembers(members); err != nil {
			return err
		}
		j.SetCompleted()
		return nil
	})
	if err != nil {
		return fmt.Errorf("persist completion: %w", err)
	}
	if job == nil {
		return fmt.Errorf("job %s vanished mid-pipeline: %w", jobID, services.ErrNotFound)
	}

	logger.Info("job completed",
		logging.String("company", job.CompanyName),
		logging.Int("members", job.MembersCount()),
		logging.Duration("duration", time.Since(started)),
	)
	return nil
}

func (p *Processor) markFailed(ctx context.Context, logger *slog.Logger, jobID, message string) error {
	job, err := p.store.Update(ctx, jobID, func(j *jobs.Job) error {
		j.SetFailed(message)
		return nil
	})
	if err != nil {
		return fmt.Errorf("persist failure: %w", err)
	}
	if job == nil {
		return fmt.Errorf("job %s: %w", jobID, services.ErrNotFound)
	}
	logger.Info("job failed", logging.String("error_message", message))
	return nil
}

// removeSource deletes the transient uploaded file. Its own failure is logged,
// never surfaced as the job's outcome.
func (p *Processor) removeSource(logger *slog.Logger, filePath string) {
	if filePath == "" {
		return
	}
	if err := os.Remove(filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("failed to remove uploaded file", logging.String("path", filePath), logging.Error(err))
	}
}
