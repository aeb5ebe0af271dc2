package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"orgscan/internal/jobs"
	"orgscan/internal/logging"
)

// jobTimeout bounds one pipeline run on the consumer side. Generous because a
// cold directory service with rate-limit waits can take minutes.
const jobTimeout = 5 * time.Minute

// Bus wraps a NATS connection shared by the publisher and the worker pool.
type Bus struct {
	conn *nats.Conn
}

// ConnectBus dials the message bus. Reconnects indefinitely; a daemon should
// survive broker restarts.
func ConnectBus(url string) (*Bus, error) {
	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect message bus: %w", err)
	}
	return &Bus{conn: conn}, nil
}

// Close drains the connection, letting in-flight deliveries finish.
func (b *Bus) Close() error {
	if b.conn == nil {
		return nil
	}
	return b.conn.Drain()
}

// Publisher dispatches jobs onto the bus for a worker pool to consume.
type Publisher struct {
	bus     *Bus
	subject string
	store   *jobs.Store
	logger  *slog.Logger
}

// NewPublisher constructs a bus-backed dispatcher.
func NewPublisher(bus *Bus, subject string, store *jobs.Store, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Publisher{bus: bus, subject: subject, store: store, logger: logger}
}

// Dispatch records a task token on the job and publishes the task message.
func (p *Publisher) Dispatch(ctx context.Context, jobID, filePath string) (string, error) {
	taskID, err := stampTask(ctx, p.store, jobID)
	if err != nil {
		return "", err
	}

	payload, err := encodeTask(Task{TaskID: taskID, JobID: jobID, FilePath: filePath})
	if err != nil {
		return "", err
	}
	if err := p.bus.conn.Publish(p.subject, payload); err != nil {
		return "", fmt.Errorf("publish task: %w", err)
	}

	p.logger.Info("task published",
		logging.String("job_id", jobID),
		logging.String("task_id", taskID),
		logging.String("subject", p.subject),
	)
	return taskID, nil
}

// Close is a no-op; the shared bus is closed by its owner.
func (p *Publisher) Close() error { return nil }

// Pool consumes task messages on a queue group so concurrent workers split
// the stream without double-processing.
type Pool struct {
	runner Runner
	logger *slog.Logger
	subs   []*nats.Subscription
}

// StartPool subscribes count workers to the subject under one queue group.
func StartPool(bus *Bus, subject, queueGroup string, count int, runner Runner, logger *slog.Logger) (*Pool, error) {
	if count < 1 {
		count = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Pool{runner: runner, logger: logger}
	for i := 0; i < count; i++ {
		sub, err := bus.conn.QueueSubscribe(subject, queueGroup, p.handle)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("subscribe worker %d: %w", i, err)
		}
		p.subs = append(p.subs, sub)
	}
	logger.Info("worker pool listening",
		logging.String("subject", subject),
		logging.String("queue_group", queueGroup),
		logging.Int("workers", count),
	)
	return p, nil
}

func (p *Pool) handle(msg *nats.Msg) {
	task, err := decodeTask(msg.Data)
	if err != nil {
		p.logger.Warn("dropping malformed task message", logging.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := p.runner.Process(ctx, task.JobID, task.FilePath); err != nil {
		p.logger.Error("job run failed",
			logging.String("job_id", task.JobID),
			logging.String("task_id", task.TaskID),
			logging.Error(err),
		)
	}
}

// Close unsubscribes every worker.
func (p *Pool) Close() error {
	var firstErr error
	for _, sub := range p.subs {
		if err := sub.Unsubscribe(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.subs = nil
	return firstErr
}
