package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrRelayStopped is returned by Handle when the relay is not running.
var ErrRelayStopped = errors.New("signal relay not running")

// RedisPublisher is the subset of *redis.Client used by the relay.
type RedisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RelayObserver counts relay outcomes ("published", "retried", "dropped").
type RelayObserver interface {
	RecordSignalRelay(outcome string)
}

// RelayConfig configures the relay worker pool.
type RelayConfig struct {
	Channel    string
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Observer   RelayObserver
	Logger     *zap.Logger
}

// Envelope is the wire format published on the Redis channel.
type Envelope struct {
	Type       SignalType      `json:"type"`
	StudentID  string          `json:"student_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

type relayJob struct {
	envelope Envelope
	attempt  int
}

// Relay forwards signals to a Redis pub/sub channel so that out-of-process
// consumers (warning issuance, archival) can react. Its Handle method is a bus
// handler; publishing to Redis happens on background workers.
type Relay struct {
	client     RedisPublisher
	channel    string
	workers    int
	maxRetries int
	retryDelay time.Duration
	observer   RelayObserver
	logger     *zap.Logger

	jobs    chan relayJob
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewRelay builds a relay. Call Start before subscribing Handle.
func NewRelay(client RedisPublisher, cfg RelayConfig) *Relay {
	if cfg.Channel == "" {
		cfg.Channel = "consecutivity:signals"
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 64
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Relay{
		client:     client,
		channel:    cfg.Channel,
		workers:    cfg.Workers,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		observer:   cfg.Observer,
		logger:     cfg.Logger,
		jobs:       make(chan relayJob, cfg.BufferSize),
	}
}

// Start launches the workers. Safe to call once.
func (r *Relay) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.ctx, r.cancel = context.WithCancel(ctx)
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker()
	}
	r.started = true
	r.logger.Sugar().Infow("signal relay started", "channel", r.channel, "workers", r.workers)
}

// Stop cancels the workers and waits for them to exit. Buffered signals that
// were not yet published are dropped.
func (r *Relay) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	r.cancel()
	r.started = false
	r.mu.Unlock()
	r.wg.Wait()
	r.logger.Sugar().Infow("signal relay stopped", "channel", r.channel)
}

// Handle enqueues the signal for publication. It blocks while the buffer is
// full until ctx or the relay is cancelled.
func (r *Relay) Handle(ctx context.Context, signal Signal) error {
	r.mu.Lock()
	relayCtx := r.ctx
	started := r.started
	r.mu.Unlock()
	if !started {
		return ErrRelayStopped
	}

	payload, err := json.Marshal(signal)
	if err != nil {
		return fmt.Errorf("marshal %s signal: %w", signal.Type(), err)
	}
	job := relayJob{envelope: Envelope{
		Type:       signal.Type(),
		StudentID:  signal.Subject(),
		OccurredAt: signal.OccurredAt(),
		Payload:    payload,
	}}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-relayCtx.Done():
		return ErrRelayStopped
	case r.jobs <- job:
		return nil
	}
}

func (r *Relay) worker() {
	defer r.wg.Done()
	for {
		select {
		case <-r.ctx.Done():
			return
		case job := <-r.jobs:
			r.deliver(job)
		}
	}
}

func (r *Relay) deliver(job relayJob) {
	data, err := json.Marshal(job.envelope)
	if err != nil {
		r.record("dropped")
		r.logger.Error("marshal relay envelope", zap.Error(err))
		return
	}
	for {
		err := r.client.Publish(r.ctx, r.channel, data).Err()
		if err == nil {
			r.record("published")
			return
		}
		job.attempt++
		if job.attempt > r.maxRetries || r.ctx.Err() != nil {
			r.record("dropped")
			r.logger.Sugar().Errorw("signal relay gave up",
				"channel", r.channel, "signal", job.envelope.Type, "student_id", job.envelope.StudentID,
				"attempts", job.attempt, "error", err)
			return
		}
		r.record("retried")
		r.logger.Sugar().Warnw("signal relay publish failed, retrying",
			"channel", r.channel, "signal", job.envelope.Type, "attempt", job.attempt, "error", err)

		timer := time.NewTimer(r.retryDelay)
		select {
		case <-r.ctx.Done():
			timer.Stop()
			r.record("dropped")
			return
		case <-timer.C:
		}
	}
}

func (r *Relay) record(outcome string) {
	if r.observer != nil {
		r.observer.RecordSignalRelay(outcome)
	}
}
