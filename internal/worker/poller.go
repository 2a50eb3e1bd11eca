package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/jonesrussell/crc-worker/internal/logging"
)

// defaultPollInterval is used when no interval is configured.
const defaultPollInterval = 10 * time.Second

// Poller drives the worker: every tick it drains the request queue, one
// claimed request at a time.
type Poller struct {
	worker       *Worker
	logger       logging.Logger
	pollInterval time.Duration
	running      atomic.Bool
	stopChan     chan struct{}
}

// PollerConfig holds poller configuration.
type PollerConfig struct {
	PollInterval time.Duration
}

// NewPoller creates a new poller.
func NewPoller(w *Worker, logger logging.Logger, cfg PollerConfig) *Poller {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}

	return &Poller{
		worker:       w,
		logger:       logger,
		pollInterval: cfg.PollInterval,
		stopChan:     make(chan struct{}),
	}
}

// Start starts the poller.
func (p *Poller) Start(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return errors.New("poller is already running")
	}

	p.logger.Info("Poller starting", logging.Duration("poll_interval", p.pollInterval))

	go p.run(ctx)

	return nil
}

// Stop stops the poller. Safe to call from any goroutine and idempotent.
func (p *Poller) Stop() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}

	p.logger.Info("Poller stopping")
	close(p.stopChan)
}

// IsRunning returns whether the poller is currently running.
func (p *Poller) IsRunning() bool {
	return p.running.Load()
}

// run is the main polling loop.
func (p *Poller) run(ctx context.Context) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	// Drain immediately on start
	p.drain(ctx)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Poller stopped due to context cancellation")
			return
		case <-p.stopChan:
			p.logger.Info("Poller stopped")
			return
		case <-ticker.C:
			p.drain(ctx)
		}
	}
}

// drain processes claimed requests until the queue is empty or the poller
// is told to stop. A claim failure ends the drain; the next tick retries.
func (p *Poller) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopChan:
			return
		default:
		}

		claimed, err := p.worker.ProcessNext(ctx)
		if err != nil {
			p.logger.Error("Failed to claim next request", logging.Error(err))
			return
		}
		if !claimed {
			return
		}
	}
}
