package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PromptSource drops expired entry prompts
type PromptSource interface {
	Sweep() int
	Pending() int
}

// SweeperConfig holds configuration for the prompt sweeper
type SweeperConfig struct {
	Interval time.Duration
}

// DefaultSweeperConfig returns default configuration
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{Interval: time.Minute}
}

// PromptSweeper periodically evicts expired entry prompts so abandoned
// forms do not pile up between lookups
type PromptSweeper struct {
	config  SweeperConfig
	prompts PromptSource
	logger  *zap.Logger

	mu         sync.RWMutex
	cancel     context.CancelFunc
	done       chan struct{}
	isRunning  bool
	sweptTotal int
}

// NewPromptSweeper creates a new prompt sweeper
func NewPromptSweeper(config SweeperConfig, prompts PromptSource, logger *zap.Logger) *PromptSweeper {
	if config.Interval <= 0 {
		config.Interval = DefaultSweeperConfig().Interval
	}
	return &PromptSweeper{config: config, prompts: prompts, logger: logger}
}

// Start begins the sweep loop
func (w *PromptSweeper) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isRunning {
		return fmt.Errorf("prompt sweeper already running")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.isRunning = true

	go w.loop(loopCtx, w.done)

	w.logger.Info("PromptSweeper started", zap.Duration("interval", w.config.Interval))
	return nil
}

// Stop terminates the loop and waits for it to exit
func (w *PromptSweeper) Stop() error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = false
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	cancel()
	<-done

	w.logger.Info("PromptSweeper stopped", zap.Int("swept_total", w.SweptTotal()))
	return nil
}

// Name returns the worker name for identification
func (w *PromptSweeper) Name() string {
	return "PromptSweeper"
}

// SweptTotal returns how many prompts have been evicted so far
func (w *PromptSweeper) SweptTotal() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.sweptTotal
}

func (w *PromptSweeper) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *PromptSweeper) sweep() {
	n := w.prompts.Sweep()
	if n == 0 {
		return
	}

	w.mu.Lock()
	w.sweptTotal += n
	w.mu.Unlock()

	w.logger.Debug("Expired prompts swept",
		zap.Int("swept", n),
		zap.Int("pending", w.prompts.Pending()))
}
