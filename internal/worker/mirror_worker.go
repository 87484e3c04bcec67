package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"till/internal/amqp"
	"till/internal/log"
	"till/internal/report"
)

// MirrorConfig holds configuration for the mirror worker
type MirrorConfig struct {
	// Interval is how often the mirror is refreshed without events (default: 5m)
	Interval time.Duration

	// Destination is passed to the writer; empty means the writer's default.
	Destination string
}

// DefaultMirrorConfig returns sensible defaults
func DefaultMirrorConfig() MirrorConfig {
	return MirrorConfig{Interval: 5 * time.Minute}
}

// MirrorWorker keeps a remote copy of the daily workbook current. It rebuilds
// the whole workbook from the ledger on every refresh, so lost or duplicated
// events never leave the mirror inconsistent.
type MirrorWorker struct {
	engine *report.Engine
	writer report.Writer
	config MirrorConfig
	logger *log.Logger
	group  singleflight.Group

	mu         sync.Mutex
	running    bool
	stopCh     chan struct{}
	doneCh     chan struct{}
	lastOutput string
	lastRun    time.Time
}

func NewMirrorWorker(engine *report.Engine, writer report.Writer, config MirrorConfig, logger *log.Logger) *MirrorWorker {
	if config.Interval <= 0 {
		config.Interval = DefaultMirrorConfig().Interval
	}
	if logger == nil {
		logger = log.Default()
	}
	return &MirrorWorker{
		engine: engine,
		writer: writer,
		config: config,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// Refresh rebuilds the workbook and writes it. Concurrent callers share a
// single in-flight write.
func (w *MirrorWorker) Refresh(ctx context.Context) (string, error) {
	v, err, shared := w.group.Do("mirror", func() (any, error) {
		start := time.Now()
		wb, err := w.engine.Workbook(ctx)
		if err != nil {
			return "", fmt.Errorf("build workbook: %w", err)
		}
		out, err := w.engine.Write(ctx, w.writer, w.config.Destination, wb)
		if err != nil {
			return "", err
		}

		w.mu.Lock()
		w.lastOutput = out
		w.lastRun = time.Now()
		w.mu.Unlock()

		w.logger.InfoContext(ctx, "Mirror refreshed",
			log.FieldOperation, log.OpMirror,
			log.FieldDestination, out,
			log.FieldDuration, time.Since(start).Milliseconds())
		return out, nil
	})
	if err != nil {
		return "", err
	}
	if shared {
		w.logger.DebugContext(ctx, "Mirror refresh coalesced")
	}
	return v.(string), nil
}

// HandleLedgerEvent refreshes the mirror after a ledger write.
func (w *MirrorWorker) HandleLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	w.logger.InfoContext(ctx, "Processing ledger event",
		log.FieldEventKind, ev.Kind,
		"id", ev.ID)
	if _, err := w.Refresh(ctx); err != nil {
		return fmt.Errorf("mirror after %s %d: %w", ev.Kind, ev.ID, err)
	}
	return nil
}

// Start begins the periodic refresh loop. Returns an error if already running.
func (w *MirrorWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("mirror worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	go w.runLoop(ctx, stopCh, doneCh)

	w.logger.InfoContext(ctx, "Mirror worker started", "interval", w.config.Interval)
	return nil
}

// Stop gracefully stops the loop and waits for completion.
func (w *MirrorWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		w.logger.InfoContext(ctx, "Mirror worker stopped gracefully")
	case <-ctx.Done():
		w.logger.WarnContext(ctx, "Mirror worker stop timed out")
		return ctx.Err()
	}

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
	return nil
}

// IsRunning returns whether the loop is currently running
func (w *MirrorWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// LastRun returns the destination and time of the last successful refresh.
func (w *MirrorWorker) LastRun() (string, time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastOutput, w.lastRun
}

func (w *MirrorWorker) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	// Refresh immediately on startup
	w.refreshLogged(ctx)

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.refreshLogged(ctx)
		}
	}
}

func (w *MirrorWorker) refreshLogged(ctx context.Context) {
	if _, err := w.Refresh(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Periodic mirror refresh failed",
			log.NewFields().
				WithOperation(log.OpMirror).
				WithError(err, log.ErrorTypeExport).
				ToSlice()...)
	}
}
