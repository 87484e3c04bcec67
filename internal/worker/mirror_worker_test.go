package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"till/internal/amqp"
	"till/internal/core"
	"till/internal/ledger/memory"
	"till/internal/report"
)

type countingWriter struct {
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
	err     error

	mu   sync.Mutex
	last report.Workbook
}

func (w *countingWriter) WriteWorkbook(_ context.Context, dest string, wb report.Workbook) (string, error) {
	w.calls.Add(1)
	if w.entered != nil {
		select {
		case w.entered <- struct{}{}:
		default:
		}
	}
	if w.release != nil {
		<-w.release
	}
	if w.err != nil {
		return "", w.err
	}
	w.mu.Lock()
	w.last = wb
	w.mu.Unlock()
	if dest == "" {
		dest = "https://docs.google.com/spreadsheets/d/test"
	}
	return dest, nil
}

func newEngine(t *testing.T) (*report.Engine, *memory.Store) {
	t.Helper()
	store := memory.New(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local) })
	return report.NewEngine(store, nil), store
}

func TestMirrorWorker_Refresh(t *testing.T) {
	ctx := context.Background()
	engine, store := newEngine(t)
	_, err := store.RecordSale(ctx, "Burger", core.Money{Cents: 2550}, "cash")
	require.NoError(t, err)

	writer := &countingWriter{}
	w := NewMirrorWorker(engine, writer, MirrorConfig{}, nil)

	out, err := w.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/test", out)
	assert.Equal(t, int32(1), writer.calls.Load())

	sales, ok := writer.last.Sheet(report.SheetSalesToday)
	require.True(t, ok)
	assert.Len(t, sales.Rows, 2)

	lastOut, lastRun := w.LastRun()
	assert.Equal(t, out, lastOut)
	assert.False(t, lastRun.IsZero())
}

func TestMirrorWorker_RefreshError(t *testing.T) {
	engine, _ := newEngine(t)
	w := NewMirrorWorker(engine, &countingWriter{err: errors.New("quota exceeded")}, MirrorConfig{}, nil)

	_, err := w.Refresh(context.Background())
	var eerr *core.ExportError
	require.True(t, errors.As(err, &eerr), "got %v", err)

	lastOut, _ := w.LastRun()
	assert.Empty(t, lastOut)
}

func TestMirrorWorker_RefreshCoalesces(t *testing.T) {
	engine, _ := newEngine(t)
	writer := &countingWriter{entered: make(chan struct{}, 1), release: make(chan struct{})}
	w := NewMirrorWorker(engine, writer, MirrorConfig{}, nil)

	ctx := context.Background()
	results := make(chan error, 6)
	go func() {
		_, err := w.Refresh(ctx)
		results <- err
	}()
	<-writer.entered

	var started sync.WaitGroup
	for i := 0; i < 5; i++ {
		started.Add(1)
		go func() {
			started.Done()
			_, err := w.Refresh(ctx)
			results <- err
		}()
	}
	started.Wait()
	time.Sleep(100 * time.Millisecond)
	close(writer.release)

	for i := 0; i < 6; i++ {
		assert.NoError(t, <-results)
	}
	assert.Equal(t, int32(1), writer.calls.Load(), "concurrent refreshes share one write")
}

func TestMirrorWorker_HandleLedgerEvent(t *testing.T) {
	engine, _ := newEngine(t)
	writer := &countingWriter{}
	w := NewMirrorWorker(engine, writer, MirrorConfig{}, nil)

	err := w.HandleLedgerEvent(context.Background(), amqp.NewLedgerEvent(amqp.EventSaleRecorded, 1))
	require.NoError(t, err)
	assert.Equal(t, int32(1), writer.calls.Load())

	writer.err = errors.New("boom")
	err = w.HandleLedgerEvent(context.Background(), amqp.NewLedgerEvent(amqp.EventExpenseRecorded, 2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mirror after expense_recorded 2")
}

func TestMirrorWorker_StartStop(t *testing.T) {
	engine, _ := newEngine(t)
	writer := &countingWriter{}
	w := NewMirrorWorker(engine, writer, MirrorConfig{Interval: 10 * time.Millisecond}, nil)

	ctx := context.Background()
	require.NoError(t, w.Start(ctx))
	assert.True(t, w.IsRunning())
	assert.Error(t, w.Start(ctx), "second start must fail")

	assert.Eventually(t, func() bool { return writer.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, w.Stop(stopCtx))
	assert.False(t, w.IsRunning())
	assert.NoError(t, w.Stop(stopCtx), "stopping a stopped worker is a no-op")
}

func TestNewMirrorWorker_Defaults(t *testing.T) {
	engine, _ := newEngine(t)
	w := NewMirrorWorker(engine, &countingWriter{}, MirrorConfig{}, nil)
	assert.Equal(t, DefaultMirrorConfig().Interval, w.config.Interval)
}
