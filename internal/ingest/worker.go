package ingest

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Worker refreshes the dataset on a fixed interval.
type Worker struct {
	etl      *ETL
	log      *slog.Logger
	interval time.Duration
	timeout  time.Duration

	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
	started atomic.Bool
}

func NewWorker(etl *ETL, log *slog.Logger, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Worker{
		etl:      etl,
		log:      log,
		interval: interval,
		timeout:  2 * time.Minute,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs one refresh immediately, then one per interval, until Stop.
func (w *Worker) Start() {
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	w.log.Info("refresh worker started", slog.Duration("interval", w.interval))
	ticker := time.NewTicker(w.interval)
	go func() {
		defer close(w.done)
		defer ticker.Stop()
		w.runOnce()
		for {
			select {
			case <-ticker.C:
				w.runOnce()
			case <-w.stop:
				return
			}
		}
	}()
}

// Stop ends the loop and waits for an in-flight refresh to finish.
func (w *Worker) Stop() {
	w.once.Do(func() { close(w.stop) })
	if w.started.Load() {
		<-w.done
	}
}

func (w *Worker) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	go func() {
		select {
		case <-w.stop:
			cancel()
		case <-ctx.Done():
		}
	}()
	// Run logs its own outcome.
	_, _ = w.etl.Run(ctx)
}
