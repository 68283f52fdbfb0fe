package persistence

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultQueueSize bounds the number of entries waiting for the writer.
	DefaultQueueSize = 256
	maxBatch         = 32
	flushTimeout     = 5 * time.Second
)

// Writer queues journal entries and appends them from a background
// goroutine. Record never blocks; a full queue drops the entry.
type Writer struct {
	repo    JournalRepository
	logger  *slog.Logger
	queue   chan JournalEntry
	now     func() time.Time
	dropped atomic.Int64
	written atomic.Int64
}

// NewWriter builds a writer over repo. size <= 0 selects DefaultQueueSize.
func NewWriter(repo JournalRepository, logger *slog.Logger, size int) *Writer {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		repo:   repo,
		logger: logger.With("component", "journal"),
		queue:  make(chan JournalEntry, size),
		now:    time.Now,
	}
}

// Record enqueues entry, filling in the id and timestamp when missing.
func (w *Writer) Record(ctx context.Context, entry JournalEntry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = w.now()
	}

	select {
	case w.queue <- entry:
	default:
		w.dropped.Add(1)
		w.logger.WarnContext(ctx, "journal queue full, dropping entry",
			"kind", string(entry.Kind),
			"subject", entry.Subject,
		)
	}
}

// Run appends queued entries until ctx is cancelled, then flushes what is
// left in the queue.
func (w *Writer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.flush()
			return
		case entry := <-w.queue:
			batch := w.drain([]JournalEntry{entry})
			w.write(ctx, batch)
		}
	}
}

func (w *Writer) drain(batch []JournalEntry) []JournalEntry {
	for len(batch) < maxBatch {
		select {
		case entry := <-w.queue:
			batch = append(batch, entry)
		default:
			return batch
		}
	}
	return batch
}

func (w *Writer) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	for {
		batch := w.drain(nil)
		if len(batch) == 0 {
			return
		}
		w.write(ctx, batch)
	}
}

func (w *Writer) write(ctx context.Context, batch []JournalEntry) {
	if err := w.repo.AppendEntries(ctx, batch...); err != nil {
		w.logger.ErrorContext(ctx, "journal write failed",
			"entries", len(batch),
			"error", err,
		)
		return
	}
	w.written.Add(int64(len(batch)))
}

// Dropped reports how many entries were discarded because the queue was full.
func (w *Writer) Dropped() int64 {
	return w.dropped.Load()
}

// Written reports how many entries reached the repository.
func (w *Writer) Written() int64 {
	return w.written.Load()
}
