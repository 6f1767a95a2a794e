package queue

import (
	"compsage/server/internal/models"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// IngestQueue is an in-memory queue for imported listing batches
type IngestQueue struct {
	items    chan []models.PropertyRecord
	done     chan struct{}
	maxSize  int
	closed   bool
	mu       sync.RWMutex
	logger   *logrus.Logger
	handlers []func([]models.PropertyRecord) error
}

// NewIngestQueue creates a new ingest queue with the specified buffer size
func NewIngestQueue(bufferSize int, logger *logrus.Logger) *IngestQueue {
	return &IngestQueue{
		items:    make(chan []models.PropertyRecord, bufferSize),
		done:     make(chan struct{}),
		maxSize:  bufferSize,
		logger:   logger,
		handlers: make([]func([]models.PropertyRecord) error, 0),
	}
}

// Push adds a batch of properties to the queue without blocking. A full
// queue rejects the batch with ErrQueueFull so importers can report
// backpressure instead of stalling.
func (q *IngestQueue) Push(properties []models.PropertyRecord) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.items <- properties:
		q.logger.WithField("batch_size", len(properties)).Debug("Pushed batch to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler function that will be called for each batch
func (q *IngestQueue) Subscribe(handler func([]models.PropertyRecord) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start launches worker goroutines that dispatch queued batches to the
// subscribed handlers
func (q *IngestQueue) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		go q.process()
	}
}

// process handles the queue processing loop
func (q *IngestQueue) process() {
	for {
		select {
		case <-q.done:
			return
		case batch, ok := <-q.items:
			if !ok {
				return
			}
			q.processBatch(batch)
		}
	}
}

// processBatch sends the batch to all subscribed handlers
func (q *IngestQueue) processBatch(batch []models.PropertyRecord) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).Error("Handler failed to process batch")
		}
	}
}

// Close stops the queue and prevents new items from being added
func (q *IngestQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	q.closed = true
	close(q.done)
	close(q.items)
	return nil
}

// Len returns the current number of batches in the queue
func (q *IngestQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed
func (q *IngestQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
