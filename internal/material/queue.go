package material

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"pixelgraph/internal/packio"
)

// SaveQueue serializes document saves per key. While a save for a key is
// running, further saves for that key collapse into the most recent one.
// Different keys save concurrently.
type SaveQueue struct {
	save func(key string, p *Properties) error
	log  *zap.Logger

	mu      sync.Mutex
	pending map[string]*Properties
	running map[string]bool
	errs    []error
	wg      sync.WaitGroup
}

// NewSaveQueue creates a queue that writes documents through w, keyed by
// document path.
func NewSaveQueue(w packio.Writer, log *zap.Logger) *SaveQueue {
	return newSaveQueue(func(key string, p *Properties) error {
		return Save(w, key, p)
	}, log)
}

func newSaveQueue(save func(string, *Properties) error, log *zap.Logger) *SaveQueue {
	if log == nil {
		log = zap.NewNop()
	}
	return &SaveQueue{
		save:    save,
		log:     log,
		pending: make(map[string]*Properties),
		running: make(map[string]bool),
	}
}

// Enqueue schedules a save of a snapshot of p.
func (q *SaveQueue) Enqueue(key string, p *Properties) {
	snapshot := p.Clone()

	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending[key] = snapshot
	if q.running[key] {
		return
	}
	q.running[key] = true
	q.wg.Add(1)
	go q.drain(key)
}

func (q *SaveQueue) drain(key string) {
	defer q.wg.Done()
	for {
		q.mu.Lock()
		p, ok := q.pending[key]
		if !ok {
			delete(q.running, key)
			q.mu.Unlock()
			return
		}
		delete(q.pending, key)
		q.mu.Unlock()

		if err := q.save(key, p); err != nil {
			q.log.Error("save failed", zap.String("path", key), zap.Error(err))
			q.mu.Lock()
			q.errs = append(q.errs, err)
			q.mu.Unlock()
		}
	}
}

// Close waits for every pending save and returns the joined save errors.
func (q *SaveQueue) Close() error {
	q.wg.Wait()
	q.mu.Lock()
	defer q.mu.Unlock()
	return errors.Join(q.errs...)
}
