// Package feed turns one-shot store reads into push-based subscriptions.
// Every write path calls Publish and each open stream receives a fresh,
// complete value for its key.
package feed

import (
	"context"
	"sync"
	"time"
)

// DefaultLoadTimeout bounds a single load when the hub is created without one
const DefaultLoadTimeout = 10 * time.Second

// Loader reads the current value for key. Returning false drops the event.
type Loader[K comparable, T any] func(ctx context.Context, key K) (T, bool)

// Hub fans values out to keyed streams
type Hub[K comparable, T any] struct {
	load    Loader[K, T]
	timeout time.Duration

	mu      sync.Mutex
	streams map[*Stream[K, T]]struct{}
	closed  bool
}

// NewHub creates a hub. A zero timeout selects DefaultLoadTimeout.
func NewHub[K comparable, T any](load Loader[K, T], timeout time.Duration) *Hub[K, T] {
	if timeout <= 0 {
		timeout = DefaultLoadTimeout
	}
	return &Hub[K, T]{
		load:    load,
		timeout: timeout,
		streams: make(map[*Stream[K, T]]struct{}),
	}
}

// Stream is one subscriber's view of a key. Only the most recent value is
// buffered; an unread value is replaced by a newer one.
type Stream[K comparable, T any] struct {
	hub    *Hub[K, T]
	key    K
	ctx    context.Context
	cancel context.CancelFunc

	updates chan T
	done    chan struct{}

	// guarded by hub.mu
	closed    bool
	issued    uint64
	delivered uint64
}

// Subscribe opens a stream for key and schedules its initial load. The
// stream closes when ctx is canceled or Close is called.
func (h *Hub[K, T]) Subscribe(ctx context.Context, key K) (*Stream[K, T], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sctx, cancel := context.WithCancel(ctx)
	s := &Stream[K, T]{
		hub:     h,
		key:     key,
		ctx:     sctx,
		cancel:  cancel,
		updates: make(chan T, 1),
		done:    make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		cancel()
		return nil, ErrClosed
	}
	h.streams[s] = struct{}{}
	rev := s.nextRevisionLocked()
	h.mu.Unlock()

	go func() {
		<-sctx.Done()
		s.Close()
	}()
	go h.refresh(key, []pending[K, T]{{stream: s, revision: rev}})

	return s, nil
}

type pending[K comparable, T any] struct {
	stream   *Stream[K, T]
	revision uint64
}

// Publish reloads every subscribed key once and pushes the result to all
// of that key's streams.
func (h *Hub[K, T]) Publish() {
	h.mu.Lock()
	byKey := make(map[K][]pending[K, T])
	for s := range h.streams {
		byKey[s.key] = append(byKey[s.key], pending[K, T]{stream: s, revision: s.nextRevisionLocked()})
	}
	h.mu.Unlock()

	for key, targets := range byKey {
		go h.refresh(key, targets)
	}
}

// Subscribers returns the number of open streams
func (h *Hub[K, T]) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.streams)
}

// Close ends every stream and rejects new subscriptions
func (h *Hub[K, T]) Close() {
	h.mu.Lock()
	h.closed = true
	streams := make([]*Stream[K, T], 0, len(h.streams))
	for s := range h.streams {
		streams = append(streams, s)
	}
	h.mu.Unlock()

	for _, s := range streams {
		s.Close()
	}
}

func (h *Hub[K, T]) refresh(key K, targets []pending[K, T]) {
	// The load is bound to the first live stream's context so that a fully
	// canceled key does not keep querying the store.
	var parent context.Context
	for _, t := range targets {
		if t.stream.ctx.Err() == nil {
			parent = t.stream.ctx
			break
		}
	}
	if parent == nil {
		return
	}
	if len(targets) > 1 {
		parent = context.WithoutCancel(parent)
	}

	ctx, cancel := context.WithTimeout(parent, h.timeout)
	value, ok := h.load(ctx, key)
	cancel()
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range targets {
		t.stream.deliverLocked(value, t.revision)
	}
}

func (s *Stream[K, T]) nextRevisionLocked() uint64 {
	s.issued++
	return s.issued
}

// deliverLocked pushes value unless the stream is closed or already holds
// a value from a newer load.
func (s *Stream[K, T]) deliverLocked(value T, revision uint64) {
	if s.closed || revision <= s.delivered {
		return
	}
	s.delivered = revision

	select {
	case s.updates <- value:
	default:
		select {
		case <-s.updates:
		default:
		}
		s.updates <- value
	}
}

// Key returns the key the stream was opened for
func (s *Stream[K, T]) Key() K {
	return s.key
}

// Updates delivers complete values, newest last
func (s *Stream[K, T]) Updates() <-chan T {
	return s.updates
}

// Done is closed once the stream has been closed
func (s *Stream[K, T]) Done() <-chan struct{} {
	return s.done
}

// Close detaches the stream. It is safe to call more than once; after it
// returns no further value is delivered.
func (s *Stream[K, T]) Close() {
	h := s.hub
	h.mu.Lock()
	if s.closed {
		h.mu.Unlock()
		return
	}
	s.closed = true
	delete(h.streams, s)
	close(s.done)
	h.mu.Unlock()

	s.cancel()
}
