package bus

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrClosed is returned once the bus has been closed.
var ErrClosed = errors.New("bus: closed")

// MessageBus connects the UI layer and the speaker. Input events queue
// until the speaker consumes them; utterances are fanned out to
// subscribers by kind.
//
// Utterances never block the sender. When the output buffer is full the
// newest utterance is dropped, since the next tick replaces it anyway.
type MessageBus struct {
	input  chan InputEvent
	output chan Utterance

	mu   sync.RWMutex
	subs map[UtteranceKind][]func(Utterance) // kind -> subscribers

	closeMu sync.RWMutex
	closed  bool
}

// NewMessageBus creates a new MessageBus with the given buffer size.
// If bufSize is 0, defaults to 100.
func NewMessageBus(bufSize int) *MessageBus {
	if bufSize <= 0 {
		bufSize = 100
	}
	return &MessageBus{
		input:  make(chan InputEvent, bufSize),
		output: make(chan Utterance, bufSize),
		subs:   make(map[UtteranceKind][]func(Utterance)),
	}
}

// PublishInput queues a UI event, waiting for buffer space until ctx is done.
func (b *MessageBus) PublishInput(ctx context.Context, ev InputEvent) error {
	b.closeMu.RLock()
	defer b.closeMu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	select {
	case b.input <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUtterance hands u to the dispatcher and reports whether it was
// queued. It returns false after Close or when the buffer is full.
func (b *MessageBus) PublishUtterance(u Utterance) bool {
	b.closeMu.RLock()
	defer b.closeMu.RUnlock()
	if b.closed {
		return false
	}
	select {
	case b.output <- u:
		return true
	default:
		slog.Warn("bus: output full, dropping utterance", "kind", u.Kind, "source", u.Source)
		return false
	}
}

// ConsumeInput blocks until an input event is available or ctx is cancelled.
func (b *MessageBus) ConsumeInput(ctx context.Context) (InputEvent, error) {
	select {
	case ev, ok := <-b.input:
		if !ok {
			return InputEvent{}, ErrClosed
		}
		return ev, nil
	case <-ctx.Done():
		return InputEvent{}, ctx.Err()
	}
}

// Subscribe registers fn to receive utterances of the given kind.
// An empty kind subscribes to ALL utterances.
func (b *MessageBus) Subscribe(kind UtteranceKind, fn func(Utterance)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[kind] = append(b.subs[kind], fn)
}

// DispatchUtterances delivers queued utterances to subscribers until ctx
// is cancelled or the bus is closed. Utterances still queued at Close are
// delivered first, so a final Hide reaches the UI.
func (b *MessageBus) DispatchUtterances(ctx context.Context) {
	for {
		select {
		case u, ok := <-b.output:
			if !ok {
				return
			}
			b.dispatch(u)
		case <-ctx.Done():
			return
		}
	}
}

// dispatch delivers u to all matching subscribers (kind-specific + wildcard).
func (b *MessageBus) dispatch(u Utterance) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, fn := range b.subs[u.Kind] {
		fn(u)
	}
	for _, fn := range b.subs[""] {
		fn(u)
	}
}

// Close stops the bus. Later publishes are rejected; closing twice is a no-op.
// Close waits for an in-flight PublishInput to finish or be cancelled.
func (b *MessageBus) Close() {
	b.closeMu.Lock()
	defer b.closeMu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.input)
	close(b.output)
}

// Closed reports whether Close has been called.
func (b *MessageBus) Closed() bool {
	b.closeMu.RLock()
	defer b.closeMu.RUnlock()
	return b.closed
}
