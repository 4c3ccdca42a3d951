package events

import (
	"log/slog"
	"sync"
)

// Event names emitted to the host application.
const (
	EventStatus = "cli:status"
	EventError  = "cli:error"
	EventReady  = "cli:ready"
)

// ErrorPayload is the body of a cli:error event.
type ErrorPayload struct {
	Message string `json:"message"`
}

// Emitter is a one-way sink for named events with JSON-serializable
// payloads. Implementations must be safe for concurrent use and must
// not block the caller for long; emission failures are swallowed.
type Emitter interface {
	Emit(event string, payload any)
}

// Func adapts a plain function to an Emitter.
type Func func(event string, payload any)

func (f Func) Emit(event string, payload any) { f(event, payload) }

// Nop discards all events.
type Nop struct{}

func (Nop) Emit(string, any) {}

// Multi fans an event out to several emitters in order.
type Multi []Emitter

func (m Multi) Emit(event string, payload any) {
	for _, e := range m {
		if e != nil {
			e.Emit(event, payload)
		}
	}
}

// Slog logs every event through the given logger at debug level.
type Slog struct{ Logger *slog.Logger }

func (s Slog) Emit(event string, payload any) {
	l := s.Logger
	if l == nil {
		l = slog.Default()
	}
	l.Debug("emit", "event", event, "payload", payload)
}

// Message is a broadcast envelope delivered to Bus subscribers.
type Message struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Bus is a fan-out Emitter backing the HTTP event stream. Slow
// subscribers drop messages instead of blocking emission.
type Bus struct {
	mu   sync.Mutex
	subs map[chan Message]struct{}
}

func NewBus() *Bus {
	return &Bus{subs: make(map[chan Message]struct{})}
}

// Subscribe registers a new subscriber. The returned cancel function
// must be called to release the channel.
func (b *Bus) Subscribe() (<-chan Message, func()) {
	ch := make(chan Message, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

func (b *Bus) Emit(event string, payload any) {
	msg := Message{Event: event, Payload: payload}
	b.mu.Lock()
	for ch := range b.subs {
		select {
		case ch <- msg:
		default:
		}
	}
	b.mu.Unlock()
}
