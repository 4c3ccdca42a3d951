package events

import (
	"testing"
)

func TestMultiFansOutInOrder(t *testing.T) {
	var got []string
	a := Func(func(event string, _ any) { got = append(got, "a:"+event) })
	b := Func(func(event string, _ any) { got = append(got, "b:"+event) })
	m := Multi{a, nil, b}
	m.Emit(EventReady, nil)
	if len(got) != 2 || got[0] != "a:cli:ready" || got[1] != "b:cli:ready" {
		t.Fatalf("unexpected fan-out: %v", got)
	}
}

func TestBusDeliversToSubscribers(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	defer cancel()

	bus.Emit(EventStatus, map[string]string{"state": "starting"})
	msg := <-ch
	if msg.Event != EventStatus {
		t.Fatalf("event = %q", msg.Event)
	}
}

func TestBusCancelIsIdempotent(t *testing.T) {
	bus := NewBus()
	_, cancel := bus.Subscribe()
	cancel()
	cancel()
	// Emitting after cancel must not panic on the closed channel.
	bus.Emit(EventError, ErrorPayload{Message: "x"})
}

func TestBusDropsWhenSubscriberFull(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	defer cancel()
	for i := 0; i < 64; i++ {
		bus.Emit(EventStatus, i)
	}
	// Channel capacity is 16; the rest were dropped, not blocked on.
	if n := len(ch); n != 16 {
		t.Fatalf("buffered = %d, want 16", n)
	}
}
