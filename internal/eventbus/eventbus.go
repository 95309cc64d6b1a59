// Package eventbus implements the broadcast event router (C2): one logical
// channel fanning out Capture/Flash/Lifecycle events to every subscriber,
// with bounded per-subscriber queues so a slow subscriber never blocks the
// publisher.
package eventbus

import (
	"fmt"
	"sync"

	"github.com/shellrec/shellrec/internal/logging"
)

var log = logging.L("eventbus")

// DefaultQueueCapacity is the recommended minimum bounded-queue size per
// subscriber.
const DefaultQueueCapacity = 16

// CaptureKind distinguishes the three Capture event variants.
type CaptureKind int

const (
	CaptureStart CaptureKind = iota
	CaptureStop
	CaptureScreenshot
)

// FlashKind is advisory, consumed only by the Presenter (C6).
type FlashKind int

const (
	FlashScreenshotTaken FlashKind = iota
)

// LifecycleKind distinguishes Shutdown from a fatal Error.
type LifecycleKind int

const (
	LifecycleShutdown LifecycleKind = iota
	LifecycleError
)

// Event is the tagged union published on the bus. Exactly one of Capture,
// Flash, or Lifecycle is meaningful, selected by Kind.
type Event struct {
	Kind Kind

	Capture CaptureKind
	// TimecodeMS is set only when Capture == CaptureScreenshot.
	TimecodeMS uint64

	Flash FlashKind

	Lifecycle    LifecycleKind
	ErrorMessage string // set only when Lifecycle == LifecycleError
}

// Kind selects which of Event's three payloads is active.
type Kind int

const (
	KindCapture Kind = iota
	KindFlash
	KindLifecycle
)

func CaptureStartEvent() Event    { return Event{Kind: KindCapture, Capture: CaptureStart} }
func CaptureStopEvent() Event     { return Event{Kind: KindCapture, Capture: CaptureStop} }
func CaptureScreenshotEvent(timecodeMS uint64) Event {
	return Event{Kind: KindCapture, Capture: CaptureScreenshot, TimecodeMS: timecodeMS}
}
func FlashScreenshotTakenEvent() Event { return Event{Kind: KindFlash, Flash: FlashScreenshotTaken} }
func LifecycleShutdownEvent() Event    { return Event{Kind: KindLifecycle, Lifecycle: LifecycleShutdown} }
func LifecycleErrorEvent(message string) Event {
	return Event{Kind: KindLifecycle, Lifecycle: LifecycleError, ErrorMessage: message}
}

// Lagged is delivered through a Subscription's Lagged channel when its queue
// overflowed; n is how many events were dropped before the subscriber caught
// up.
type Lagged struct {
	N int
}

// Subscription is a single subscriber's view of the bus: a bounded event
// queue plus a side notice channel for drops.
type Subscription struct {
	Events <-chan Event
	Lagged <-chan Lagged

	id      int
	events  chan Event
	lagged  chan Lagged
	dropped int
}

// Router is the broadcast bus. Zero value is not usable; construct with New.
type Router struct {
	mu          sync.Mutex
	subscribers map[int]*Subscription
	nextID      int
	closed      bool
	capacity    int
}

// New constructs a Router with the given per-subscriber queue capacity. A
// capacity <= 0 falls back to DefaultQueueCapacity.
func New(capacity int) *Router {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &Router{
		subscribers: make(map[int]*Subscription),
		capacity:    capacity,
	}
}

// Subscribe registers a new subscriber. Must be called by every actor before
// the first Send, per the router's "subscribe before Capture::Start"
// contract; the orchestrator (C9) is responsible for sequencing that.
func (r *Router) Subscribe() *Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++

	events := make(chan Event, r.capacity)
	lagged := make(chan Lagged, 1)
	sub := &Subscription{
		Events: events,
		Lagged: lagged,
		id:     id,
		events: events,
		lagged: lagged,
	}
	r.subscribers[id] = sub
	return sub
}

// Unsubscribe removes a subscriber and closes its Events channel; the
// Lagged channel is left open. Safe to call at most once per subscription.
func (r *Router) Unsubscribe(sub *Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subscribers[sub.id]; !ok {
		return
	}
	delete(r.subscribers, sub.id)
	close(sub.events)
}

// Send publishes an event to every current subscriber, never blocking. A
// subscriber whose queue is full is sent a Lagged notice (best-effort, also
// non-blocking) instead of the event.
func (r *Router) Send(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	for _, sub := range r.subscribers {
		select {
		case sub.events <- event:
			sub.dropped = 0
		default:
			sub.dropped++
			select {
			case sub.lagged <- Lagged{N: sub.dropped}:
			default:
				// A notice is already pending; replace it so the count the
				// subscriber eventually reads reflects the true total
				// instead of going stale at whatever N the first drop saw.
				select {
				case <-sub.lagged:
				default:
				}
				select {
				case sub.lagged <- Lagged{N: sub.dropped}:
				default:
				}
			}
			log.Warn("subscriber lagged, event dropped", "kind", fmt.Sprint(event.Kind), "total_dropped", sub.dropped)
		}
	}
}

// Shutdown publishes Lifecycle::Shutdown to every subscriber, then marks the
// router closed so further Sends are no-ops. It does not close subscriber
// channels; actors drain the Shutdown event and exit on their own.
func (r *Router) Shutdown() {
	r.Send(LifecycleShutdownEvent())

	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}

// TryRecv performs a single non-blocking poll of a subscription, per the
// "drain the router non-blockingly" contract used (through DrainAll) by
// C4/C5's main loops.
// ok is false when nothing was pending.
func TryRecv(sub *Subscription) (Event, bool) {
	select {
	case ev, open := <-sub.events:
		if !open {
			return Event{}, false
		}
		return ev, true
	default:
		return Event{}, false
	}
}

// DrainAll polls a subscription until it is empty, invoking fn for each
// event in order. Returns early if fn returns false.
func DrainAll(sub *Subscription, fn func(Event) bool) {
	for {
		ev, ok := TryRecv(sub)
		if !ok {
			return
		}
		if !fn(ev) {
			return
		}
	}
}
