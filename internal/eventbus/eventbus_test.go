package eventbus

import "testing"

func TestSubscribeReceivesPublishedEvents(t *testing.T) {
	r := New(4)
	sub := r.Subscribe()

	r.Send(CaptureStartEvent())
	r.Send(CaptureScreenshotEvent(1500))

	ev, ok := TryRecv(sub)
	if !ok || ev.Kind != KindCapture || ev.Capture != CaptureStart {
		t.Fatalf("expected CaptureStart, got %+v ok=%v", ev, ok)
	}

	ev, ok = TryRecv(sub)
	if !ok || ev.Capture != CaptureScreenshot || ev.TimecodeMS != 1500 {
		t.Fatalf("expected CaptureScreenshot@1500, got %+v ok=%v", ev, ok)
	}

	if _, ok := TryRecv(sub); ok {
		t.Fatalf("expected empty queue after draining")
	}
}

func TestSendNeverBlocksOnFullQueue(t *testing.T) {
	r := New(2)
	sub := r.Subscribe()

	for i := 0; i < 10; i++ {
		r.Send(CaptureStartEvent())
	}

	select {
	case <-sub.Lagged:
	default:
		t.Fatalf("expected a lagged notice after overflowing a capacity-2 queue")
	}
}

func TestShutdownBroadcastsLifecycleAndClosesToNewSends(t *testing.T) {
	r := New(4)
	sub := r.Subscribe()

	r.Shutdown()

	ev, ok := TryRecv(sub)
	if !ok || ev.Kind != KindLifecycle || ev.Lifecycle != LifecycleShutdown {
		t.Fatalf("expected LifecycleShutdown, got %+v ok=%v", ev, ok)
	}

	r.Send(CaptureStartEvent())
	if _, ok := TryRecv(sub); ok {
		t.Fatalf("expected no events to be delivered after Shutdown")
	}
}

func TestMultipleSubscribersEachReceiveEveryEvent(t *testing.T) {
	r := New(4)
	a := r.Subscribe()
	b := r.Subscribe()

	r.Send(CaptureStopEvent())

	if _, ok := TryRecv(a); !ok {
		t.Fatalf("subscriber a missed the event")
	}
	if _, ok := TryRecv(b); !ok {
		t.Fatalf("subscriber b missed the event")
	}
}

func TestDrainAllStopsWhenCallbackReturnsFalse(t *testing.T) {
	r := New(4)
	sub := r.Subscribe()
	r.Send(CaptureStartEvent())
	r.Send(CaptureStopEvent())
	r.Send(CaptureStartEvent())

	count := 0
	DrainAll(sub, func(Event) bool {
		count++
		return count < 1
	})

	if count != 1 {
		t.Fatalf("expected DrainAll to stop after first callback returns false, processed %d", count)
	}
	if _, ok := TryRecv(sub); !ok {
		t.Fatalf("expected remaining events still queued")
	}
}
