package presenter

import (
	"testing"
	"time"

	"github.com/shellrec/shellrec/internal/eventbus"
)

func TestRunReturnsOnShutdown(t *testing.T) {
	router := eventbus.New(8)
	done := make(chan struct{})
	go func() {
		Run(router)
		close(done)
	}()

	router.Send(eventbus.FlashScreenshotTakenEvent())
	router.Shutdown()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Shutdown")
	}
}

func TestRunReturnsOnLifecycleError(t *testing.T) {
	router := eventbus.New(8)
	done := make(chan struct{})
	go func() {
		Run(router)
		close(done)
	}()

	router.Send(eventbus.LifecycleErrorEvent("boom"))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after a lifecycle error event")
	}
}
