// Package presenter implements the Presenter (C6): the main-thread event
// sink spec.md §4.8 step 11 hands control to, and §5's scheduling model
// pins to the OS thread the session was started on. spec.md §1 specifies
// only the interface — "runs the OS event loop" and "optionally shows a
// transient on-screen confirmation" — and leaves the flash indicator's
// actual rendering as a Non-goal owned by this component. With no real
// window-server client library in the corpus to drive (the teacher has no
// GUI surface at all), Run degrades to the one behavior the interface
// requires unconditionally: block the calling goroutine until
// Lifecycle::Shutdown or Lifecycle::Error, logging each Flash event rather
// than drawing it.
package presenter

import (
	"github.com/shellrec/shellrec/internal/eventbus"
	"github.com/shellrec/shellrec/internal/logging"
)

var log = logging.L("presenter")

// Run blocks the calling goroutine — the main thread, per spec.md §9's
// main-thread-pinning requirement — until router delivers
// Lifecycle::Shutdown or Lifecycle::Error. Every Flash event observed in the meantime is logged
// at debug level in place of the (out-of-scope) on-screen confirmation.
func Run(router *eventbus.Router) {
	sub := router.Subscribe()
	defer router.Unsubscribe(sub)

	for ev := range sub.Events {
		switch ev.Kind {
		case eventbus.KindFlash:
			log.Debug("flash indicator", "kind", ev.Flash)
		case eventbus.KindLifecycle:
			if ev.Lifecycle == eventbus.LifecycleShutdown {
				return
			}
			if ev.Lifecycle == eventbus.LifecycleError {
				log.Error("lifecycle error observed by presenter", "message", ev.ErrorMessage)
				return
			}
		}
	}
}
