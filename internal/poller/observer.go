package poller

import "time"

// Observer is told what happened to every tick of a session. Calls are made
// from the session's owner goroutine and must not block for long.
type Observer interface {
	// TickCommitted is called when the fetch succeeded and its result is now the snapshot.
	TickCommitted(view string, tick uint64, took time.Duration)
	// TickDiscarded is called when the fetch failed and the previous snapshot is kept.
	TickDiscarded(view string, tick uint64, took time.Duration, err error)
	// TickSkipped is called when the timer fired while tick outstanding was still in flight.
	TickSkipped(view string, outstanding uint64)
	// TickDropped is called when a result arrived after a newer tick had already committed.
	TickDropped(view string, tick, committed uint64)
}

type nopObserver struct{}

func (nopObserver) TickCommitted(string, uint64, time.Duration) {}
func (nopObserver) TickDiscarded(string, uint64, time.Duration, error) {}
func (nopObserver) TickSkipped(string, uint64) {}
func (nopObserver) TickDropped(string, uint64, uint64) {}

// Observers fans every call out to each non-nil observer in order.
type Observers []Observer

func (o Observers) TickCommitted(view string, tick uint64, took time.Duration) {
	for _, obs := range o {
		if obs != nil {
			obs.TickCommitted(view, tick, took)
		}
	}
}

func (o Observers) TickDiscarded(view string, tick uint64, took time.Duration, err error) {
	for _, obs := range o {
		if obs != nil {
			obs.TickDiscarded(view, tick, took, err)
		}
	}
}

func (o Observers) TickSkipped(view string, outstanding uint64) {
	for _, obs := range o {
		if obs != nil {
			obs.TickSkipped(view, outstanding)
		}
	}
}

func (o Observers) TickDropped(view string, tick, committed uint64) {
	for _, obs := range o {
		if obs != nil {
			obs.TickDropped(view, tick, committed)
		}
	}
}
