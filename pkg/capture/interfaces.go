package capture

import "xscraper/pkg/timeline"

// Navigator drives the browsing surface the capture observes. A scope switch
// whose destination equals the current location must go through Reload: the
// engine only sees new responses, so traffic has to be regenerated.
type Navigator interface {
	// Location returns the current location.
	Location() (string, error)
	// Navigate moves to the given destination.
	Navigate(dest string) error
	// Reload reloads the current location.
	Reload() error
}

// ScrollDriver runs its own timing loop and decides when scrolling is done
// (idle or budget). Start opens a run and returns its token; completion comes
// back through a SCROLL_FINISHED command on the engine carrying that token,
// so a completion from a superseded run can be rejected. A stopped driver
// must never later report completion.
type ScrollDriver interface {
	Start(budget int) (run uint64)
	Stop()
}

// Sink receives the deduplicated record set of a finished scope. The engine
// clears its store only after Emit returns nil.
type Sink interface {
	Emit(records []timeline.Record, scopeTag string) error
}
