package replay

import "sync"

// Navigator is a capture.Navigator over a virtual location. Replay has no
// browser, so navigation just records where the engine asked to go.
type Navigator struct {
	mu       sync.Mutex
	location string
	history  []string
	reloads  int
}

// NewNavigator creates a navigator positioned at the given location.
func NewNavigator(location string) *Navigator {
	return &Navigator{location: location}
}

// Location returns the virtual current location.
func (n *Navigator) Location() (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location, nil
}

// Navigate moves the virtual location.
func (n *Navigator) Navigate(dest string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.location = dest
	n.history = append(n.history, dest)
	return nil
}

// Reload records a reload of the virtual location.
func (n *Navigator) Reload() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reloads++
	return nil
}

// History returns the destinations visited, in order.
func (n *Navigator) History() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.history))
	copy(out, n.history)
	return out
}

// Reloads returns how many reloads were issued.
func (n *Navigator) Reloads() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.reloads
}
