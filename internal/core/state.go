package core

import "sync/atomic"

// State is the process-wide state shared by every connection handler:
// the broadcast bus and the view counter. It is constructed once at
// startup and injected rather than held in package globals.
type State struct {
	Bus *Bus

	views atomic.Uint64
}

// NewState builds the shared state with a bus of the given capacity.
func NewState(busCapacity int) *State {
	return &State{Bus: NewBus(busCapacity)}
}

// AddView records one successful delivery of a message to a subscriber.
func (s *State) AddView() {
	s.views.Add(1)
}

// Views returns the total successful deliveries since start or last reset.
func (s *State) Views() uint64 {
	return s.views.Load()
}

// ResetViews sets the view counter back to zero.
func (s *State) ResetViews() {
	s.views.Store(0)
}
