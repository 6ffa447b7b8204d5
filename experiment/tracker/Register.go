package tracker

import ts "github.com/samuelfneumann/replaydqn/timestep"

// Multi broadcasts every tracked TimeStep to a number of Trackers
type Multi []Tracker

// Track tracks t with each Tracker
func (m Multi) Track(t ts.TimeStep) {
	for _, tracker := range m {
		tracker.Track(t)
	}
}

// Save saves the data of each Tracker, stopping at the first error
func (m Multi) Save() error {
	for _, tracker := range m {
		if err := tracker.Save(); err != nil {
			return err
		}
	}
	return nil
}
