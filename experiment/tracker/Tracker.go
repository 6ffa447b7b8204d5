// Package tracker implements Trackers, which accumulate data over the
// episodes of an experiment and save it to disk
package tracker

import (
	"encoding/gob"
	"fmt"
	"os"

	ts "github.com/samuelfneumann/replaydqn/timestep"
)

// Tracker keeps track of experiment data and saves the data to disk
type Tracker interface {
	Track(t ts.TimeStep)
	Save() error
}

// Data is the data saved by a Return Tracker
type Data struct {
	// Returns holds the return of each episode
	Returns []float64

	// Steps holds the total number of environment steps taken when
	// each episode ended
	Steps []int
}

// LoadData loads and returns the data saved by a Return Tracker
func LoadData(filename string) (Data, error) {
	file, err := os.Open(filename)
	if err != nil {
		return Data{}, fmt.Errorf("loadData: could not open data file: %v",
			err)
	}
	defer file.Close()

	var data Data
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return Data{}, fmt.Errorf("loadData: could not decode data: %v", err)
	}
	return data, nil
}
