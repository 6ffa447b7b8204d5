package tracker

import (
	"encoding/gob"
	"fmt"
	"os"

	"gonum.org/v1/gonum/stat"

	ts "github.com/samuelfneumann/replaydqn/timestep"
)

// Return tracks and saves the episodic return in an experiment. Track
// accumulates the rewards of the TimeSteps of the current episode and
// EndEpisode records the accumulated return. Episodes cut short before
// their last TimeStep are recorded by EndEpisode all the same.
type Return struct {
	lastTimeStep  int
	currentReturn float64
	data          Data
	filename      string
}

// NewReturn creates and returns a new *Return Tracker saving to
// filename
func NewReturn(filename string) *Return {
	return &Return{lastTimeStep: -1, filename: filename}
}

// Track tracks the reward seen on a timestep. A TimeStep with StepType
// timestep.First starts a new episode.
//
// Track panics if it is called for non-sequential timesteps
func (r *Return) Track(step ts.TimeStep) {
	if step.First() {
		r.currentReturn = 0
		r.lastTimeStep = step.Number
		return
	}

	if r.lastTimeStep+1 != step.Number {
		panic(fmt.Sprintf("track: last two timesteps tracked are not "+
			"sequential: timestep %v --> timestep %v were tracked",
			r.lastTimeStep, step.Number))
	}
	r.currentReturn += step.Reward
	r.lastTimeStep = step.Number
}

// EndEpisode records the return of the current episode, which ended
// after totalSteps environment steps in the experiment, and returns it
func (r *Return) EndEpisode(totalSteps int) float64 {
	ret := r.currentReturn
	r.data.Returns = append(r.data.Returns, ret)
	r.data.Steps = append(r.data.Steps, totalSteps)

	r.currentReturn = 0
	r.lastTimeStep = -1
	return ret
}

// Returns returns the recorded episodic returns
func (r *Return) Returns() []float64 {
	return r.data.Returns
}

// Steps returns the total number of environment steps at the end of
// each recorded episode
func (r *Return) Steps() []int {
	return r.data.Steps
}

// Len returns the number of recorded episodes
func (r *Return) Len() int {
	return len(r.data.Returns)
}

// Rolling returns the mean of the last n recorded returns, or of all
// of them if fewer than n were recorded. It returns 0 if no returns
// were recorded.
func (r *Return) Rolling(n int) float64 {
	returns := r.data.Returns
	if len(returns) == 0 {
		return 0
	}
	if n > 0 && n < len(returns) {
		returns = returns[len(returns)-n:]
	}
	return stat.Mean(returns, nil)
}

// Save saves the data tracked by the Return Tracker to disk
func (r *Return) Save() error {
	file, err := os.Create(r.filename)
	if err != nil {
		return fmt.Errorf("save: could not open save file: %v", err)
	}
	defer file.Close()

	if err = gob.NewEncoder(file).Encode(r.data); err != nil {
		return fmt.Errorf("save: could not encode return data: %v", err)
	}
	return nil
}
