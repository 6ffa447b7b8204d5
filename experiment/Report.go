package experiment

import (
	"github.com/rs/zerolog"

	"github.com/samuelfneumann/replaydqn/experiment/tracker"
)

// Report summarizes training progress at an evaluation
type Report struct {
	// RollingTrainReturn is the mean return of the last training
	// episodes between evaluations
	RollingTrainReturn float64
	EvalReturn         float64

	Step    int
	Episode int
	Epsilon float64

	// LR is the learning rate, set only when it decays
	LR *float64
}

// Reporter consumes Reports
type Reporter interface {
	Report(r Report) error
}

// Finisher is implemented by Reporters which write their output once
// more when training finishes
type Finisher interface {
	Finish() error
}

// ReporterFunc adapts a function to the Reporter interface
type ReporterFunc func(r Report) error

// Report calls f(r)
func (f ReporterFunc) Report(r Report) error {
	return f(r)
}

// LogReporter logs each Report
type LogReporter struct {
	logger zerolog.Logger
}

// NewLogReporter returns a LogReporter which logs to logger
func NewLogReporter(logger zerolog.Logger) LogReporter {
	return LogReporter{logger: logger.With().Str("component", "report").Logger()}
}

// Report implements the Reporter interface
func (l LogReporter) Report(r Report) error {
	event := l.logger.Info().
		Int("step", r.Step).
		Int("episode", r.Episode).
		Float64("epsilon", r.Epsilon).
		Float64("rolling_return", r.RollingTrainReturn).
		Float64("eval_return", r.EvalReturn)
	if r.LR != nil {
		event = event.Float64("lr", *r.LR)
	}
	event.Msg("evaluation")
	return nil
}

// SaveReporter saves the data of Trackers at each Report
type SaveReporter struct {
	tracker.Tracker
}

// NewSaveReporter returns a SaveReporter saving each of trackers
func NewSaveReporter(trackers ...tracker.Tracker) SaveReporter {
	return SaveReporter{tracker.Multi(trackers)}
}

// Report implements the Reporter interface
func (s SaveReporter) Report(Report) error {
	return s.Save()
}

// Finish implements the Finisher interface
func (s SaveReporter) Finish() error {
	return s.Save()
}
