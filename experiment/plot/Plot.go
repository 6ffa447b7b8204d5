// Package plot renders reward curves of a training run to PNG images
package plot

import (
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/samuelfneumann/replaydqn/experiment"
	"github.com/samuelfneumann/replaydqn/experiment/tracker"
)

const (
	Width  = 900
	Height = 500
	Margin = 60.0
)

var (
	background   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	axisColour   = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	trainColour  = color.RGBA{R: 160, G: 180, B: 230, A: 255}
	rollColour   = color.RGBA{R: 30, G: 60, B: 160, A: 255}
	evalColour   = color.RGBA{R: 220, G: 70, B: 40, A: 255}
	legendLabels = []string{"train return", "rolling mean", "eval return"}
)

// Curves are the reward curves of a run, indexed by episode
type Curves struct {
	Train []float64

	// Rolling[i] is the mean of the last Interval training returns at
	// episode i
	Rolling []float64

	// Eval[j] is the evaluation return after episode (j+1)*Interval
	Eval     []float64
	Interval int
}

// NewCurves computes the Curves of training and evaluation returns
func NewCurves(train, eval []float64, interval int) Curves {
	rolling := make([]float64, len(train))
	for i := range train {
		start := i + 1 - interval
		if start < 0 {
			start = 0
		}
		rolling[i] = stat.Mean(train[start:i+1], nil)
	}

	return Curves{Train: train, Rolling: rolling, Eval: eval,
		Interval: interval}
}

// bounds returns the range of returns covered by the Curves
func (c Curves) bounds() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, values := range [][]float64{c.Train, c.Eval} {
		if len(values) == 0 {
			continue
		}
		lo = math.Min(lo, floats.Min(values))
		hi = math.Max(hi, floats.Max(values))
	}

	if math.IsInf(lo, 1) {
		return 0, 1
	}
	if hi == lo {
		return lo - 1, hi + 1
	}
	return lo, hi
}

// Draw renders the Curves to a new drawing context
func Draw(c Curves) *gg.Context {
	dc := gg.NewContext(Width, Height)
	dc.SetColor(background)
	dc.Clear()

	episodes := float64(len(c.Train))
	if episodes < 2 {
		episodes = 2
	}
	lo, hi := c.bounds()

	x := func(episode float64) float64 {
		return Margin + (episode-1)/(episodes-1)*(Width-2*Margin)
	}
	y := func(ret float64) float64 {
		return Height - Margin - (ret-lo)/(hi-lo)*(Height-2*Margin)
	}

	// Axes
	dc.SetColor(axisColour)
	dc.SetLineWidth(1.5)
	dc.DrawLine(Margin, Margin, Margin, Height-Margin)
	dc.DrawLine(Margin, Height-Margin, Width-Margin, Height-Margin)
	dc.Stroke()
	dc.DrawStringAnchored(fmt.Sprintf("%.1f", hi), Margin-5, Margin, 1, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.1f", lo), Margin-5, Height-Margin,
		1, 0.5)
	dc.DrawStringAnchored("1", Margin, Height-Margin+15, 0.5, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%v", len(c.Train)), Width-Margin,
		Height-Margin+15, 0.5, 0.5)
	dc.DrawStringAnchored("episode", Width/2, Height-Margin/3, 0.5, 0.5)
	if lo < 0 && hi > 0 {
		dc.SetDash(4, 4)
		dc.DrawLine(Margin, y(0), Width-Margin, y(0))
		dc.Stroke()
		dc.SetDash()
	}

	line := func(values []float64, episode func(i int) float64,
		colour color.Color, width float64) {
		if len(values) == 0 {
			return
		}
		dc.NewSubPath()
		for i, v := range values {
			dc.LineTo(x(episode(i)), y(v))
		}
		dc.SetColor(colour)
		dc.SetLineWidth(width)
		dc.Stroke()
	}

	line(c.Train, func(i int) float64 { return float64(i + 1) }, trainColour, 1)
	line(c.Rolling, func(i int) float64 { return float64(i + 1) }, rollColour,
		2.5)

	evalEpisode := func(i int) float64 { return float64((i + 1) * c.Interval) }
	line(c.Eval, evalEpisode, evalColour, 2)
	dc.SetColor(evalColour)
	for i, v := range c.Eval {
		dc.DrawCircle(x(evalEpisode(i)), y(v), 3)
	}
	dc.Fill()

	// Legend
	for i, colour := range []color.Color{trainColour, rollColour, evalColour} {
		top := Margin + float64(i)*18
		dc.SetColor(colour)
		dc.DrawRectangle(Width-Margin-140, top-5, 12, 10)
		dc.Fill()
		dc.SetColor(axisColour)
		dc.DrawStringAnchored(legendLabels[i], Width-Margin-120, top, 0, 0.5)
	}

	return dc
}

// Save renders the Curves to a PNG image at path
func Save(c Curves, path string) error {
	if err := Draw(c).SavePNG(path); err != nil {
		return fmt.Errorf("save: %v", err)
	}
	return nil
}

// Reporter redraws the reward plot of a run at every Report and when
// training finishes
type Reporter struct {
	path        string
	train, eval *tracker.Return
	interval    int
}

// NewReporter returns a Reporter plotting the returns tracked by train
// and eval to a PNG image at path. The rolling mean is taken over
// interval episodes.
func NewReporter(path string, train, eval *tracker.Return,
	interval int) *Reporter {
	return &Reporter{path: path, train: train, eval: eval,
		interval: interval}
}

// Report implements the experiment.Reporter interface
func (r *Reporter) Report(experiment.Report) error {
	if err := r.draw(); err != nil {
		return fmt.Errorf("report: %v", err)
	}
	return nil
}

// Finish implements the experiment.Finisher interface, drawing the
// episodes since the last Report
func (r *Reporter) Finish() error {
	if err := r.draw(); err != nil {
		return fmt.Errorf("finish: %v", err)
	}
	return nil
}

func (r *Reporter) draw() error {
	return Save(NewCurves(r.train.Returns(), r.eval.Returns(), r.interval),
		r.path)
}
