// Package progressbar implements functionality of printing a progress
// bar to a terminal
package progressbar

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ProgressBar implements a progress bar that must be manually managed.
// Increment advances the bar and redraws it every redrawEvery
// increments and on completion.
//
// ProgressBar does not use concurrency.
type ProgressBar struct {
	out             io.Writer
	width           float64
	maxProgress     float64
	currentProgress float64
	redrawEvery     int
	increments      int
	bar             strings.Builder
	startTime       time.Time
}

// New returns a new ProgressBar width characters wide which reaches
// 100% after max increments
func New(out io.Writer, width, max, redrawEvery int) *ProgressBar {
	if redrawEvery < 1 {
		redrawEvery = 1
	}
	return &ProgressBar{
		out:         out,
		width:       float64(width),
		maxProgress: float64(max),
		redrawEvery: redrawEvery,
		startTime:   time.Now(),
	}
}

// Increment increments the internal progress counter. Each time an
// iteration is performed, Increment should be called.
func (p *ProgressBar) Increment() {
	if p.currentProgress < p.maxProgress {
		p.currentProgress++
	}

	p.increments++
	if p.increments%p.redrawEvery == 0 || p.currentProgress == p.maxProgress {
		p.Display()
	}
}

// Progress returns the fraction of the maximum progress reached
func (p *ProgressBar) Progress() float64 {
	if p.maxProgress == 0 {
		return 1
	}
	return p.currentProgress / p.maxProgress
}

// String returns the current progress bar
func (p *ProgressBar) String() string {
	p.bar.Reset()
	p.bar.WriteString("|")

	currentProg := p.Progress() * p.width
	for i := 0.0; i < currentProg; i++ {
		p.bar.WriteString("█")
	}
	for i := currentProg; i < p.width; i++ {
		p.bar.WriteString(" ")
	}
	p.bar.WriteString(fmt.Sprintf("| [%.2f%% | %v/%v | elapsed: %v]",
		p.Progress()*100, p.currentProgress, p.maxProgress,
		time.Since(p.startTime).Truncate(time.Second)))

	return p.bar.String()
}

// Display redraws the progress bar in place
func (p *ProgressBar) Display() {
	fmt.Fprintf(p.out, "\r\033[K%v", p.String())
}

// Close finishes the progress bar line
func (p *ProgressBar) Close() {
	fmt.Fprintln(p.out)
}
