// Package progressbar implements functionality of printing a progress
// bar to the terminal window
package progressbar

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/logrusorgru/aurora"
)

// ProgressBar implements progress bar functionality that must be
// manually managed. That is, Display must be called whenever an
// updated progress bar should be printed.
//
// ProgressBar does not use concurrency.
type ProgressBar struct {
	out             io.Writer
	au              aurora.Aurora
	width           float64
	maxProgress     float64
	currentProgress float64
	bar             strings.Builder
	startTime       time.Time
}

// New returns a new ProgressBar which is width characters wide, reaches
// 100% after max calls to Increment, and prints to out. If colors is
// true, the bar is printed with ANSI colors.
func New(out io.Writer, width, max int, colors bool) *ProgressBar {
	if max <= 0 {
		max = 1
	}
	return &ProgressBar{
		out:         out,
		au:          aurora.NewAurora(colors),
		width:       float64(width),
		maxProgress: float64(max),
		startTime:   time.Now(),
	}
}

// Increment increments the interal progress counter. Each time an
// iteration is performed, Increment should be called.
func (p *ProgressBar) Increment() {
	if p.currentProgress < p.maxProgress {
		p.currentProgress++
	}
}

// Progress returns the fraction of iterations completed
func (p *ProgressBar) Progress() float64 {
	return p.currentProgress / p.maxProgress
}

// Display prints the progress bar over the previously printed one,
// followed by status
func (p *ProgressBar) Display(status string) {
	p.bar.Reset()

	filled := int(p.Progress() * p.width)
	p.bar.WriteString("|")
	p.bar.WriteString(p.au.Green(strings.Repeat("█", filled)).String())
	p.bar.WriteString(strings.Repeat(" ", int(p.width)-filled))
	p.bar.WriteString(fmt.Sprintf("| [%.2f%% | elapsed: %v]",
		p.Progress()*100, time.Since(p.startTime).Truncate(time.Second)))
	if status != "" {
		p.bar.WriteString(" ")
		p.bar.WriteString(p.au.Cyan(status).String())
	}

	fmt.Fprintf(p.out, "\r\033[K%v", p.bar.String())
}

// Close prints a final newline after the progress bar
func (p *ProgressBar) Close() {
	fmt.Fprintln(p.out)
}
