// Package progress renders scan progress as a terminal progress bar.
package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v2"
)

// Bar adapts a progress bar to the index.Progress interface.
type Bar struct {
	w           io.Writer
	description string
	bar         *progressbar.ProgressBar
}

// New returns a Bar writing to w.
func New(w io.Writer, description string) *Bar {
	return &Bar{w: w, description: description}
}

// Start creates the bar for total files. Nothing is drawn for an empty scan.
func (b *Bar) Start(total int) {
	if total <= 0 {
		return
	}
	b.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(b.w),
		progressbar.OptionSetDescription(b.description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Advance moves the bar by one file.
func (b *Bar) Advance(string) {
	if b.bar == nil {
		return
	}
	_ = b.bar.Add(1)
}

// Finish completes the bar and ends its line.
func (b *Bar) Finish() {
	if b.bar == nil {
		return
	}
	_ = b.bar.Finish()
	fmt.Fprintln(b.w)
}

// Percent returns the completed fraction, 0 before Start.
func (b *Bar) Percent() float64 {
	if b.bar == nil {
		return 0
	}
	return b.bar.State().CurrentPercent
}
