// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package commandline

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/denoise/pkg/api"
	"github.com/muesli/termenv"
	"github.com/schollz/progressbar/v3"
)

// ProgressbarStyle to use. Defaults to the ASCII version.
// Consider "progressbar.ThemeUnicode" for a prettier version.
var ProgressbarStyle = progressbar.ThemeASCII

// progressBarSteps is the resolution of the bar: the progress of an execution, in [0, 1], is
// scaled to it.
const progressBarSteps = 1000

// maxUpdateFrequency is the minimum time between redraws of the bar.
const maxUpdateFrequency = time.Millisecond * 200

var (
	normalStyle       = lipgloss.NewStyle().Padding(0, 1)
	rightAlignedStyle = lipgloss.NewStyle().Align(lipgloss.Right).Padding(0, 1)
	tableBorderColor  = "#705090"
)

// ProgressBar displays the progress of the executions of a filter.
//
// Its Monitor method is a core.ProgressMonitorFunc: it is called by the filter, from any goroutine
// for asynchronous executions, and returns false once Cancel was called, which aborts the
// execution.
type ProgressBar struct {
	mu       sync.Mutex
	bar      *progressbar.ProgressBar
	termenv  *termenv.Output
	last     float64
	started  time.Time
	finished bool
	canceled bool

	numExecutions int
	numPixels     int
	totalTime     time.Duration
}

// NewProgressBar creates a progress bar written to w. If w is a terminal, the cursor is hidden
// while an execution is displayed.
func NewProgressBar(w io.Writer, description string) *ProgressBar {
	pBar := &ProgressBar{termenv: termenv.NewOutput(w)}
	pBar.bar = progressbar.NewOptions(progressBarSteps,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(ProgressbarStyle),
		progressbar.OptionSetWriter(w),
		progressbar.OptionThrottle(maxUpdateFrequency),
		progressbar.OptionSetRenderBlankState(true),
	)
	return pBar
}

// AttachProgressBar creates a progress bar written to os.Stdout and installs it as the progress
// monitor of the filter.
//
// numPixels is the size of the output image, only used for the throughput in Stats.
func AttachProgressBar(f api.Filter, description string, numPixels int) *ProgressBar {
	pBar := NewProgressBar(os.Stdout, description)
	pBar.numPixels = numPixels
	api.SetFilterProgressMonitorFunction(f, pBar.Monitor)
	return pBar
}

// Monitor reports the progress n of the current execution.
func (pBar *ProgressBar) Monitor(n float64) bool {
	pBar.mu.Lock()
	defer pBar.mu.Unlock()
	if pBar.finished && n >= 1 {
		// Repeated report of the end of the execution.
		return !pBar.canceled
	}
	if n < pBar.last || pBar.started.IsZero() {
		// New execution.
		pBar.finished = false
		pBar.bar.Reset()
		pBar.started = time.Now()
		pBar.termenv.HideCursor()
	}
	pBar.last = n
	_ = pBar.bar.Set(int(n * progressBarSteps))
	if n >= 1 {
		pBar.numExecutions++
		pBar.totalTime += time.Since(pBar.started)
		pBar.started = time.Time{}
		pBar.finished = true
		_ = pBar.bar.Finish()
		pBar.termenv.ShowCursor()
	}
	return !pBar.canceled
}

// Cancel makes the next call to Monitor return false. It can be called from any goroutine, e.g.
// a signal handler.
func (pBar *ProgressBar) Cancel() {
	pBar.mu.Lock()
	defer pBar.mu.Unlock()
	pBar.canceled = true
}

// Close restores the cursor, in case the last execution did not complete.
func (pBar *ProgressBar) Close() {
	pBar.mu.Lock()
	defer pBar.mu.Unlock()
	if !pBar.started.IsZero() {
		_ = pBar.bar.Exit()
		pBar.started = time.Time{}
	}
	pBar.termenv.ShowCursor()
}

// Stats renders a table with the number of completed executions and their timings.
func (pBar *ProgressBar) Stats() string {
	pBar.mu.Lock()
	defer pBar.mu.Unlock()
	table := newTable()
	table.Row("Executions", humanize.Comma(int64(pBar.numExecutions)))
	if pBar.numExecutions > 0 {
		mean := pBar.totalTime / time.Duration(pBar.numExecutions)
		table.Row("Mean execution time", FormatDuration(mean))
		if pBar.numPixels > 0 && mean > 0 {
			rate := float64(pBar.numPixels) / mean.Seconds()
			table.Row("Throughput", humanize.SIWithDigits(rate, 2, "pixels/s"))
		}
	}
	return table.String()
}

// FormatDuration pretty prints a duration with at most 3 significant digits.
func FormatDuration(d time.Duration) string {
	for _, unit := range []time.Duration{time.Hour, time.Minute, time.Second, time.Millisecond, time.Microsecond} {
		if d >= 100*unit {
			return d.Round(unit).String()
		}
		if d >= unit {
			return d.Round(unit / 100).String()
		}
	}
	return d.String()
}

func newTable() *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(tableBorderColor))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return rightAlignedStyle
			}
			return normalStyle
		})
}

func humanizeBytes(n int) string {
	if n < 0 {
		return fmt.Sprintf("%d", n)
	}
	return humanize.Bytes(uint64(n))
}
