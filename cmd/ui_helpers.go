package cmd

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"pawgrate/cli/internal/terminal"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
)

// progressInterval is how often the progress line is redrawn.
const progressInterval = 250 * time.Millisecond

// maxProgressWidth caps the number of "@" cells in the progress bar.
const maxProgressWidth = 50

// startProgress shows a single-line progress indicator while ogr2ogr runs:
// the label, the elapsed time and a bar of "@" that grows and wraps. ogr2ogr
// reports no percentage, so the bar only shows that work is ongoing.
//
// Nothing is drawn when stdout is not a terminal, so piped output and CI logs
// stay clean. The returned function stops the indicator and clears the line.
func startProgress(label string) func() {
	if !terminal.IsTerminal(os.Stdout) {
		return func() {}
	}
	width := min(maxProgressWidth, terminal.Width()-len(label)-12)

	cursor.Hide()
	area, err := pterm.DefaultArea.WithRemoveWhenDone(true).Start()
	if err != nil {
		cursor.Show()
		return func() {}
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	started := time.Now()
	go func() {
		defer wg.Done()
		t := time.NewTicker(progressInterval)
		defer t.Stop()
		frame := 0
		for {
			select {
			case <-t.C:
				frame++
				area.Update(progressLine(label, time.Since(started), frame, width))
			case <-stop:
				return
			}
		}
	}()

	return func() {
		close(stop)
		wg.Wait()
		_ = area.Stop()
		cursor.Show()
	}
}

// progressLine renders one frame of the progress indicator.
func progressLine(label string, elapsed time.Duration, frame, width int) string {
	if width < 1 {
		width = 1
	}
	return fmt.Sprintf("%s %s %s", label, elapsed.Truncate(time.Second), strings.Repeat("@", frame%(width+1)))
}
