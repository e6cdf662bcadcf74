// Package cliui provides the terminal presentation helpers shared by
// the catalog CLI commands: step spinners, status marks, duration
// display, and markdown rendering.
package cliui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	SuccessMark  = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("✓")
	FailMark     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")
	StepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
)

// spinnerFrames are the Dot frames the deck TUI's spinner uses, so
// step lines and the deck animate alike.
var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

const spinnerInterval = 80 * time.Millisecond

// Step runs fn behind an animated spinner line, then rewrites the line
// with a status mark and the elapsed time. The returned error is fn's.
func Step(w io.Writer, msg string, fn func() error) error {
	var mu sync.Mutex
	line := func(lead string) {
		mu.Lock()
		fmt.Fprintf(w, "\r  %s %s", lead, msg)
		mu.Unlock()
	}

	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()
		for frame := 0; ; frame++ {
			line(spinnerStyle.Render(spinnerFrames[frame%len(spinnerFrames)]))
			select {
			case <-stop:
				return
			case <-ticker.C:
			}
		}
	}()

	start := time.Now()
	err := fn()
	close(stop)

	mu.Lock()
	fmt.Fprintf(w, "\r  %s %s %s\n",
		Mark(err),
		msg,
		StepStyle.Render("("+FormatDuration(time.Since(start))+")"),
	)
	mu.Unlock()

	return err
}

// Mark maps an error to its status mark.
func Mark(err error) string {
	if err != nil {
		return FailMark
	}
	return SuccessMark
}

// FormatDuration renders a duration at the precision a step line needs:
// whole milliseconds under a second, one decimal under a minute, then
// minutes and seconds.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
}

// RenderMarkdown renders entry markdown for terminal display. The wrap
// width matches the export preview and the deck detail pane.
func RenderMarkdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content, err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}

	return rendered, nil
}
