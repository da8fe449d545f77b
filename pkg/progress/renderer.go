package progress

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

type renderState int

const (
	stateRunning renderState = iota
	stateDone
	stateFailed
)

type renderer interface {
	render(Status, string, Statistics, renderState) string
}

// palette wraps the colors shared by all renderers.
type palette struct {
	ok, fail, accent *color.Color
}

func newPalette(noColor bool) palette {
	p := palette{
		ok:     color.New(color.FgGreen),
		fail:   color.New(color.FgRed),
		accent: color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.ok, p.fail, p.accent} {
		if noColor {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
	}
	return p
}

func (p palette) message(message string, state renderState) string {
	switch state {
	case stateDone:
		return p.ok.Sprint(message)
	case stateFailed:
		return p.fail.Sprint(message)
	default:
		return message
	}
}

func newRenderer(config Config, width int) renderer {
	colors := newPalette(config.NoColor)

	switch config.Style {
	case StyleBar:
		return &barRenderer{width: width, colors: colors, showStats: config.ShowStats}
	case StyleSpinner:
		return &spinnerRenderer{colors: colors, showStats: config.ShowStats}
	default:
		return &simpleRenderer{colors: colors, showStats: config.ShowStats}
	}
}

type barRenderer struct {
	width     int
	colors    palette
	showStats bool
}

func (r *barRenderer) render(status Status, message string, stats Statistics, state renderState) string {
	var out strings.Builder

	barWidth := r.width / 3
	if barWidth < 10 {
		barWidth = 10
	}

	ratio := stats.ProgressPercentage / 100
	if ratio > 1 {
		ratio = 1
	}
	filled := int(float64(barWidth) * ratio)

	bar := strings.Repeat("=", filled)
	if filled < barWidth {
		bar += ">" + strings.Repeat(" ", barWidth-filled-1)
	}

	fmt.Fprintf(&out, "[%s] %3.0f%% %s", r.colors.ok.Sprint(bar), ratio*100, r.colors.message(message, state))
	fmt.Fprintf(&out, " (%d/%d)", status.Current, status.Total)

	if r.showStats {
		out.WriteString(statsSuffix(stats))
	}
	if status.CurrentItem != "" {
		out.WriteString(" " + status.CurrentItem)
	}

	return out.String()
}

type spinnerRenderer struct {
	colors    palette
	showStats bool
	frame     int
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func (r *spinnerRenderer) render(status Status, message string, stats Statistics, state renderState) string {
	var out strings.Builder

	switch state {
	case stateDone:
		out.WriteString(r.colors.ok.Sprint("✓"))
	case stateFailed:
		out.WriteString(r.colors.fail.Sprint("✗"))
	default:
		r.frame = (r.frame + 1) % len(spinnerFrames)
		out.WriteString(r.colors.accent.Sprint(spinnerFrames[r.frame]))
	}

	fmt.Fprintf(&out, " %s %d/%d", r.colors.message(message, state), status.Current, status.Total)

	if r.showStats {
		out.WriteString(statsSuffix(stats))
	}
	if status.CurrentItem != "" {
		out.WriteString(" " + status.CurrentItem)
	}

	return out.String()
}

type simpleRenderer struct {
	colors    palette
	showStats bool
}

func (r *simpleRenderer) render(status Status, message string, stats Statistics, state renderState) string {
	out := fmt.Sprintf("%s (%.0f%%)", r.colors.message(message, state), stats.ProgressPercentage)
	if r.showStats {
		out += statsSuffix(stats)
	}
	return out
}

func statsSuffix(stats Statistics) string {
	return fmt.Sprintf(" | %.1f/s | ETA %s | %s",
		stats.ProcessingSpeed,
		formatDuration(stats.RemainingTime),
		humanize.Bytes(uint64(stats.BytesProcessed)))
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	return d.Round(time.Second).String()
}

// shortenItem keeps the last max runes of item, which for paths is the part
// worth reading.
func shortenItem(item string, max int) string {
	if max <= 1 {
		return item
	}
	runes := []rune(item)
	if len(runes) <= max {
		return item
	}
	return "…" + string(runes[len(runes)-max+1:])
}
