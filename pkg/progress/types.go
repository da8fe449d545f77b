package progress

import (
	"io"
	"time"
)

// Style represents the type of progress visualization
type Style string

const (
	// StyleBar shows a progress bar with percentage
	StyleBar Style = "bar"

	// StyleSpinner shows a spinning indicator
	StyleSpinner Style = "spinner"

	// StyleSimple shows basic text progress
	StyleSimple Style = "simple"
)

// Config holds the configuration for progress visualization
type Config struct {
	// Style defines how progress should be displayed
	Style Style

	// Width is the maximum line width (0 = auto-detect)
	Width int

	// ShowStats appends speed, ETA and byte counts
	ShowStats bool

	// NoColor disables colored output
	NoColor bool

	// RefreshRate defines how often the display updates
	RefreshRate time.Duration

	// HideAfterComplete removes the line after completion
	HideAfterComplete bool

	// Writer receives the rendered line, os.Stderr when nil
	Writer io.Writer
}

// Status represents the current progress state
type Status struct {
	Current int64
	Total   int64

	// CurrentItem is the item processed last
	CurrentItem string

	BytesRead int64
}

// Statistics provides derived progress information
type Statistics struct {
	ElapsedTime        time.Duration
	RemainingTime      time.Duration
	ProcessingSpeed    float64 // items per second
	ProgressPercentage float64
	BytesProcessed     int64
}

// Progress defines the interface for progress visualization
type Progress interface {
	// Start begins rendering with a message and the expected item count
	Start(message string, total int64)

	// Increment records one processed item. Safe for concurrent use.
	Increment(item string, bytes int64)

	// Update replaces the progress status
	Update(status Status)

	// Complete renders a final success line
	Complete(message string)

	// Error renders a final failure line
	Error(message string)

	// Stop ends rendering and clears the line
	Stop()

	// IsSupportedTerminal reports whether the writer is an interactive terminal
	IsSupportedTerminal() bool
}
