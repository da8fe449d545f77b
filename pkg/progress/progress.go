/*
Package progress renders a single updating status line while finditor
fingerprints matched files. Output goes to stderr by default so that
results written to stdout stay clean.

Basic usage:

	p := progress.New(progress.Config{Style: progress.StyleBar}, log)
	p.Start("Hashing files", int64(len(paths)))
	for _, path := range paths {
		p.Increment(path, size)
	}
	p.Complete("Hashing complete")
*/
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sonemaro/finditor/pkg/logger"
	"golang.org/x/term"
)

type progress struct {
	config Config
	log    logger.Logger
	writer io.Writer

	mu        sync.Mutex
	status    Status
	message   string
	startTime time.Time
	active    bool
	renderer  renderer
	width     int

	stop chan struct{}
	done chan struct{}
}

type fdWriter interface {
	Fd() uintptr
}

// New creates a new progress visualization instance
func New(config Config, log logger.Logger) Progress {
	if config.RefreshRate == 0 {
		config.RefreshRate = 100 * time.Millisecond
	}
	if config.Writer == nil {
		config.Writer = os.Stderr
	}

	p := &progress{
		config: config,
		log:    log,
		writer: config.Writer,
	}

	p.width = config.Width
	if p.width == 0 {
		p.width = p.terminalWidth()
	}
	p.renderer = newRenderer(config, p.width)

	p.log.WithFields(logger.Fields{
		"style":     config.Style,
		"width":     p.width,
		"showStats": config.ShowStats,
		"noColor":   config.NoColor,
		"refresh":   config.RefreshRate,
	}).Debug("Created new progress instance")

	return p
}

func (p *progress) Start(message string, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active {
		return
	}

	p.log.WithFields(logger.Fields{
		"message": message,
		"total":   total,
	}).Debug("Starting progress")

	p.message = message
	p.status = Status{Total: total}
	p.startTime = time.Now()
	p.active = true
	p.stop = make(chan struct{})
	p.done = make(chan struct{})

	go p.renderLoop(p.stop, p.done)
}

func (p *progress) Increment(item string, bytes int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.Current++
	p.status.BytesRead += bytes
	p.status.CurrentItem = item
}

func (p *progress) Update(status Status) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status = status
}

func (p *progress) Complete(message string) {
	p.halt()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.log.WithFields(logger.Fields{
		"message": message,
	}).Debug("Completing progress")

	p.message = message
	p.status.Current = p.status.Total
	p.status.CurrentItem = ""

	if p.config.HideAfterComplete {
		p.clearLine()
		return
	}
	p.render(stateDone)
	fmt.Fprintln(p.writer)
}

func (p *progress) Error(message string) {
	p.halt()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.log.WithFields(logger.Fields{
		"message": message,
	}).Debug("Error in progress")

	p.message = message
	p.status.CurrentItem = ""
	p.render(stateFailed)
	fmt.Fprintln(p.writer)
}

func (p *progress) Stop() {
	p.halt()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearLine()
}

// halt stops the render loop and waits for it to exit. It must be called
// without holding mu.
func (p *progress) halt() {
	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return
	}
	p.active = false
	close(p.stop)
	done := p.done
	p.mu.Unlock()

	<-done
}

func (p *progress) IsSupportedTerminal() bool {
	if f, ok := p.writer.(fdWriter); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

func (p *progress) renderLoop(stop <-chan struct{}, done chan<- struct{}) {
	ticker := time.NewTicker(p.config.RefreshRate)
	defer ticker.Stop()
	defer close(done)

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.mu.Lock()
			p.render(stateRunning)
			p.mu.Unlock()
		}
	}
}

func (p *progress) render(state renderState) {
	status := p.status
	status.CurrentItem = shortenItem(status.CurrentItem, p.width/3)

	line := p.renderer.render(status, p.message, p.statistics(), state)
	p.clearLine()
	fmt.Fprint(p.writer, line)
}

func (p *progress) clearLine() {
	if p.IsSupportedTerminal() {
		fmt.Fprint(p.writer, "\r\033[K")
	} else {
		fmt.Fprint(p.writer, "\r")
	}
}

func (p *progress) terminalWidth() int {
	if f, ok := p.writer.(fdWriter); ok && term.IsTerminal(int(f.Fd())) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return 80
}

func (p *progress) statistics() Statistics {
	elapsed := time.Since(p.startTime)

	stats := Statistics{
		ElapsedTime:    elapsed,
		BytesProcessed: p.status.BytesRead,
	}

	if elapsed > 0 {
		stats.ProcessingSpeed = float64(p.status.Current) / elapsed.Seconds()
	}

	if p.status.Total > 0 {
		stats.ProgressPercentage = float64(p.status.Current) / float64(p.status.Total) * 100
		if stats.ProcessingSpeed > 0 {
			remaining := float64(p.status.Total - p.status.Current)
			stats.RemainingTime = time.Duration(remaining / stats.ProcessingSpeed * float64(time.Second))
		}
	}

	return stats
}

// Discard returns a Progress that renders nothing.
func Discard() Progress {
	return discard{}
}

type discard struct{}

func (discard) Start(string, int64)       {}
func (discard) Increment(string, int64)   {}
func (discard) Update(Status)             {}
func (discard) Complete(string)           {}
func (discard) Error(string)              {}
func (discard) Stop()                     {}
func (discard) IsSupportedTerminal() bool { return false }
