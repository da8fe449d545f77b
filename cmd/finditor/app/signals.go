package app

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/sonemaro/finditor/pkg/logger"
)

// exitInterrupted is the exit status used when a second interrupt forces exit
const exitInterrupted = 130

// signalState tracks the state of signal handling
type signalState struct {
	shutdownInitiated atomic.Bool
}

// setupSignalHandling cancels the run on the first SIGINT or SIGTERM and
// exits on the second
func (a *App) setupSignalHandling() {
	a.log.Debug("Initializing signal handlers")

	a.signals = make(chan os.Signal, 1)
	signal.Notify(a.signals, syscall.SIGINT, syscall.SIGTERM)

	go a.handleSignals(a.signals, &signalState{})
}

// stopSignalHandling restores default signal behaviour
func (a *App) stopSignalHandling() {
	if a.signals == nil {
		return
	}
	signal.Stop(a.signals)

	select {
	case <-a.done:
	default:
		close(a.done)
	}
}

// handleSignals processes incoming system signals
func (a *App) handleSignals(sigChan <-chan os.Signal, state *signalState) {
	for {
		select {
		case <-a.done:
			return
		case sig := <-sigChan:
			a.log.WithFields(logger.Fields{
				"signal": sig.String(),
			}).Debug("Received system signal")

			if !state.shutdownInitiated.CompareAndSwap(false, true) {
				a.handleForcedShutdown()
				return
			}
			a.handleGracefulShutdown()
		}
	}
}

// handleGracefulShutdown cancels in-flight hashing and lock waits. The
// traversal itself runs to completion.
func (a *App) handleGracefulShutdown() {
	a.log.Info("Interrupt received, stopping")
	a.cancel()
}

// handleForcedShutdown performs an immediate shutdown
func (a *App) handleForcedShutdown() {
	a.log.Warn("Received second interrupt, exiting")

	a.mu.Lock()
	p := a.progress
	a.mu.Unlock()
	p.Stop()

	os.Exit(exitInterrupted)
}
