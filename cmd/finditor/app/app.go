/*
Package app wires the finditor components together for one CLI invocation:
it builds a finder from the loaded configuration, runs the search, optionally
fingerprints matched files on a worker pool, formats the results and writes
them to stdout or a locked output file.

Usage:

	a := app.New(cfg)
	defer a.Shutdown()

	if err := a.Run(&app.SearchOptions{Roots: []string{"."}}); err != nil {
	    return err
	}
*/
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/sonemaro/finditor/internal/config"
	"github.com/sonemaro/finditor/internal/filelock"
	"github.com/sonemaro/finditor/pkg/digest"
	"github.com/sonemaro/finditor/pkg/finder"
	"github.com/sonemaro/finditor/pkg/logger"
	"github.com/sonemaro/finditor/pkg/output"
	"github.com/sonemaro/finditor/pkg/progress"
	"github.com/sonemaro/finditor/pkg/worker"
	"github.com/spf13/afero"
)

// runTimeout bounds a single Run
const runTimeout = 1 * time.Hour

// SearchOptions carries the per-invocation settings that are not part of the
// persisted configuration
type SearchOptions struct {
	// Roots are the directories to search
	Roots []string

	// Newer keeps entries modified within this duration (0 disables)
	Newer time.Duration

	// Contains keeps regular files whose content includes this text
	Contains string

	// Empty keeps empty files and directories
	Empty bool

	// Glob keeps entries whose root-relative path matches this "**" pattern
	Glob string

	// Hash fingerprints matched regular files
	Hash bool

	// Stats appends a summary to the output
	Stats bool
}

// App represents the main application container
type App struct {
	config *config.Config
	log    logger.Logger
	fs     afero.Fs
	stdout io.Writer
	stderr *os.File

	mu       sync.Mutex
	progress progress.Progress

	ctx     context.Context
	cancel  context.CancelFunc
	signals chan os.Signal
	done    chan struct{}
}

// New creates a new application instance
func New(cfg *config.Config) *App {
	log := logger.NewLogger(logger.Config{
		Verbosity: cfg.Verbose,
		Output:    os.Stderr,
		Console:   isTerminal(os.Stderr),
	})

	a := newApp(cfg, afero.NewOsFs(), os.Stdout, log)
	a.setupSignalHandling()

	a.log.WithFields(logger.Fields{
		"workers": cfg.Workers,
		"verbose": cfg.Verbose,
		"config":  cfg.File,
	}).Info("Application initialized")
	a.log.WithFields(logger.Fields{
		"config": cfg.String(),
	}).Trace("Effective configuration")

	return a
}

func newApp(cfg *config.Config, fs afero.Fs, stdout io.Writer, log logger.Logger) *App {
	ctx, cancel := context.WithCancel(context.Background())

	return &App{
		config:   cfg,
		log:      log,
		fs:       fs,
		stdout:   stdout,
		stderr:   os.Stderr,
		progress: progress.Discard(),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Run executes one search with the given options
func (a *App) Run(opts *SearchOptions) (err error) {
	defer func() {
		if r := recover(); r != nil {
			a.log.WithFields(logger.Fields{
				"panic": r,
				"stack": string(debug.Stack()),
			}).Error("Recovered from panic")
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	format, err := output.ParseFormat(a.config.Output)
	if err != nil {
		return err
	}

	roots := opts.Roots
	if len(roots) == 0 {
		roots = []string{"."}
	}

	a.log.WithFields(logger.Fields{
		"roots":  roots,
		"format": format,
		"hash":   opts.Hash,
	}).Info("Starting search")

	ctx, cancel := context.WithTimeout(a.ctx, runTimeout)
	defer cancel()

	start := time.Now()
	resolved := resolveRoots(roots)

	spinner := a.newProgress(progress.StyleSpinner)
	spinner.Start("Searching...", 0)

	f := a.buildFinder(opts, resolved)
	paths, err := f.Search(roots...)
	if err != nil {
		spinner.Error(fmt.Sprintf("Search failed: %v", err))
		return fmt.Errorf("search failed: %w", err)
	}
	spinner.Stop()

	entries := a.describe(paths, resolved)

	if opts.Hash {
		if err := a.hashEntries(ctx, entries, resolved); err != nil {
			return err
		}
	}

	formatter := output.NewFormatter(output.Config{
		Format:     format,
		WithStats:  opts.Stats,
		WithColors: a.colorsEnabled(),
	}, a.log)

	text, err := formatter.Format(entries)
	if err != nil {
		return fmt.Errorf("output formatting failed: %w", err)
	}

	if err := a.writeOutput(ctx, text, a.config.OutputFile); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	a.log.WithFields(logger.Fields{
		"matches":  len(entries),
		"duration": time.Since(start).String(),
		"outputTo": a.config.OutputFile,
	}).Info("Search completed")

	return nil
}

// Shutdown stops background work and releases signal handlers
func (a *App) Shutdown() error {
	a.log.Debug("Shutting down")

	a.cancel()
	a.stopSignalHandling()

	a.mu.Lock()
	p := a.progress
	a.mu.Unlock()
	p.Stop()

	return nil
}

// buildFinder applies configured rules and CLI predicates to a new finder
func (a *App) buildFinder(opts *SearchOptions, roots []string) *finder.Finder {
	f := a.config.Apply(finder.New(a.fs, a.log))

	if opts.Newer > 0 {
		f.AddExecs(finder.ModifiedSince(a.fs, time.Now().Add(-opts.Newer)))
	}
	if opts.Contains != "" {
		f.AddExecs(finder.Contains(a.fs, opts.Contains))
	}
	if opts.Empty {
		f.AddExecs(finder.Empty(a.fs))
	}
	if opts.Glob != "" {
		f.AddExecs(finder.MatchGlob(opts.Glob, roots...))
	}

	return f
}

// describe stats every result. Relative results are looked up under each root
// in turn.
func (a *App) describe(paths []string, roots []string) []output.Entry {
	entries := make([]output.Entry, 0, len(paths))

	for _, p := range paths {
		var info os.FileInfo
		for _, candidate := range a.candidates(p, roots) {
			if fi, err := a.lstat(candidate); err == nil {
				info = fi
				break
			}
		}
		if info == nil {
			a.log.WithFields(logger.Fields{
				"path": p,
			}).Debug("Result could not be described")
		}
		entries = append(entries, output.NewEntry(p, info))
	}

	return entries
}

// candidates lists the filesystem paths a result may refer to
func (a *App) candidates(p string, roots []string) []string {
	if !a.config.Relative {
		return []string{p}
	}

	list := make([]string, 0, len(roots))
	for _, root := range roots {
		list = append(list, path.Join(root, p))
	}
	return list
}

func (a *App) lstat(name string) (os.FileInfo, error) {
	if lst, ok := a.fs.(afero.Lstater); ok {
		info, _, err := lst.LstatIfPossible(name)
		return info, err
	}
	return a.fs.Stat(name)
}

// hashEntries fills in the digest of every regular file
func (a *App) hashEntries(ctx context.Context, entries []output.Entry, roots []string) error {
	var (
		files   []string
		indexes []int
	)
	for i, e := range entries {
		if e.Type != output.TypeFile {
			continue
		}
		files = append(files, a.locate(e.Path, roots))
		indexes = append(indexes, i)
	}

	bar := a.newProgress(progress.StyleBar)
	bar.Start("Hashing files", int64(len(files)))

	digests, err := digest.Files(ctx, a.fs, files, worker.Config{
		Workers:   a.config.Workers,
		RateLimit: a.config.RateLimit,
		OnDone: func(id int, _ error) {
			bar.Increment(path.Base(files[id]), entries[indexes[id]].Size)
		},
	}, a.log)

	for n, i := range indexes {
		entries[i].Digest = digests[files[n]]
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			bar.Error("Hashing interrupted")
			return fmt.Errorf("hashing interrupted: %w", ctxErr)
		}
		bar.Error(fmt.Sprintf("Hashed %d of %d files", len(digests), len(files)))
		a.log.WithFields(logger.Fields{
			"error": err,
		}).Warn("Some digests are missing")
		return nil
	}

	bar.Complete(fmt.Sprintf("Hashed %d files", len(files)))
	return nil
}

// locate returns the first existing candidate for a relative result
func (a *App) locate(p string, roots []string) string {
	list := a.candidates(p, roots)
	for _, candidate := range list {
		if _, err := a.lstat(candidate); err == nil {
			return candidate
		}
	}
	return list[0]
}

// writeOutput writes the formatted output to stdout or, under an advisory
// lock, to outputPath
func (a *App) writeOutput(ctx context.Context, content string, outputPath string) error {
	a.log.WithFields(logger.Fields{
		"path": outputPath,
	}).Debug("Writing output")

	if !strings.HasSuffix(content, "\n") && content != "" {
		content += "\n"
	}

	if outputPath == "" {
		if _, err := io.WriteString(a.stdout, content); err != nil {
			a.log.WithFields(logger.Fields{
				"error": err,
			}).Error("Failed to write to stdout")
			return err
		}
		return nil
	}

	if err := filelock.WriteFile(ctx, outputPath, []byte(content), 0o644); err != nil {
		a.log.WithFields(logger.Fields{
			"error": err,
			"path":  outputPath,
		}).Error("Failed to write output file")
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("interrupted while waiting for %s", outputPath)
		}
		return err
	}

	a.log.WithFields(logger.Fields{
		"path": outputPath,
	}).Info("Output written successfully")
	return nil
}

// newProgress returns a live progress line when stderr is an interactive
// terminal and progress is enabled, and a no-op otherwise
func (a *App) newProgress(style progress.Style) progress.Progress {
	p := progress.Discard()
	if !a.config.NoProgress && isTerminal(a.stderr) {
		p = progress.New(progress.Config{
			Style:             style,
			ShowStats:         style == progress.StyleBar,
			NoColor:           a.config.NoColor,
			RefreshRate:       100 * time.Millisecond,
			HideAfterComplete: style == progress.StyleSpinner,
			Writer:            a.stderr,
		}, a.log)
	}

	a.mu.Lock()
	a.progress = p
	a.mu.Unlock()

	return p
}

// colorsEnabled reports whether results are printed with color
func (a *App) colorsEnabled() bool {
	if a.config.NoColor || a.config.OutputFile != "" {
		return false
	}
	f, ok := a.stdout.(*os.File)
	return ok && isTerminal(f)
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// resolveRoots returns the absolute slash-separated form of each root, with
// symlinks resolved where possible, for matching paths reported by the finder
func resolveRoots(roots []string) []string {
	resolved := make([]string, 0, len(roots))
	for _, root := range roots {
		p := filepath.FromSlash(strings.ReplaceAll(root, `\`, "/"))
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		if target, err := filepath.EvalSymlinks(p); err == nil {
			p = target
		}
		resolved = append(resolved, filepath.ToSlash(p))
	}
	return resolved
}
