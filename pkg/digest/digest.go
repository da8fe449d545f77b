// Package digest fingerprints files with xxhash64. Digests identify identical
// content across search results; they are not cryptographic.
package digest

import (
	"context"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/sonemaro/finditor/pkg/logger"
	"github.com/sonemaro/finditor/pkg/worker"
	"github.com/spf13/afero"
)

// Empty is the digest reported for zero-length content.
const Empty = "0000000000000000"

// Sum formats the xxhash64 of b.
func Sum(b []byte) string {
	if len(b) == 0 {
		return Empty
	}
	return format(xxhash.Sum64(b))
}

// File streams path through xxhash64.
func File(ctx context.Context, fs afero.Fs, path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := xxhash.New()
	n, err := io.Copy(h, &ctxReader{ctx: ctx, r: f})
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if n == 0 {
		return Empty, nil
	}

	return format(h.Sum64()), nil
}

func format(sum uint64) string {
	return fmt.Sprintf("%016x", sum)
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// Files hashes paths on a worker pool. The returned map holds every digest
// that could be computed; failures are joined into the error.
func Files(ctx context.Context, fs afero.Fs, paths []string, cfg worker.Config, log logger.Logger) (map[string]string, error) {
	digests := make(map[string]string, len(paths))
	if len(paths) == 0 {
		return digests, nil
	}

	pool, err := worker.NewPool(cfg)
	if err != nil {
		return digests, fmt.Errorf("failed to create worker pool: %w", err)
	}
	if err := pool.Start(ctx); err != nil {
		return digests, fmt.Errorf("failed to start worker pool: %w", err)
	}
	defer func() {
		if err := pool.Stop(); err != nil {
			log.WithFields(logger.Fields{
				"error": err,
			}).Warn("Error stopping worker pool")
		}
	}()

	log.WithFields(logger.Fields{
		"files":   len(paths),
		"workers": cfg.Workers,
	}).Debug("Hashing files")

	for i, path := range paths {
		i, path := i, path
		task := worker.Task{
			ID: i,
			Execute: func(ctx context.Context) (worker.Result, error) {
				sum, err := File(ctx, fs, path)
				if err != nil {
					return worker.Result{}, err
				}
				return worker.Result{ID: i, Data: sum}, nil
			},
		}
		if err := pool.Submit(task); err != nil {
			return digests, fmt.Errorf("failed to submit %s: %w", path, err)
		}
	}

	results, err := pool.Wait()
	for _, r := range results {
		digests[paths[r.ID]] = r.Data.(string)
	}
	if err != nil {
		log.WithFields(logger.Fields{
			"error":  err,
			"hashed": len(digests),
		}).Warn("Some files could not be hashed")
	}

	return digests, err
}
