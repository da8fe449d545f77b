package output

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/sonemaro/finditor/pkg/logger"
)

// Stats summarises a result set
type Stats struct {
	Files     int   `json:"totalFiles" yaml:"totalFiles"`
	Dirs      int   `json:"totalDirectories" yaml:"totalDirectories"`
	Symlinks  int   `json:"totalSymlinks" yaml:"totalSymlinks"`
	Other     int   `json:"totalOther" yaml:"totalOther"`
	TotalSize int64 `json:"totalSize" yaml:"totalSize"`

	// Duplicates counts files whose digest was already seen
	Duplicates int `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
}

func (f *formatter) calculateStats(entries []Entry) *Stats {
	stats := Summarize(entries)

	f.log.WithFields(logger.Fields{
		"files":      stats.Files,
		"dirs":       stats.Dirs,
		"symlinks":   stats.Symlinks,
		"size":       stats.TotalSize,
		"duplicates": stats.Duplicates,
	}).Debug("Statistics calculated")

	return stats
}

// Summarize counts entries by type, sums file sizes and counts duplicate digests.
func Summarize(entries []Entry) *Stats {
	stats := &Stats{}
	seen := map[string]struct{}{}

	for _, e := range entries {
		switch e.Type {
		case TypeFile:
			stats.Files++
			stats.TotalSize += e.Size
		case TypeDirectory:
			stats.Dirs++
		case TypeSymlink:
			stats.Symlinks++
		default:
			stats.Other++
		}

		if e.Digest == "" {
			continue
		}
		if _, ok := seen[e.Digest]; ok {
			stats.Duplicates++
			continue
		}
		seen[e.Digest] = struct{}{}
	}

	return stats
}

func writeStatsText(builder *strings.Builder, stats *Stats) {
	builder.WriteString("\nStatistics:\n")
	builder.WriteString(fmt.Sprintf("  Total Files: %s\n", humanize.Comma(int64(stats.Files))))
	builder.WriteString(fmt.Sprintf("  Total Directories: %s\n", humanize.Comma(int64(stats.Dirs))))
	builder.WriteString(fmt.Sprintf("  Total Size: %s\n", humanize.IBytes(uint64(stats.TotalSize))))
	builder.WriteString(fmt.Sprintf("  Symlinks: %d\n", stats.Symlinks))
	if stats.Other > 0 {
		builder.WriteString(fmt.Sprintf("  Other: %d\n", stats.Other))
	}
	if stats.Duplicates > 0 {
		builder.WriteString(fmt.Sprintf("  Duplicates: %d\n", stats.Duplicates))
	}
}
