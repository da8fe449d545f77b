/*
Package output renders search results as a plain list, a tree, JSON or YAML,
optionally followed by statistics.

Basic usage:

	formatter := output.NewFormatter(output.Config{
		Format:     output.FormatTree,
		WithStats:  true,
		WithColors: true,
	}, log)

	text, err := formatter.Format(entries)
*/
package output

import (
	"fmt"
	"strings"

	"github.com/sonemaro/finditor/pkg/logger"
)

// Format represents the output format type
type Format string

const (
	FormatList Format = "list"
	FormatTree Format = "tree"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists every supported format.
var Formats = []Format{FormatList, FormatTree, FormatJSON, FormatYAML}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid output format %q: must be one of %v", s, Formats)
}

// Config holds formatter configuration
type Config struct {
	Format     Format
	WithStats  bool
	WithColors bool
}

// Formatter defines the interface for output formatting
type Formatter interface {
	Format([]Entry) (string, error)
}

type formatter struct {
	config Config
	log    logger.Logger
}

// NewFormatter creates a new formatter instance
func NewFormatter(config Config, log logger.Logger) Formatter {
	return &formatter{
		config: config,
		log:    log,
	}
}

// Format renders entries in the configured format
func (f *formatter) Format(entries []Entry) (string, error) {
	f.log.WithFields(logger.Fields{
		"format":     f.config.Format,
		"entries":    len(entries),
		"withStats":  f.config.WithStats,
		"withColors": f.config.WithColors,
	}).Debug("Starting format operation")

	switch f.config.Format {
	case FormatList:
		return f.formatList(entries), nil
	case FormatTree:
		return f.formatTree(entries), nil
	case FormatJSON:
		return f.formatJSON(entries)
	case FormatYAML:
		return f.formatYAML(entries)
	default:
		err := fmt.Errorf("unsupported format: %s", f.config.Format)
		f.log.Error(err.Error())
		return "", err
	}
}
