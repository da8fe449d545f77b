package output

import (
	"strings"

	"github.com/fatih/color"
)

// formatList prints one path per line, prefixed with its digest when known.
func (f *formatter) formatList(entries []Entry) string {
	var builder strings.Builder

	dirColor := f.newColor(color.FgBlue, color.Bold)
	linkColor := f.newColor(color.FgCyan)

	for _, e := range entries {
		if e.Digest != "" {
			builder.WriteString(e.Digest + "  ")
		}

		switch e.Type {
		case TypeDirectory:
			builder.WriteString(dirColor.Sprint(e.Path))
		case TypeSymlink:
			builder.WriteString(linkColor.Sprint(e.Path))
		default:
			builder.WriteString(e.Path)
		}
		builder.WriteString("\n")
	}

	if f.config.WithStats {
		writeStatsText(&builder, f.calculateStats(entries))
	}

	return builder.String()
}

// newColor returns a color that honours WithColors regardless of the
// terminal fatih/color detected.
func (f *formatter) newColor(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if f.config.WithColors {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}
