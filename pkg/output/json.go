package output

import (
	"encoding/json"
	"time"

	"github.com/sonemaro/finditor/pkg/logger"
)

// document is the structured output shared by JSON and YAML
type document struct {
	Generated  time.Time `json:"generated" yaml:"generated"`
	Count      int       `json:"count" yaml:"count"`
	Entries    []Entry   `json:"entries" yaml:"entries"`
	Statistics *Stats    `json:"statistics,omitempty" yaml:"statistics,omitempty"`
}

func (f *formatter) newDocument(entries []Entry) *document {
	doc := &document{
		Generated: time.Now(),
		Count:     len(entries),
		Entries:   entries,
	}
	if doc.Entries == nil {
		doc.Entries = []Entry{}
	}

	if f.config.WithStats {
		f.log.Debug("Adding statistics to structured output")
		doc.Statistics = f.calculateStats(entries)
	}

	return doc
}

func (f *formatter) formatJSON(entries []Entry) (string, error) {
	f.log.Debug("Formatting JSON output")

	bytes, err := json.MarshalIndent(f.newDocument(entries), "", "  ")
	if err != nil {
		f.log.WithFields(logger.Fields{
			"error": err,
		}).Error("Failed to marshal JSON")
		return "", err
	}

	return string(bytes) + "\n", nil
}
