package output

import (
	"github.com/sonemaro/finditor/pkg/logger"
	"gopkg.in/yaml.v3"
)

func (f *formatter) formatYAML(entries []Entry) (string, error) {
	f.log.Debug("Formatting YAML output")

	bytes, err := yaml.Marshal(f.newDocument(entries))
	if err != nil {
		f.log.WithFields(logger.Fields{
			"error": err,
		}).Error("Failed to marshal YAML")
		return "", err
	}

	return string(bytes), nil
}
