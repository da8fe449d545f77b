package config

// Constants for configuration limits and defaults
const (
	// DefaultFile is the config file looked up in the working directory
	// when no explicit path is given
	DefaultFile = ".finditor.yaml"

	// EnvPrefix prefixes every environment variable read by Load
	EnvPrefix = "FINDITOR"

	// DefaultOutput is the output format used when none is configured
	DefaultOutput = "list"

	// MaxWorkerMultiplier is the maximum multiple of CPU cores for worker count
	MaxWorkerMultiplier = 4

	// UnlimitedDepth disables the maximum depth bound
	UnlimitedDepth = -1
)

// listKeys are read as string lists. Environment values are comma separated.
var listKeys = []string{
	"names",
	"not_names",
	"paths",
	"not_paths",
	"prunes",
	"discards",
	"sizes",
}
