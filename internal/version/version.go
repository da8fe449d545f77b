// Package version exposes build metadata injected with -ldflags.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

var (
	// These variables are set during build time
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

// maxListedDeps caps the dependency list printed by FullVersion.
const maxListedDeps = 8

// BuildInfo contains build and runtime information
type BuildInfo struct {
	Version   string `json:"version"`
	SemVer    string `json:"semver"`
	BuildDate string `json:"build_date"`

	GitCommit string `json:"git_commit"`
	GitBranch string `json:"git_branch"`

	GoVersion string `json:"go_version"`
	Compiler  string `json:"compiler"`
	Platform  string `json:"platform"`

	NumCPU     int `json:"num_cpu"`
	GOMAXPROCS int `json:"gomaxprocs"`

	MainModule string   `json:"main_module"`
	BuildTags  []string `json:"build_tags"`
	BuildDeps  []Module `json:"build_deps"`
}

// Module represents a Go module dependency
type Module struct {
	Path    string `json:"path"`
	Version string `json:"version"`
}

// GetBuildInfo returns build information for the running binary
func GetBuildInfo() BuildInfo {
	info := BuildInfo{
		Version:    Version,
		SemVer:     strings.TrimPrefix(strings.SplitN(Version, "-", 2)[0], "v"),
		BuildDate:  BuildDate,
		GitCommit:  GitCommit,
		GitBranch:  GitBranch,
		GoVersion:  runtime.Version(),
		Compiler:   runtime.Compiler,
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		NumCPU:     runtime.NumCPU(),
		GOMAXPROCS: runtime.GOMAXPROCS(0),
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	info.MainModule = bi.Main.Path
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "-tags":
			if setting.Value != "" {
				info.BuildTags = strings.Split(setting.Value, ",")
			}
		case "vcs.revision":
			if info.GitCommit == "unknown" {
				info.GitCommit = setting.Value
			}
		case "vcs.time":
			if info.BuildDate == "unknown" {
				info.BuildDate = setting.Value
			}
		}
	}
	for _, dep := range bi.Deps {
		info.BuildDeps = append(info.BuildDeps, Module{Path: dep.Path, Version: dep.Version})
	}

	return info
}

// Short returns the one-line version string
func Short() string {
	info := GetBuildInfo()
	return fmt.Sprintf("finditor %s (%s, %s)", info.Version, shortCommit(info.GitCommit), info.Platform)
}

// FullVersion returns a formatted string with complete version information
func FullVersion() string {
	info := GetBuildInfo()

	var b strings.Builder
	fmt.Fprintf(&b, "Finditor %s\n", info.Version)
	b.WriteString("========================================\n\n")

	section(&b, "Version Information",
		"Version", info.Version,
		"Semantic Ver", info.SemVer,
		"Build Date", info.BuildDate,
	)
	section(&b, "Git Information",
		"Commit", info.GitCommit,
		"Branch", info.GitBranch,
	)
	section(&b, "Go Build Information",
		"Go Version", info.GoVersion,
		"Compiler", info.Compiler,
		"Platform", info.Platform,
		"CPUs", fmt.Sprint(info.NumCPU),
		"GOMAXPROCS", fmt.Sprint(info.GOMAXPROCS),
	)

	if len(info.BuildTags) > 0 {
		b.WriteString("Build Tags:\n")
		for _, tag := range info.BuildTags {
			fmt.Fprintf(&b, "  - %s\n", tag)
		}
		b.WriteString("\n")
	}

	if len(info.BuildDeps) > 0 {
		b.WriteString("Dependencies:\n")
		for _, dep := range info.BuildDeps[:min(maxListedDeps, len(info.BuildDeps))] {
			fmt.Fprintf(&b, "  - %s@%s\n", dep.Path, dep.Version)
		}
		if len(info.BuildDeps) > maxListedDeps {
			fmt.Fprintf(&b, "  ... and %d more\n", len(info.BuildDeps)-maxListedDeps)
		}
	}

	return b.String()
}

// section writes a titled block of label/value pairs
func section(b *strings.Builder, title string, pairs ...string) {
	fmt.Fprintf(b, "%s:\n", title)
	for i := 0; i+1 < len(pairs); i += 2 {
		fmt.Fprintf(b, "  %-13s %s\n", pairs[i]+":", pairs[i+1])
	}
	b.WriteString("\n")
}

func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
