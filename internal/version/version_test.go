package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetBuildInfo(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	tests := []struct {
		version string
		semver  string
	}{
		{version: "v1.2.3", semver: "1.2.3"},
		{version: "1.4.0-rc1", semver: "1.4.0"},
		{version: "dev", semver: "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			Version = tt.version
			info := GetBuildInfo()
			assert.Equal(t, tt.version, info.Version)
			assert.Equal(t, tt.semver, info.SemVer)
			assert.NotEmpty(t, info.GoVersion)
			assert.Contains(t, info.Platform, "/")
			assert.Positive(t, info.NumCPU)
		})
	}
}

func TestFullVersion(t *testing.T) {
	out := FullVersion()

	assert.True(t, strings.HasPrefix(out, "Finditor "))
	assert.Contains(t, out, "Version Information:")
	assert.Contains(t, out, "Git Information:")
	assert.Contains(t, out, "Go Version:")
}

func TestShort(t *testing.T) {
	assert.True(t, strings.HasPrefix(Short(), "finditor "))
	assert.Equal(t, "abcdef1", shortCommit("abcdef1234567"))
	assert.Equal(t, "abc", shortCommit("abc"))
}
