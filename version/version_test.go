package version

import (
	"bytes"
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withBuildInfo(t *testing.T, info *debug.BuildInfo) {
	t.Helper()
	orig := readBuildInfo
	origVersion, origCommit, origDate := Version, Commit, Date
	readBuildInfo = func() (*debug.BuildInfo, bool) { return info, info != nil }
	Version, Commit, Date = "dev", "unknown", "unknown"
	t.Cleanup(func() {
		readBuildInfo = orig
		Version, Commit, Date = origVersion, origCommit, origDate
	})
}

func TestLinkTimeValuesWin(t *testing.T) {
	withBuildInfo(t, &debug.BuildInfo{Main: debug.Module{Version: "v0.0.1"}})
	Version, Commit, Date = "v1.2.3", "0123456789abcdef", "2025-01-02"

	assert.Equal(t, "v1.2.3", GetVersion())
	assert.Equal(t, "v1.2.3 (0123456, built 2025-01-02)", GetFullVersion())
}

func TestBuildInfoFallback(t *testing.T) {
	withBuildInfo(t, &debug.BuildInfo{
		Main: debug.Module{Version: "v0.4.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "fedcba9876543210"},
			{Key: "vcs.modified", Value: "true"},
		},
	})

	info := GetInfo()
	assert.Equal(t, "v0.4.0", info.Version)
	assert.Equal(t, "fedcba9876543210", info.Commit)
	assert.Equal(t, "unknown", info.Date)
	assert.True(t, info.Modified)
	assert.Equal(t, Package, info.Package)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, "v0.4.0 (fedcba9-dirty)", GetFullVersion())
}

func TestDevelopmentDefaults(t *testing.T) {
	withBuildInfo(t, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})

	assert.Equal(t, "development", GetVersion())
	assert.Equal(t, "unknown", GetCommit())
	assert.Equal(t, "development", GetFullVersion())

	withBuildInfo(t, nil)
	assert.Equal(t, "development", GetVersion())
}

func TestPrintVersion(t *testing.T) {
	withBuildInfo(t, nil)
	var buf bytes.Buffer
	PrintVersion(&buf)
	assert.Contains(t, buf.String(), "jsonfs version development")
	assert.Contains(t, buf.String(), "Go: "+runtime.Version())
}
