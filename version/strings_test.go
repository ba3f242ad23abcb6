package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withBuildInfo(t *testing.T, info *debug.BuildInfo) {
	saved := readBuildInfo
	t.Cleanup(func() {
		readBuildInfo = saved
		Hash, CompileTime, ReleaseVersion = "", "", ""
	})
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return info, info != nil
	}
}

func TestVersionFromLdflags(t *testing.T) {
	withBuildInfo(t, nil)
	ReleaseVersion = "1.2.3"
	Hash = "abc123"
	CompileTime = "2024-01-02T03:04:05+0000"

	assert.Equal(t, "1.2.3", Version())
	assert.Equal(t, "ledgerdb 1.2.3 compiled at 2024-01-02T03:04:05+0000 from git hash abc123", LongVersion())
}

func TestVersionFromBuildInfo(t *testing.T) {
	info := &debug.BuildInfo{
		Main:     debug.Module{Version: "v0.4.0"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "def456"}},
	}
	withBuildInfo(t, info)

	assert.Equal(t, "v0.4.0", Version())
	assert.Equal(t, "ledgerdb v0.4.0 compiled at unknown time from git hash def456", LongVersion())
}

func TestUnknownVersion(t *testing.T) {
	withBuildInfo(t, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})

	assert.Equal(t, UnknownVersion, Version())
	assert.Equal(t, "ledgerdb dev compiled at unknown time from git hash unknown", LongVersion())
}
