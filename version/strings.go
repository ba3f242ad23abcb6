package version

import (
	"fmt"
	"runtime/debug"
)

// These are targets for compiling in build information, e.g.
// -ldflags "-X github.com/ledgerkit/ledgerdb/version.Hash=$(git log -n 1 --pretty=%H)"

var (
	// Hash Git commit hash. Output of `git log -n 1 --pretty="%H"`
	Hash string

	// CompileTime YYYY-mm-ddTHH:MM:SS+ZZZZ
	CompileTime string

	// ReleaseVersion is set using -ldflags during build.
	ReleaseVersion string
)

// UnknownVersion is used when the version is not known.
const UnknownVersion = "(unknown version)"

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// Version the binary version. Without ldflags the module version recorded
// by `go install` is used.
func Version() string {
	if ReleaseVersion != "" {
		return ReleaseVersion
	}
	if info, ok := readBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return UnknownVersion
}

// vcsRevision falls back to the revision stamped by the go tool.
func vcsRevision() string {
	if Hash != "" {
		return Hash
	}
	if info, ok := readBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value
			}
		}
	}
	return "unknown"
}

// LongVersion the long form of the binary version.
func LongVersion() string {
	tagVersion := Version()
	if tagVersion == UnknownVersion {
		tagVersion = "dev"
	}
	compileTime := CompileTime
	if compileTime == "" {
		compileTime = "unknown time"
	}
	return fmt.Sprintf("ledgerdb %s compiled at %s from git hash %s", tagVersion, compileTime, vcsRevision())
}
