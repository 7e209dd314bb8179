// SPDX-License-Identifier: MIT
//
// Package build manages build information embedded into the binary at
// compile time via linker flags: application name, build timestamp, Git
// commit hash and semantic version. Development builds without ldflags
// fall back to "dev" placeholders instead of failing.
package build

type ldFlags struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

// Package-level variables for build information. These are populated by
// -ldflags during compilation, for example:
//
//	go build -ldflags "-X flightframe/pkg/build.buildName=flightframe"
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = &ldFlags{
		Name:    "flightframe",
		Time:    "dev",
		Commit:  "dev",
		Version: "dev",
	}
)

// Initialize copies build information from ldflags variables into the
// buildFlags struct. Unset flags keep their development defaults. This
// should be called early in program startup.
func Initialize() {
	if buildName != "" {
		buildFlags.Name = buildName
	}
	if buildTime != "" {
		buildFlags.Time = buildTime
	}
	if buildCommit != "" {
		buildFlags.Commit = buildCommit
	}
	if buildVersion != "" {
		buildFlags.Version = buildVersion
	}
}

// GetBuildFlags returns the current build information. Initialize() should
// be called before this function.
func GetBuildFlags() *ldFlags {
	return buildFlags
}
