// Package version reports build information stamped in with -ldflags, e.g.
//
//	-X github.com/grovetools/sheetsync/version.Version=v0.4.0
package version

import (
	"fmt"
	"runtime"
	"strings"
)

var (
	Version   = "dev"
	Commit    = "none"
	Branch    = "unknown"
	BuildDate = "unknown"
)

// Info is the build information of the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Branch    string `json:"branch"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Compiler  string `json:"compiler"`
	Platform  string `json:"platform"`
}

// GetInfo returns the build information.
func GetInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Branch:    Branch,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Compiler:  runtime.Compiler,
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String lists every field on its own line.
func (i Info) String() string {
	var b strings.Builder
	for _, row := range [][2]string{
		{"Commit", i.Commit},
		{"Branch", i.Branch},
		{"Built", i.BuildDate},
		{"Go", i.GoVersion + " (" + i.Compiler + ")"},
		{"Platform", i.Platform},
	} {
		fmt.Fprintf(&b, "  %-9s %s\n", row[0]+":", row[1])
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// UserAgent identifies sheetsync to the editor backend.
func UserAgent() string {
	return fmt.Sprintf("sheetsync/%s (%s)", Version, runtime.GOOS)
}
