package version

import (
	"fmt"
	"runtime"
)

// Binary names.
const (
	Server = "tugofwar-server"
	Puller = "tugofwar-puller"
)

// Set with -ldflags "-X github.com/pscheid92/tugofwar/internal/platform/version.Version=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info describes one tugofwar binary build.
type Info struct {
	Binary    string `json:"binary"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Get returns the build info for the named binary.
func Get(binary string) Info {
	return Info{
		Binary:    binary,
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// String renders the info on one line, as printed by --version.
func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s, %s)", i.Binary, i.Version, i.Commit, i.BuildTime, i.GoVersion)
}
