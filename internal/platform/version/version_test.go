package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet_Defaults(t *testing.T) {
	info := Get(Server)

	assert.Equal(t, Info{
		Binary:    "tugofwar-server",
		Version:   "dev",
		Commit:    "unknown",
		BuildTime: "unknown",
		GoVersion: runtime.Version(),
	}, info)
}

func TestGet_Injected(t *testing.T) {
	oldVersion, oldCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = oldVersion, oldCommit })

	Version = "v1.2.0"
	Commit = "abc1234"

	info := Get(Puller)
	assert.Equal(t, "v1.2.0", info.Version)
	assert.Equal(t, "abc1234", info.Commit)
}

func TestInfo_String(t *testing.T) {
	info := Info{Binary: "tugofwar-puller", Version: "v0.3.1", Commit: "9f2c1ab", BuildTime: "2026-01-02T03:04:05Z", GoVersion: "go1.24.1"}

	assert.Equal(t, "tugofwar-puller v0.3.1 (commit 9f2c1ab, built 2026-01-02T03:04:05Z, go1.24.1)", info.String())
}
