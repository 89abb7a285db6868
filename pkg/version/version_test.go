package version

import "testing"

func TestDefaults(t *testing.T) {
	if Version != "dev" {
		t.Errorf("default Version = %q, want %q", Version, "dev")
	}
	if GitCommit != "unknown" {
		t.Errorf("default GitCommit = %q, want %q", GitCommit, "unknown")
	}
}

func TestInfo(t *testing.T) {
	saved := [3]string{Version, GitCommit, BuildDate}
	defer func() { Version, GitCommit, BuildDate = saved[0], saved[1], saved[2] }()

	Version, GitCommit, BuildDate = "v0.3.1", "abc1234", "2026-10-01T00:00:00Z"
	if got, want := Info(), "v0.3.1 (abc1234) built 2026-10-01T00:00:00Z"; got != want {
		t.Errorf("Info() = %q, want %q", got, want)
	}
}

func TestUserAgent(t *testing.T) {
	if got := UserAgent(); got != "psktron/"+Version {
		t.Errorf("UserAgent() = %q", got)
	}
}
