package version

import "testing"

func TestVersion(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
}

func TestBuildInfo(t *testing.T) {
	if BuildTime == "" {
		t.Error("BuildTime should be initialized")
	}
	if GitCommit == "" {
		t.Error("GitCommit should be initialized")
	}
}

func TestGenerator(t *testing.T) {
	if got, want := Generator(), "gazette "+Version; got != want {
		t.Errorf("Generator() = %q, want %q", got, want)
	}
}
