package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func reset(t *testing.T) {
	t.Helper()
	v, c, d := Version, Commit, Date
	Version, Commit, Date = "dev", "none", "unknown"
	t.Cleanup(func() { Version, Commit, Date = v, c, d })
}

func TestFill(t *testing.T) {
	tests := []struct {
		name                   string
		info                   debug.BuildInfo
		version, commit, built string
	}{
		{
			name:    "devel build keeps defaults",
			info:    debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			version: "dev", commit: "none", built: "unknown",
		},
		{
			name: "go install with vcs stamp",
			info: debug.BuildInfo{
				Main: debug.Module{Version: "v0.3.1"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "abc123"},
					{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
				},
			},
			version: "v0.3.1", commit: "abc123", built: "2026-01-02T03:04:05Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reset(t)
			fill(&tt.info)
			if Version != tt.version || Commit != tt.commit || Date != tt.built {
				t.Errorf("fill() = %s/%s/%s, want %s/%s/%s", Version, Commit, Date, tt.version, tt.commit, tt.built)
			}
		})
	}
}

func TestFillKeepsLdflags(t *testing.T) {
	reset(t)
	Version, Commit = "v1.0.0", "deadbeef"
	fill(&debug.BuildInfo{
		Main:     debug.Module{Version: "v0.9.0"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}},
	})
	if Version != "v1.0.0" || Commit != "deadbeef" {
		t.Errorf("ldflags values were overwritten: %s %s", Version, Commit)
	}
}

func TestTemplate(t *testing.T) {
	reset(t)
	Version = "v1.2.3"
	if got := Template(); !strings.Contains(got, "{{.Name}} version v1.2.3") {
		t.Errorf("Template() = %q", got)
	}
	if got := String(); !strings.HasPrefix(got, "version: v1.2.3\n") {
		t.Errorf("String() = %q", got)
	}
}
