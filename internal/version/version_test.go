package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromSettings_FillsUnset(t *testing.T) {
	settings := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.modified", Value: "true"},
		{Key: "vcs.time", Value: "2026-10-19T08:00:00Z"},
	}

	commit, built := fromSettings(settings, "unknown", "unknown")
	if commit != "0123456-dirty" {
		t.Errorf("expected '0123456-dirty', got %q", commit)
	}
	if built != "2026-10-19T08:00:00Z" {
		t.Errorf("unexpected build time %q", built)
	}
}

func TestFromSettings_LdflagsWin(t *testing.T) {
	settings := []debug.BuildSetting{{Key: "vcs.revision", Value: "0123456789abcdef"}}

	commit, built := fromSettings(settings, "feedbeef", "yesterday")
	if commit != "feedbeef" || built != "yesterday" {
		t.Errorf("expected ldflags values kept, got %q %q", commit, built)
	}
}

func TestString_Product(t *testing.T) {
	if s := String(); !strings.HasPrefix(s, "formcraft dev (commit: ") {
		t.Errorf("unexpected version string %q", s)
	}
}
