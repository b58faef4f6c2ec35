package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn")

	l.Infof("hidden %d", 1)
	l.Warnf("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record should be filtered at warn level, got %q", out)
	}
	if !strings.Contains(out, "shown 2") {
		t.Errorf("expected warn record, got %q", out)
	}
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "error")
	l.Debugf("before")

	l.SetLevel("debug")
	l.Debugf("after")

	out := buf.String()
	if strings.Contains(out, "before") {
		t.Errorf("debug record logged before level change: %q", out)
	}
	if !strings.Contains(out, "after") {
		t.Errorf("debug record missing after level change: %q", out)
	}
}

func TestLogger_WithSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info")
	child := l.With("component", "reaper")

	l.SetLevel("error")
	child.Infof("quiet")
	child.Errorf("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("child logger ignored parent level: %q", out)
	}
	if !strings.Contains(out, "component=reaper") {
		t.Errorf("expected attached attribute, got %q", out)
	}
}

func TestParseLevel_UnknownFallsBackToInfo(t *testing.T) {
	if got := parseLevel("verbose"); got.String() != "INFO" {
		t.Errorf("parseLevel(verbose) = %s, want INFO", got)
	}
}
