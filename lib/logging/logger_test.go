package logging

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	l := GetLogger("filter-test")
	l.SetLevel(WARNING)

	l.Debugf("debug message")
	l.Infof("info message")
	l.Warningf("warn message")
	l.Errorf("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below the level were emitted:\n%s", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("messages at or above the level were suppressed:\n%s", out)
	}
}

func TestLogFormat(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	l := GetLogger("format-test")
	l.Infof("hello %d", 42)

	out := buf.String()
	if !strings.Contains(out, "INFO ") {
		t.Errorf("level column missing: %q", out)
	}
	if !strings.Contains(out, "format-test") {
		t.Errorf("component column missing: %q", out)
	}
	if !strings.Contains(out, "hello 42") {
		t.Errorf("message missing: %q", out)
	}
	if strings.Count(out, "|") != 2 {
		t.Errorf("expected two column separators: %q", out)
	}
}

func TestGetLoggerReturnsSameInstance(t *testing.T) {
	a := GetLogger("shared")
	b := GetLogger("shared")
	if a != b {
		t.Errorf("GetLogger returned distinct instances for one name")
	}

	a.SetLevel(DEBUG)
	if b.level != DEBUG {
		t.Errorf("level change not visible through second handle")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug": DEBUG, "info": INFO, "warn": WARNING, "warning": WARNING, "ERROR": ERROR,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = (%v, %v), want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Errorf("ParseLevel accepted an unknown level")
	}
}
