package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestMaskFilters(t *testing.T) {
	l := New(LevelWarn | LevelError)
	var buf bytes.Buffer
	l.backend.SetOutput(&buf)

	l.Debugf("dropped")
	l.Infof("dropped")
	l.Warnf("kept warn")
	l.Errorf("kept error")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("masked levels leaked: %q", out)
	}
	if !strings.Contains(out, "kept warn") || !strings.Contains(out, "kept error") {
		t.Errorf("unmasked levels missing: %q", out)
	}
}

func TestStubPrefix(t *testing.T) {
	l := New(LevelAll)
	var buf bytes.Buffer
	l.backend.SetOutput(&buf)

	l.Stubf("not implemented")
	if !strings.Contains(buf.String(), "stub: not implemented") {
		t.Errorf("stub output = %q", buf.String())
	}
}

func TestHandlerPreemptsMask(t *testing.T) {
	l := New(0)
	var buf bytes.Buffer
	l.backend.SetOutput(&buf)

	var got []Level
	var messages []string
	l.Handler = func(level Level, message string) {
		got = append(got, level)
		messages = append(messages, message)
	}

	l.Debugf("d %d", 1)
	l.Fatalf("f") // handler swallows fatal; no termination

	if len(got) != 2 || got[0] != LevelDebug || got[1] != LevelFatal {
		t.Errorf("handler levels = %v", got)
	}
	if messages[0] != "d 1" {
		t.Errorf("handler message = %q", messages[0])
	}
	if buf.Len() != 0 {
		t.Errorf("backend received output despite handler: %q", buf.String())
	}
}

func TestLevelStrings(t *testing.T) {
	for level, want := range map[Level]string{
		LevelFatal: "FATAL",
		LevelError: "ERROR",
		LevelWarn:  "WARN",
		LevelInfo:  "INFO",
		LevelDebug: "DEBUG",
		LevelStub:  "STUB",
	} {
		if got := level.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", level, got, want)
		}
	}
}
