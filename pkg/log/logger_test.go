package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func newBufferedLogger(level Level, formatter Formatter) (Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := NewLogger(
		WithLevel(level),
		WithFormatter(formatter),
		WithOutput(NewWriterOutput(&buf)),
	)
	return l, &buf
}

func TestLevelGating(t *testing.T) {
	l, buf := newBufferedLogger(WarnLevel, &TextFormatter{DisableTimestamp: true})
	l.Debug("quiet")
	l.Info("quiet")
	l.Warn("loud")
	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Fatalf("below-level entries leaked: %q", out)
	}
	if !strings.Contains(out, "loud") {
		t.Fatalf("warn entry missing: %q", out)
	}
}

func TestTextFormatterFields(t *testing.T) {
	l, buf := newBufferedLogger(InfoLevel, &TextFormatter{DisableTimestamp: true})
	l.Info("write", Str("dataset", "/fictrac/output"), Int("rows", 8))
	out := buf.String()
	if !strings.Contains(out, "dataset=/fictrac/output") || !strings.Contains(out, "rows=8") {
		t.Fatalf("fields missing: %q", out)
	}
}

func TestWithCarriesFields(t *testing.T) {
	l, buf := newBufferedLogger(InfoLevel, &TextFormatter{DisableTimestamp: true})
	child := l.With(Component("logserver"))
	child.Info("started")
	if !strings.Contains(buf.String(), "component=logserver") {
		t.Fatalf("component field missing: %q", buf.String())
	}
}

func TestJSONFormatter(t *testing.T) {
	l, buf := newBufferedLogger(InfoLevel, &JSONFormatter{})
	l.WithError(errors.New("disk full")).Error("flush failed", Str("dataset", "/x"))

	var obj map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &obj); err != nil {
		t.Fatalf("invalid json output %q: %v", buf.String(), err)
	}
	if obj["level"] != "ERROR" || obj["msg"] != "flush failed" {
		t.Fatalf("unexpected entry: %v", obj)
	}
	if obj["error"] != "disk full" || obj["dataset"] != "/x" {
		t.Fatalf("missing fields: %v", obj)
	}
}

func TestParseLevel(t *testing.T) {
	if lvl, err := ParseLevel("WARN"); err != nil || lvl != WarnLevel {
		t.Fatalf("parse warn: %v %v", lvl, err)
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
