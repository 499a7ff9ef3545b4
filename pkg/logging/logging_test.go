package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	logger := NewLogger(LevelInfo)
	if logger.level != LevelInfo {
		t.Errorf("expected level %s, got %s", LevelInfo, logger.level)
	}
}

func TestLogger_DebugFiltered(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LevelInfo)
	logger.SetOutput(&buf)

	logger.Debug("hidden")

	if buf.Len() > 0 {
		t.Errorf("expected no output for debug when level is info, got: %s", buf.String())
	}
}

func TestLogger_Info(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LevelInfo)
	logger.SetOutput(&buf)

	logger.Info("info message")

	output := buf.String()
	if !strings.Contains(output, `"level":"info"`) {
		t.Errorf("expected info level in output, got: %s", output)
	}
	if !strings.Contains(output, `"message":"info message"`) {
		t.Errorf("expected message in output, got: %s", output)
	}
}

func TestLogger_WarnAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LevelError)
	logger.SetOutput(&buf)

	logger.Warn("hidden")

	if buf.Len() > 0 {
		t.Errorf("expected no warn output at error level, got: %s", buf.String())
	}
}

func TestLogger_WithOp(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LevelInfo)
	logger.SetOutput(&buf)

	logger.WithOp("delete").Info("scheduled", map[string]any{"paths": 2})

	var entry Entry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry.Fields["op"] != "delete" {
		t.Errorf("expected op field, got: %v", entry.Fields)
	}
	if entry.Fields["paths"] != float64(2) {
		t.Errorf("expected paths field, got: %v", entry.Fields)
	}
}

func TestLogger_WithFieldsDoesNotMutateParent(t *testing.T) {
	parent := NewLogger(LevelInfo)
	parent.WithFields(map[string]any{"root": "/wc"})

	if len(parent.fields) != 0 {
		t.Errorf("parent fields mutated: %v", parent.fields)
	}
}

func TestLogger_ErrorErr(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LevelInfo)
	logger.SetOutput(&buf)

	logger.ErrorErr("operation failed", errTest{})

	if !strings.Contains(buf.String(), `"error":"boom"`) {
		t.Errorf("expected error field, got: %s", buf.String())
	}
}

type errTest struct{}

func (errTest) Error() string { return "boom" }
