package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	log, err := New("debug")
	if err != nil {
		t.Fatalf("New(debug): %v", err)
	}
	if !log.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug level should be enabled")
	}

	log, err = New("")
	if err != nil {
		t.Fatalf("New(\"\"): %v", err)
	}
	if log.Core().Enabled(zapcore.DebugLevel) || !log.Core().Enabled(zapcore.InfoLevel) {
		t.Error("default level should be info")
	}

	if _, err := New("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNamedNil(t *testing.T) {
	if Named(nil, "x") == nil {
		t.Fatal("Named(nil) must return a usable logger")
	}
}
