package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextRoundTrip(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := zap.New(core)

	ctx := NewContext(context.Background(), l)
	L(ctx).Info("hello", zap.Int("frames", 3))

	if logs.Len() != 1 {
		t.Fatalf("captured %d entries, want 1", logs.Len())
	}
	entry := logs.All()[0]
	if entry.Message != "hello" || entry.ContextMap()["frames"] != int64(3) {
		t.Errorf("entry = %+v", entry)
	}
}

func TestLFallsBackToGlobal(t *testing.T) {
	if L(context.Background()) == nil {
		t.Error("L without a stored logger should return the global")
	}
	//nolint:staticcheck
	if L(nil) == nil {
		t.Error("L(nil) should return the global")
	}
}

func TestSetupDisabledByDefault(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l, closeFn, err := Setup(false, dir, "vi-sprite.log")
	if err != nil {
		t.Fatal(err)
	}
	defer closeFn()

	if l.Core().Enabled(zap.ErrorLevel) {
		t.Error("disabled logger should not enable any level")
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("disabled logging should not create the log directory")
	}
}

func TestSetupEnabledWithDebug(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l, closeFn, err := Setup(true, dir, "vi-sprite.log")
	if err != nil {
		t.Fatal(err)
	}
	l.Debug("test log message")
	closeFn()

	info, err := os.Stat(filepath.Join(dir, "vi-sprite.log"))
	if err != nil {
		t.Fatalf("log file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("expected log file to contain content")
	}
	zap.ReplaceGlobals(zap.NewNop())
}
