// Package logger carries a zap logger through context values
package logger

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey struct{}

// NewContext returns a copy of ctx carrying l
func NewContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// L returns the logger stored in ctx, or the global logger
func L(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return zap.L()
}

// NewFile builds a development logger writing to dir/name
// The terminal owns stdout/stderr while the editor runs, so logs go to a file
func NewFile(dir, name string) (*zap.Logger, func(), error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, err
	}
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(f), zapcore.DebugLevel)
	l := zap.New(core, zap.AddCaller())

	closeFn := func() {
		_ = l.Sync()
		_ = f.Close()
	}
	return l, closeFn, nil
}

// Setup returns a file logger when debug is set and a no-op logger otherwise
// The returned logger is also installed as the zap global
func Setup(debug bool, dir, name string) (*zap.Logger, func(), error) {
	if !debug {
		l := zap.NewNop()
		zap.ReplaceGlobals(l)
		return l, func() {}, nil
	}
	l, closeFn, err := NewFile(dir, name)
	if err != nil {
		return nil, nil, err
	}
	zap.ReplaceGlobals(l)
	return l, closeFn, nil
}
