// Package logging wires zap into the .armature project layout so plugin
// callbacks and the host share one structured log under .armature/logs/.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogFileName is the file the host appends to inside the project log dir.
const LogFileName = "armature.log"

// Logger wraps a sugared zap logger so callers get printf-style helpers
// without importing zap everywhere.
type Logger struct {
	*zap.SugaredLogger
	base *zap.Logger
}

// New builds a logger writing to <projectLogDir>/armature.log. Debug enables
// verbose output.
func New(projectLogDir string, debug bool) (*Logger, error) {
	if err := os.MkdirAll(projectLogDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{filepath.Join(projectLogDir, LogFileName)}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	base, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build logger: %w", err)
	}
	return &Logger{SugaredLogger: base.Sugar(), base: base}, nil
}

// Nop returns a logger that discards everything. Used by tests and as a
// default before configuration is loaded.
func Nop() *Logger {
	base := zap.NewNop()
	return &Logger{SugaredLogger: base.Sugar(), base: base}
}

// Close flushes buffered entries.
func (l *Logger) Close() error {
	if l == nil || l.base == nil {
		return nil
	}
	return l.base.Sync()
}
