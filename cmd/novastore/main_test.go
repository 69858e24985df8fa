package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type syncRecorder struct {
	bytes.Buffer
	syncs int
}

func (s *syncRecorder) Sync() error {
	s.syncs++
	return nil
}

func newRecordingLogger() (*zap.Logger, *syncRecorder) {
	out := &syncRecorder{}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), out, zapcore.InfoLevel)
	return zap.New(core), out
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantLog  bool
	}{
		{"clean shutdown", nil, 0, false},
		{"run failure", errors.New("listen tcp :8080: address already in use"), 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, out := newRecordingLogger()

			if got := exitCode(logger, tt.err); got != tt.wantCode {
				t.Errorf("expected exit code %d, got %d", tt.wantCode, got)
			}
			if out.syncs == 0 {
				t.Error("expected the logger to be synced before exit")
			}
			if logged := strings.Contains(out.String(), "server stopped"); logged != tt.wantLog {
				t.Errorf("expected logged=%v, got output %q", tt.wantLog, out.String())
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := newLogger("debug"); err != nil {
		t.Fatalf("newLogger(debug): %v", err)
	}
	if _, err := newLogger("loud"); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}
