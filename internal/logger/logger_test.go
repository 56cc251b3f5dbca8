package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		env     string
		level   string
		wantErr bool
	}{
		{"prod", "", false},
		{"local", "", false},
		{"dev", "warn", false},
		{"docker", "", false},
		{"test", "", false},
		{"staging", "", true},
		{"local", "loud", true},
	}

	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.level, func(t *testing.T) {
			l, err := NewLogger(tt.env, tt.level)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && l == nil {
				t.Fatal("expected logger")
			}
		})
	}
}

func TestNewLogger_LevelOverride(t *testing.T) {
	l, err := NewLogger("local", "error")
	if err != nil {
		t.Fatal(err)
	}
	if l.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn must be disabled at error level")
	}
	if !l.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("error must be enabled")
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected no-op logger")
	}

	l := zap.NewExample()
	ctx := ContextWithLogger(context.Background(), l)
	if FromContext(ctx) != l {
		t.Error("expected stored logger")
	}
}

func TestFromContextOr(t *testing.T) {
	fallback := zap.NewExample()
	if FromContextOr(context.Background(), fallback) != fallback {
		t.Error("expected fallback")
	}
	if FromContextOr(context.Background(), nil) == nil {
		t.Error("expected no-op logger for nil fallback")
	}

	stored := zap.NewExample()
	ctx := ContextWithLogger(context.Background(), stored)
	if FromContextOr(ctx, fallback) != stored {
		t.Error("context logger must win over fallback")
	}
}
