package common

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARN":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q): expected %v, got %v", in, want, got)
		}
	}
}

func TestFilterFields(t *testing.T) {
	t.Parallel()

	fields := filterFields([]zap.Field{
		zap.String("user_id", "u1"),
		zap.String("redis_password", "x"),
		zap.String("API_TOKEN", "y"),
		zap.String("client_secret", "z"),
	})
	if len(fields) != 1 || fields[0].Key != "user_id" {
		t.Fatalf("expected only user_id to remain, got %v", fields)
	}
}
