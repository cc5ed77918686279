package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", DebugLevel},
		{"", InfoLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"error", ErrorLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %d, %v; want %d", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("Expected an error for an unknown level")
	}
}

func TestLevelsMatchZap(t *testing.T) {
	if zapcore.Level(DebugLevel) != zapcore.DebugLevel || zapcore.Level(ErrorLevel) != zapcore.ErrorLevel {
		t.Error("LogLevel values must match zapcore levels")
	}
}

func TestDebugSinkAndHelpers(t *testing.T) {
	obs, logs := observer.New(zapcore.DebugLevel)
	Use(zap.New(obs))
	defer Use(nil)

	DebugSink("[TMC] X homing on, 400mA")
	Warnf("%s driver overtemperature warning! (%dmA)", "Z", 750)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.DebugLevel || entries[0].Message != "[TMC] X homing on, 400mA" {
		t.Errorf("Unexpected debug entry %+v", entries[0].Entry)
	}
	if entries[1].Level != zapcore.WarnLevel || entries[1].Message != "Z driver overtemperature warning! (750mA)" {
		t.Errorf("Unexpected warn entry %+v", entries[1].Entry)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	Use(nil)
	Infof("dropped %d", 1)
	DebugSink("dropped")
	if err := Sync(); err != nil {
		t.Errorf("Expected nil from Sync without a logger, got %v", err)
	}
}
