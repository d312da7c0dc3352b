package logging

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/trajsim/internal/dynamo"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"json debug", Config{Level: "debug", Encoding: "json"}, false},
		{"bad level", Config{Level: "loud", Encoding: "console"}, true},
		{"bad encoding", Config{Level: "info", Encoding: "xml"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, dynamo.ErrInvalidArgument) {
				t.Errorf("error %v does not wrap ErrInvalidArgument", err)
			}
		})
	}
}

func TestZapConfigLevel(t *testing.T) {
	zc, err := Config{Level: "warn", Encoding: "console"}.ZapConfig()
	if err != nil {
		t.Fatal(err)
	}
	if zc.Level.Level() != zapcore.WarnLevel {
		t.Errorf("level = %v, want warn", zc.Level.Level())
	}
	if !zc.DisableStacktrace {
		t.Error("stack traces enabled")
	}
}

func TestNewJSONWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trajsim.log")
	logger, err := New(Config{Level: "info", Encoding: "json", Output: path})
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("hidden")
	logger.Info("rollout finished", zap.String("integrator", "rk2"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("want exactly one JSON line, got %q: %v", data, err)
	}
	if entry["msg"] != "rollout finished" || entry["level"] != "INFO" || entry["integrator"] != "rk2" {
		t.Errorf("entry = %v", entry)
	}
}
