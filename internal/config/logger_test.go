package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		settings  map[string]string
		wantField string
	}{
		{"unset", nil, ""},
		{"debug json", map[string]string{"logging.level": "debug", "logging.format": "json"}, ""},
		{"warn console", map[string]string{"logging.level": "warn", "logging.format": "console"}, ""},
		{"stdout", map[string]string{"logging.output": "stdout"}, ""},
		{"invalid level", map[string]string{"logging.level": "banana"}, "logging.level"},
		{"invalid format", map[string]string{"logging.format": "xml"}, "logging.format"},
		{"unwritable output", map[string]string{"logging.output": filepath.Join(t.TempDir(), "missing", "run.log")}, "logging.output"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.settings {
				v.Set(k, val)
			}

			logger, err := NewLogger(v)
			if tt.wantField != "" {
				if !IsConfigError(err) || !strings.Contains(err.Error(), tt.wantField) {
					t.Fatalf("NewLogger() error = %v, want config error for %s", err, tt.wantField)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewLogger: %v", err)
			}
			if logger == nil {
				t.Fatal("expected non-nil logger")
			}
		})
	}
}

func TestNewLogger_LoadedDefaults(t *testing.T) {
	v, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := v.GetString("logging.output"); got != "stderr" {
		t.Errorf("logging.output default = %q, want stderr", got)
	}
	if _, err := NewLogger(v); err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
}

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "euserv-reboot.log")
	v := viper.New()
	v.Set("logging.format", "json")
	v.Set("logging.output", path)

	logger, err := NewLogger(v)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Info("run finished")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var line map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, data)
	}
	if line["msg"] != "run finished" {
		t.Errorf("msg = %v, want run finished", line["msg"])
	}
	if _, ok := line["time"]; !ok {
		t.Errorf("log line %v has no time field", line)
	}
}
