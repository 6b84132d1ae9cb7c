package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRun_Version(t *testing.T) {
	if code := run([]string{"version"}); code != 0 {
		t.Errorf("run(version) = %d, want 0", code)
	}
	if code := run([]string{"-version"}); code != 0 {
		t.Errorf("run(-version) = %d, want 0", code)
	}
}

func TestRun_UnknownFlag(t *testing.T) {
	if code := run([]string{"-no-such-flag"}); code != 2 {
		t.Errorf("run(-no-such-flag) = %d, want 2", code)
	}
}

func TestRun_InvalidConfigFailsBeforeProbing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "euserv-reboot.yaml")
	content := "target:\n  address: \"192.0.2.1\"\nlogging:\n  level: error\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if code := run([]string{"-config", path}); code != 1 {
		t.Errorf("run() = %d, want 1 for invalid configuration", code)
	}
}

func TestRun_InvalidLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "euserv-reboot.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: banana\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if code := run([]string{"-config", path}); code != 1 {
		t.Errorf("run() = %d, want 1 for invalid log level", code)
	}
}
