package probe

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestICMPProber_ResolveFailure(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"ipv4 literal", "192.0.2.1"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Method: MethodICMP, Count: 1, Timeout: 100 * time.Millisecond}
			result := NewICMPProber(cfg, zap.NewNop()).Probe(context.Background(), tt.target)

			if result.Reachable {
				t.Error("Reachable = true, want false")
			}
			if result.Error == "" {
				t.Error("Error is empty, want resolve error")
			}
			if result.Method != MethodICMP {
				t.Errorf("Method = %q, want %q", result.Method, MethodICMP)
			}
			if result.Received != 0 {
				t.Errorf("Received = %d, want 0", result.Received)
			}
			if result.CheckedAt.IsZero() {
				t.Error("CheckedAt not set")
			}
		})
	}
}

func TestICMPProber_NoReplyBeforeDeadline(t *testing.T) {
	cfg := Config{Method: MethodICMP, Count: 1, Timeout: 200 * time.Millisecond}
	p, err := New(cfg, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// 2001:db8::/32 is reserved for documentation and never answers.
	result := p.Probe(context.Background(), "2001:db8::1")

	if result.Reachable {
		t.Fatal("Reachable = true for a documentation address")
	}
	if result.Error != "" {
		t.Skipf("icmp socket unavailable: %s", result.Error)
	}
	if result.Received != 0 {
		t.Errorf("Received = %d, want 0", result.Received)
	}
	if limit := cfg.Deadline() + 2*time.Second; result.Duration > limit {
		t.Errorf("Duration = %v, want at most %v", result.Duration, limit)
	}
}
