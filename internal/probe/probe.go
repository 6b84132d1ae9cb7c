// Package probe decides whether a single IPv6 host answers echo requests.
// Probes never fail: every error degrades to an unreachable Result.
package probe

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Result holds the outcome of one probe run.
type Result struct {
	Target    string        `json:"target"`
	Method    string        `json:"method"`
	Reachable bool          `json:"reachable"`
	Sent      int           `json:"sent"`
	Received  int           `json:"received"` // -1 when the method cannot tell
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
	Output    string        `json:"output,omitempty"`
	CheckedAt time.Time     `json:"checked_at"`
}

// Prober checks reachability of a target address.
type Prober interface {
	Probe(ctx context.Context, target string) *Result
}

// New returns the Prober selected by cfg.Method. runner is only used by
// the exec method; nil selects OSRunner.
func New(cfg Config, runner Runner, logger *zap.Logger) (Prober, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Method {
	case MethodExec, "":
		if runner == nil {
			runner = OSRunner{}
		}
		return NewExecProber(cfg, runner, logger), nil
	case MethodICMP:
		return NewICMPProber(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown probe method %q: must be %q or %q", cfg.Method, MethodExec, MethodICMP)
	}
}
