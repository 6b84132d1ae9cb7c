package probe

import (
	"context"
	"fmt"
	"runtime"
	"time"

	probing "github.com/prometheus-community/pro-bing"
	"go.uber.org/zap"
)

// Compile-time interface guard.
var _ Prober = (*ICMPProber)(nil)

// ICMPProber sends ICMPv6 echo requests directly, without a ping binary.
type ICMPProber struct {
	cfg    Config
	logger *zap.Logger
}

// NewICMPProber creates a native ICMPv6 prober.
func NewICMPProber(cfg Config, logger *zap.Logger) *ICMPProber {
	return &ICMPProber{cfg: cfg, logger: logger}
}

// Probe pings target cfg.Count times. The target is reachable iff at least
// one reply arrives before the deadline.
func (p *ICMPProber) Probe(ctx context.Context, target string) *Result {
	deadline := p.cfg.Deadline()
	start := time.Now()
	result := &Result{
		Target: target,
		Method: MethodICMP,
		Sent:   p.cfg.Count,
	}
	finish := func() *Result {
		result.Duration = time.Since(start)
		result.CheckedAt = time.Now().UTC()
		return result
	}

	pinger := probing.New(target)
	pinger.SetNetwork("ip6")
	if err := pinger.Resolve(); err != nil {
		result.Error = fmt.Sprintf("resolve %q: %v", target, err)
		p.logger.Warn("probe could not run", zap.String("target", target), zap.Error(err))
		return finish()
	}

	pinger.Count = p.cfg.Count
	// Timeout caps the whole run, not a single echo.
	pinger.Timeout = deadline
	// Windows only supports privileged (raw socket) mode.
	pinger.SetPrivileged(p.cfg.Privileged || runtime.GOOS == "windows")

	p.logger.Info("probing connectivity",
		zap.String("target", target),
		zap.String("method", MethodICMP),
		zap.Int("count", p.cfg.Count),
		zap.Duration("deadline", deadline),
	)

	if err := pinger.RunWithContext(ctx); err != nil {
		result.Error = err.Error()
		p.logger.Warn("ping failed", zap.String("target", target), zap.Error(err))
	}

	stats := pinger.Statistics()
	result.Sent = stats.PacketsSent
	result.Received = stats.PacketsRecv
	result.Reachable = result.Error == "" && stats.PacketsRecv > 0

	if result.Reachable {
		p.logger.Info("target reachable",
			zap.String("target", target),
			zap.Int("received", stats.PacketsRecv),
			zap.Duration("avg_rtt", stats.AvgRtt),
		)
	} else {
		p.logger.Warn("target unreachable",
			zap.String("target", target),
			zap.Int("sent", stats.PacketsSent),
			zap.Int("received", stats.PacketsRecv),
		)
	}
	return finish()
}
