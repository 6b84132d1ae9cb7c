package probe

import (
	"context"
	"errors"
	"math"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxOutputLen = 512

// Compile-time interface guard.
var _ Prober = (*ExecProber)(nil)

// Runner executes an external command and returns its combined output.
type Runner interface {
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

// OSRunner executes commands on the host via os/exec.
type OSRunner struct{}

// CombinedOutput runs the command and returns stdout and stderr together.
// The process is killed when ctx expires.
func (OSRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = time.Second
	return cmd.CombinedOutput()
}

// ExecProber shells out to the platform ping tool restricted to IPv6.
type ExecProber struct {
	cfg    Config
	goos   string
	runner Runner
	logger *zap.Logger
}

// NewExecProber creates a prober for the current platform.
func NewExecProber(cfg Config, runner Runner, logger *zap.Logger) *ExecProber {
	return &ExecProber{
		cfg:    cfg,
		goos:   runtime.GOOS,
		runner: runner,
		logger: logger,
	}
}

// Command returns the ping invocation used for target.
func (p *ExecProber) Command(target string) (string, []string) {
	return pingCommand(p.goos, p.cfg, target)
}

// Probe runs ping once with the configured count. The target is reachable
// iff the tool exits successfully before the deadline.
func (p *ExecProber) Probe(ctx context.Context, target string) *Result {
	deadline := p.cfg.Deadline()
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	name, args := p.Command(target)
	p.logger.Info("probing connectivity",
		zap.String("target", target),
		zap.String("method", MethodExec),
		zap.String("command", name+" "+strings.Join(args, " ")),
		zap.Duration("deadline", deadline),
	)

	start := time.Now()
	out, err := p.runner.CombinedOutput(ctx, name, args...)
	result := &Result{
		Target:    target,
		Method:    MethodExec,
		Sent:      p.cfg.Count,
		Received:  -1,
		Duration:  time.Since(start),
		Output:    truncate(strings.TrimSpace(string(out)), maxOutputLen),
		CheckedAt: time.Now().UTC(),
	}

	switch {
	case err == nil:
		result.Reachable = true
		p.logger.Info("target reachable", zap.String("target", target), zap.Duration("duration", result.Duration))
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		result.Error = "probe timed out after " + deadline.String()
		p.logger.Warn("probe timed out", zap.String("target", target), zap.Duration("deadline", deadline))
	default:
		result.Error = err.Error()
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			p.logger.Warn("target unreachable",
				zap.String("target", target),
				zap.Int("exit_code", exitErr.ExitCode()),
				zap.String("output", result.Output),
			)
		} else {
			p.logger.Warn("probe could not run", zap.String("target", target), zap.Error(err))
		}
	}

	return result
}

// pingCommand builds the IPv6 ping invocation for goos.
func pingCommand(goos string, cfg Config, target string) (string, []string) {
	count := strconv.Itoa(cfg.Count)
	switch goos {
	case "windows":
		ms := strconv.FormatInt(cfg.Timeout.Milliseconds(), 10)
		return "ping", []string{"-6", "-n", count, "-w", ms, target}
	case "darwin":
		return "ping6", []string{"-c", count, "-W", timeoutSeconds(cfg.Timeout), target}
	default:
		return "ping", []string{"-6", "-c", count, "-W", timeoutSeconds(cfg.Timeout), target}
	}
}

// timeoutSeconds rounds d up to whole seconds, minimum 1.
func timeoutSeconds(d time.Duration) string {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
