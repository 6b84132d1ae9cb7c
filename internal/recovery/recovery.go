// Package recovery runs the reachability-gated reset workflow: probe the
// target once and, only when it does not answer, walk the control panel
// session through acquire, login and reset, stopping at the first failure.
package recovery

import (
	"context"
	"fmt"
	"time"

	"github.com/HerbHall/euserv-reboot/internal/euserv"
	"github.com/HerbHall/euserv-reboot/internal/probe"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session is the control panel protocol driven after a failed probe.
// *euserv.Client implements it.
type Session interface {
	AcquireSession(ctx context.Context) (string, error)
	Login(ctx context.Context) (*euserv.Envelope, error)
	ResetServer(ctx context.Context) (*euserv.Envelope, error)
}

// Notifier delivers the report of a run that attempted (or skipped) recovery.
type Notifier interface {
	Notify(ctx context.Context, report *Report) error
}

// Compile-time interface guard.
var _ Session = (*euserv.Client)(nil)

// Outcome summarizes a run.
type Outcome string

const (
	OutcomeHealthy   Outcome = "healthy"         // target answered, nothing done
	OutcomeRecovered Outcome = "reset_triggered" // all three steps succeeded
	OutcomeFailed    Outcome = "failed"          // a recovery step failed
	OutcomeDryRun    Outcome = "dry_run"         // target down, recovery skipped
)

// StepReport records one protocol call.
type StepReport struct {
	Step     euserv.Step   `json:"step"`
	OK       bool          `json:"ok"`
	Message  string        `json:"message,omitempty"`
	Error    string        `json:"error,omitempty"`
	Kind     euserv.Kind   `json:"kind,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Report is the result of one Run.
type Report struct {
	RunID      string        `json:"run_id"`
	Target     string        `json:"target"`
	Outcome    Outcome       `json:"outcome"`
	Probe      *probe.Result `json:"probe"`
	Steps      []StepReport  `json:"steps,omitempty"`
	FailedStep euserv.Step   `json:"failed_step,omitempty"`
	Error      string        `json:"error,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`

	// Err is the error that aborted the sequence.
	Err error `json:"-"`
}

// ExitCode maps the outcome to the process exit status.
func (r *Report) ExitCode() int {
	if r.Outcome == OutcomeFailed {
		return 1
	}
	return 0
}

// Option configures a Runner.
type Option func(*Runner)

// WithDryRun reports an unreachable target without contacting the control panel.
func WithDryRun(dryRun bool) Option {
	return func(r *Runner) { r.dryRun = dryRun }
}

// WithNotifier sends the report of every non-healthy run to n.
func WithNotifier(n Notifier) Option {
	return func(r *Runner) { r.notifier = n }
}

// WithMetrics records every run into m.
func WithMetrics(m *Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// Runner wires a prober to a control panel session for a single target.
type Runner struct {
	target   string
	prober   probe.Prober
	session  Session
	logger   *zap.Logger
	dryRun   bool
	notifier Notifier
	metrics  *Metrics
	now      func() time.Time
}

// New creates a Runner.
func New(target string, prober probe.Prober, session Session, logger *zap.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{
		target:  target,
		prober:  prober,
		session: session,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// step is one call of the recovery sequence. It returns the message to
// report on success.
type step struct {
	name euserv.Step
	run  func(ctx context.Context) (string, error)
}

func (r *Runner) steps() []step {
	return []step{
		{euserv.StepAcquireSession, func(ctx context.Context) (string, error) {
			if _, err := r.session.AcquireSession(ctx); err != nil {
				return "", err
			}
			return "session id obtained", nil
		}},
		{euserv.StepLogin, func(ctx context.Context) (string, error) {
			env, err := r.session.Login(ctx)
			if err != nil {
				return "", err
			}
			return env.Message, nil
		}},
		{euserv.StepReset, func(ctx context.Context) (string, error) {
			env, err := r.session.ResetServer(ctx)
			if err != nil {
				return "", err
			}
			return env.Message, nil
		}},
	}
}

// Run probes the target and, if it is unreachable, triggers the reset.
// It never returns nil; inspect Report.Outcome or Report.ExitCode.
func (r *Runner) Run(ctx context.Context) *Report {
	report := &Report{
		RunID:     uuid.NewString(),
		Target:    r.target,
		StartedAt: r.now().UTC(),
	}
	logger := r.logger.With(zap.String("run_id", report.RunID))
	logger.Info("checking connectivity", zap.String("target", r.target))

	report.Probe = r.prober.Probe(ctx, r.target)
	if report.Probe.Reachable {
		report.Outcome = OutcomeHealthy
		logger.Info("server is healthy, no action needed")
		return r.finish(ctx, logger, report)
	}

	if r.dryRun {
		report.Outcome = OutcomeDryRun
		logger.Warn("server unreachable, dry run: skipping reset")
		return r.finish(ctx, logger, report)
	}

	logger.Warn("server unreachable, starting recovery")
	steps := r.steps()
	for i, s := range steps {
		logger.Info("recovery step",
			zap.String("step", string(s.name)),
			zap.String("progress", fmt.Sprintf("%d/%d", i+1, len(steps))),
		)

		start := r.now()
		msg, err := s.run(ctx)
		sr := StepReport{Step: s.name, OK: err == nil, Message: msg, Duration: r.now().Sub(start)}
		if err != nil {
			sr.Error = err.Error()
			sr.Kind = euserv.KindOf(err)
			report.Steps = append(report.Steps, sr)
			report.Outcome = OutcomeFailed
			report.FailedStep = s.name
			report.Err = err
			report.Error = err.Error()
			logger.Error("recovery aborted",
				zap.String("step", string(s.name)),
				zap.String("kind", string(sr.Kind)),
				zap.Error(err),
			)
			return r.finish(ctx, logger, report)
		}

		report.Steps = append(report.Steps, sr)
		logger.Info("recovery step succeeded",
			zap.String("step", string(s.name)),
			zap.String("message", msg),
		)
	}

	report.Outcome = OutcomeRecovered
	logger.Info("reset command accepted")
	return r.finish(ctx, logger, report)
}

func (r *Runner) finish(ctx context.Context, logger *zap.Logger, report *Report) *Report {
	report.FinishedAt = r.now().UTC()

	if r.metrics != nil {
		r.metrics.Observe(report)
	}

	if r.notifier != nil && report.Outcome != OutcomeHealthy {
		// Delivery problems never change the outcome of the run.
		if err := r.notifier.Notify(ctx, report); err != nil {
			logger.Warn("notification failed", zap.Error(err))
		}
	}

	logger.Info("run finished",
		zap.String("outcome", string(report.Outcome)),
		zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report
}
