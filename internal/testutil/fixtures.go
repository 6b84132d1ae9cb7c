// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/HerbHall/euserv-reboot/internal/euserv"
	"github.com/HerbHall/euserv-reboot/internal/probe"
	"github.com/HerbHall/euserv-reboot/internal/recovery"
)

// NewReport returns a Report for a successful reset, suitable for test
// fixtures. Override individual fields with options.
func NewReport(opts ...func(*recovery.Report)) *recovery.Report {
	now := time.Now().UTC()
	r := &recovery.Report{
		RunID:   uuid.New().String(),
		Target:  "2001:db8::1",
		Outcome: recovery.OutcomeRecovered,
		Probe: &probe.Result{
			Target:    "2001:db8::1",
			Method:    probe.MethodExec,
			Sent:      4,
			Received:  -1,
			CheckedAt: now,
		},
		Steps: []recovery.StepReport{
			{Step: euserv.StepAcquireSession, OK: true, Message: "session id obtained"},
			{Step: euserv.StepLogin, OK: true, Message: "ok"},
			{Step: euserv.StepReset, OK: true, Message: "reset scheduled"},
		},
		StartedAt:  now,
		FinishedAt: now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithRunID sets the run id.
func WithRunID(id string) func(*recovery.Report) {
	return func(r *recovery.Report) { r.RunID = id }
}

// WithFailure marks the run as failed at step with err.
func WithFailure(step euserv.Step, err error) func(*recovery.Report) {
	return func(r *recovery.Report) {
		r.Outcome = recovery.OutcomeFailed
		r.FailedStep = step
		r.Err = err
		r.Error = err.Error()

		var steps []recovery.StepReport
		for _, s := range r.Steps {
			if s.Step == step {
				steps = append(steps, recovery.StepReport{Step: step, Error: err.Error(), Kind: euserv.KindOf(err)})
				break
			}
			steps = append(steps, s)
		}
		r.Steps = steps
	}
}
