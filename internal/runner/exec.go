package runner

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jmaas/s7plan/internal/codec"
	"github.com/jmaas/s7plan/internal/plan"
	"github.com/jmaas/s7plan/internal/plc"
	"github.com/jmaas/s7plan/internal/report"
)

// Observer is notified as results become available, so a live consumer
// (publisher, UI) does not have to wait for the whole run.
type Observer interface {
	StepCompleted(report.StepResult)
	RunCompleted(report.Run)
}

// Options configure how the runner executes a plan.
type Options struct {
	// Session carries all PLC I/O. It is owned by the run for its whole
	// duration. May be nil when DryRun is set.
	Session plc.Session
	// ContinueOnFailure keeps executing the remaining steps of a test
	// after a FAIL or ERROR step. By default the rest of the test is
	// skipped: steps usually encode sequential state dependencies, and
	// results after a failed precondition are meaningless.
	ContinueOnFailure bool
	// DryRun walks the plan without touching the session; every step is
	// marked skipped.
	DryRun   bool
	Logger   *logrus.Logger
	Observer Observer
	Now      func() time.Time
	// Sleep implements the per-step settling delay. Injectable so tests
	// do not wait in real time.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Runner executes a plan strictly in order: modules, tests within a module,
// steps within a test. One session, no parallelism; PLC state is
// time-ordered and shared.
type Runner struct {
	opts Options
}

// New creates a runner with the supplied options.
func New(opts Options) *Runner {
	if opts.Logger == nil {
		opts.Logger = logrus.New()
		opts.Logger.SetOutput(io.Discard)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sleep == nil {
		opts.Sleep = sleep
	}
	return &Runner{opts: opts}
}

// Run executes the plan and returns its result tree. Per-step problems land
// in the report, never in the returned error; the error is non-nil only
// when the context was cancelled, in which case the remainder of the plan
// is marked skipped. Cancellation is checked at step boundaries and during
// delays, never mid-I/O.
func (r *Runner) Run(ctx context.Context, p *plan.Plan) (report.Run, error) {
	run := report.Run{Plan: p.Name, Started: r.opts.Now()}
	var runErr error

	for _, mod := range p.Modules {
		mres := report.ModuleResult{Name: mod.Name}
		for _, tst := range mod.Tests {
			tres := report.TestResult{Name: tst.Name}
			aborted := false
			for si, step := range tst.Steps {
				if runErr == nil && ctx.Err() != nil {
					runErr = ctx.Err()
				}
				if aborted || runErr != nil {
					tres.Steps = append(tres.Steps, r.skippedStep(mod.Name, tst.Name, si, step))
					continue
				}

				sres, err := r.executeStep(ctx, mod.Name, tst.Name, si, step)
				if err != nil {
					runErr = err
				}
				tres.Steps = append(tres.Steps, sres)
				if r.opts.Observer != nil {
					r.opts.Observer.StepCompleted(sres)
				}

				if !r.opts.ContinueOnFailure && (sres.Status == report.StatusFail || sres.Status == report.StatusError) {
					r.opts.Logger.WithFields(logrus.Fields{
						"module": mod.Name, "test": tst.Name, "step": si + 1,
					}).Warnf("step %s, skipping the rest of the test", sres.Status)
					aborted = true
				}
			}
			tres.Status = worstOfSteps(tres.Steps)
			mres.Tests = append(mres.Tests, tres)
		}
		mres.Status = worstOfTests(mres.Tests)
		run.Modules = append(run.Modules, mres)
	}

	run.Duration = r.opts.Now().Sub(run.Started)
	run.Summarize()
	if r.opts.Observer != nil {
		r.opts.Observer.RunCompleted(run)
	}
	return run, runErr
}

// executeStep performs the delay, then walks the step's triples in order:
// write if a write value is present, read back and compare if an expected
// value is present. A failing triple never aborts the step; the report
// shows exactly which addresses failed and which succeeded.
func (r *Runner) executeStep(ctx context.Context, module, test string, index int, step plan.Step) (report.StepResult, error) {
	res := r.newStepResult(module, test, index, step)
	if r.opts.DryRun {
		res.DryRun = true
		for i, tr := range step.Triples {
			res.Triples = append(res.Triples, report.TripleResult{
				Index: i, Address: tr.Address.String(), Type: tr.Type.String(),
				Status: report.StatusSkipped,
			})
		}
		res.Status = report.StatusSkipped
		return res, nil
	}

	start := r.opts.Now()
	if step.DelayMS > 0 {
		if err := r.opts.Sleep(ctx, time.Duration(step.DelayMS)*time.Millisecond); err != nil {
			for i, tr := range step.Triples {
				res.Triples = append(res.Triples, report.TripleResult{
					Index: i, Address: tr.Address.String(), Type: tr.Type.String(),
					Status: report.StatusSkipped,
				})
			}
			res.Status = report.StatusSkipped
			return res, err
		}
	}

	for i, tr := range step.Triples {
		res.Triples = append(res.Triples, r.executeTriple(step, i, tr))
	}

	res.Status = worstOfTriples(res.Triples)
	res.Duration = r.opts.Now().Sub(start)
	res.DurationMS = res.Duration.Milliseconds()
	r.logStep(res)
	return res, nil
}

func (r *Runner) executeTriple(step plan.Step, index int, tr plan.Triple) report.TripleResult {
	res := report.TripleResult{
		Index:   index,
		Address: tr.Address.String(),
		Type:    tr.Type.String(),
	}

	// A triple with neither value exists purely for documentation.
	if tr.Write == nil && tr.Expected == nil {
		res.Status = report.StatusSkipped
		return res
	}
	res.Status = report.StatusPass

	if tr.Write != nil {
		res.Written = tr.Write.String()
		if err := r.writeValue(step, tr); err != nil {
			res.Status = report.StatusError
			res.Error = err.Error()
			// The read-back would only re-report the same broken address.
			return res
		}
	}

	if tr.Expected != nil {
		res.Expected = tr.Expected.String()
		actual, err := r.readValue(step, tr)
		if err != nil {
			res.Status = report.StatusError
			res.Error = err.Error()
			return res
		}
		res.Actual = actual.String()
		if actual.Equal(*tr.Expected) {
			res.Matched = true
		} else {
			res.Status = report.StatusFail
		}
	}

	return res
}

// writeValue encodes and writes one value. BOOL is a sub-byte write: the
// containing byte is read first and the lone bit merged in, so unrelated
// flags in the same byte survive.
func (r *Runner) writeValue(step plan.Step, tr plan.Triple) error {
	if tr.Type == plan.TypeBool {
		buf, err := r.opts.Session.Read(step.Area, step.DB, tr.Address.Byte, 1)
		if err != nil {
			return err
		}
		merged := codec.SetBit(buf[0], tr.Address.Bit, tr.Write.Bool)
		return r.opts.Session.Write(step.Area, step.DB, tr.Address.Byte, []byte{merged})
	}

	data, err := codec.Encode(*tr.Write)
	if err != nil {
		return err
	}
	return r.opts.Session.Write(step.Area, step.DB, tr.Address.Byte, data)
}

func (r *Runner) readValue(step plan.Step, tr plan.Triple) (plan.Value, error) {
	buf, err := r.opts.Session.Read(step.Area, step.DB, tr.Address.Byte, tr.Type.Width())
	if err != nil {
		return plan.Value{}, err
	}
	return codec.Decode(tr.Type, tr.Address.Bit, buf)
}

func (r *Runner) newStepResult(module, test string, index int, step plan.Step) report.StepResult {
	return report.StepResult{
		Module:      module,
		Test:        test,
		Step:        index + 1,
		Description: step.Description,
		DB:          step.DB,
		Area:        step.Area.String(),
		DelayMS:     step.DelayMS,
	}
}

func (r *Runner) skippedStep(module, test string, index int, step plan.Step) report.StepResult {
	res := r.newStepResult(module, test, index, step)
	for i, tr := range step.Triples {
		res.Triples = append(res.Triples, report.TripleResult{
			Index: i, Address: tr.Address.String(), Type: tr.Type.String(),
			Status: report.StatusSkipped,
		})
	}
	res.Status = report.StatusSkipped
	return res
}

func (r *Runner) logStep(res report.StepResult) {
	entry := r.opts.Logger.WithFields(logrus.Fields{
		"module": res.Module,
		"test":   res.Test,
		"step":   res.Step,
		"status": res.Status,
	})
	switch res.Status {
	case report.StatusPass, report.StatusSkipped:
		entry.Debug(res.Description)
	default:
		entry.Info(res.Description)
	}
	for _, tr := range res.Triples {
		if tr.Status == report.StatusPass || tr.Status == report.StatusSkipped {
			continue
		}
		r.opts.Logger.WithFields(logrus.Fields{
			"triple":  tr.Index,
			"address": tr.Address,
			"type":    tr.Type,
		}).Infof("%s: expected %s, actual %s %s", tr.Status, tr.Expected, tr.Actual, tr.Error)
	}
}

func worstOfTriples(triples []report.TripleResult) report.Status {
	statuses := make([]report.Status, len(triples))
	for i, tr := range triples {
		statuses[i] = tr.Status
	}
	out := report.Worst(statuses...)
	if out == report.StatusSkipped {
		// A step of pure documentation triples still counts as executed.
		return report.StatusPass
	}
	return out
}

func worstOfSteps(steps []report.StepResult) report.Status {
	statuses := make([]report.Status, len(steps))
	for i, s := range steps {
		statuses[i] = s.Status
	}
	return report.Worst(statuses...)
}

func worstOfTests(tests []report.TestResult) report.Status {
	statuses := make([]report.Status, len(tests))
	for i, t := range tests {
		statuses[i] = t.Status
	}
	return report.Worst(statuses...)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
