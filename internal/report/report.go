package report

import "time"

// Status is the outcome of one triple, step, test, module or run. An
// unreachable PLC is a more severe outcome than a value mismatch, so ERROR
// outranks FAIL when aggregating; skipped work is shown but never counts
// against the pass rate.
type Status string

const (
	StatusPass    Status = "pass"
	StatusFail    Status = "fail"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

func (s Status) rank() int {
	switch s {
	case StatusError:
		return 2
	case StatusFail:
		return 1
	default:
		return 0
	}
}

// Worst aggregates child statuses: ERROR > FAIL > PASS, with SKIPPED
// ignored. An all-skipped set aggregates to SKIPPED.
func Worst(statuses ...Status) Status {
	out := StatusSkipped
	for _, s := range statuses {
		if s == StatusSkipped {
			continue
		}
		if out == StatusSkipped || s.rank() > out.rank() {
			out = s
		}
	}
	return out
}

// TripleResult captures the outcome of one address/value pair within a step.
type TripleResult struct {
	Index    int    `json:"index"`
	Address  string `json:"address"`
	Type     string `json:"type"`
	Written  string `json:"written,omitempty"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
	Matched  bool   `json:"matched"`
	Error    string `json:"error,omitempty"`
	Status   Status `json:"status"`
}

// StepResult captures the outcome of a single step.
type StepResult struct {
	Module      string         `json:"module"`
	Test        string         `json:"test"`
	Step        int            `json:"step"`
	Description string         `json:"description,omitempty"`
	DB          int            `json:"db_number"`
	Area        string         `json:"area"`
	DelayMS     int            `json:"delay_ms,omitempty"`
	Triples     []TripleResult `json:"triples,omitempty"`
	Status      Status         `json:"status"`
	Duration    time.Duration  `json:"-"`
	DurationMS  int64          `json:"duration_ms"`
	DryRun      bool           `json:"dry_run,omitempty"`
}

// TestResult aggregates the steps of one test.
type TestResult struct {
	Name   string       `json:"name"`
	Steps  []StepResult `json:"steps"`
	Status Status       `json:"status"`
}

// ModuleResult aggregates the tests of one module.
type ModuleResult struct {
	Name   string       `json:"name"`
	Tests  []TestResult `json:"tests"`
	Status Status       `json:"status"`
}

// Run is the result tree of one plan execution. It is built fresh per run
// and owns nothing of the plan it was produced from.
type Run struct {
	Plan     string         `json:"plan"`
	Started  time.Time      `json:"started"`
	Modules  []ModuleResult `json:"modules"`
	Status   Status         `json:"status"`
	Summary  Summary        `json:"summary"`
	Duration time.Duration  `json:"-"`
}

// Summary totals one run.
type Summary struct {
	TotalModules int           `json:"total_modules"`
	TotalTests   int           `json:"total_tests"`
	TotalSteps   int           `json:"total_steps"`
	Passed       int           `json:"passed"`
	Failed       int           `json:"failed"`
	Errored      int           `json:"errored"`
	Skipped      int           `json:"skipped"`
	Duration     time.Duration `json:"-"`
	DurationMS   int64         `json:"duration_ms"`
	ExitCode     int           `json:"exit_code"`
}

// Summarize derives the run's summary and overall status from its modules.
func (r *Run) Summarize() {
	var sum Summary
	var moduleStatuses []Status
	for _, mod := range r.Modules {
		sum.TotalModules++
		moduleStatuses = append(moduleStatuses, mod.Status)
		for _, tst := range mod.Tests {
			sum.TotalTests++
			for _, step := range tst.Steps {
				sum.TotalSteps++
				switch step.Status {
				case StatusPass:
					sum.Passed++
				case StatusFail:
					sum.Failed++
				case StatusError:
					sum.Errored++
				case StatusSkipped:
					sum.Skipped++
				}
			}
		}
	}
	r.Status = Worst(moduleStatuses...)
	if r.Status == StatusSkipped {
		r.Status = StatusPass
	}
	if r.Status != StatusPass {
		sum.ExitCode = 1
	}
	sum.Duration = r.Duration
	sum.DurationMS = r.Duration.Milliseconds()
	r.Summary = sum
}
