package output

import (
	"fmt"
	"io"
	"time"

	"github.com/jmaas/s7plan/internal/plan"
	"github.com/jmaas/s7plan/internal/report"
)

// PrettyRenderer renders plans and run results in a human-friendly format.
type PrettyRenderer struct {
	out io.Writer
}

// NewPretty creates a PrettyRenderer writing to the provided writer.
func NewPretty(out io.Writer) *PrettyRenderer {
	return &PrettyRenderer{out: out}
}

// RenderList renders the module/test/step hierarchy without executing it.
func (p *PrettyRenderer) RenderList(pl *plan.Plan) error {
	if _, err := fmt.Fprintf(p.out, "Plan %s\n", pl.Name); err != nil {
		return err
	}
	for _, mod := range pl.Modules {
		if _, err := fmt.Fprintf(p.out, "Module %s\n", mod.Name); err != nil {
			return err
		}
		for _, tst := range mod.Tests {
			if _, err := fmt.Fprintf(p.out, "  Test %s\n", tst.Name); err != nil {
				return err
			}
			for si, step := range tst.Steps {
				label := step.Description
				if label == "" {
					label = fmt.Sprintf("step %d", si+1)
				}
				if _, err := fmt.Fprintf(p.out, "    • %s (%s%d, %d triples)\n",
					label, step.Area, step.DB, len(step.Triples)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// RenderRun shows the outcome of one execution: a line per step, mismatch
// and error details per triple, and a summary.
func (p *PrettyRenderer) RenderRun(run report.Run) error {
	if _, err := fmt.Fprintf(p.out, "Plan %s\n", run.Plan); err != nil {
		return err
	}
	for _, mod := range run.Modules {
		fmt.Fprintf(p.out, "Module %s\n", mod.Name)
		for _, tst := range mod.Tests {
			fmt.Fprintf(p.out, "  Test %s\n", tst.Name)
			for _, step := range tst.Steps {
				p.renderStep(step)
			}
		}
	}

	sum := run.Summary
	_, err := fmt.Fprintf(p.out, "SUMMARY: %d passed, %d failed, %d errored, %d skipped (%s)\n",
		sum.Passed, sum.Failed, sum.Errored, sum.Skipped, formatDuration(sum.Duration))
	return err
}

func (p *PrettyRenderer) renderStep(step report.StepResult) {
	label := step.Description
	if label == "" {
		label = fmt.Sprintf("step %d", step.Step)
	}
	suffix := formatDuration(step.Duration)
	if step.Status == report.StatusSkipped {
		suffix = "skipped"
		if step.DryRun {
			suffix = "dry run"
		}
	}
	fmt.Fprintf(p.out, "    %s %s (%s)\n", statusGlyph(step.Status), label, suffix)

	for _, tr := range step.Triples {
		switch tr.Status {
		case report.StatusFail:
			fmt.Fprintf(p.out, "      [%d] %s%d.%s %s: expected %s, actual %s\n",
				tr.Index, step.Area, step.DB, tr.Address, tr.Type, tr.Expected, tr.Actual)
		case report.StatusError:
			fmt.Fprintf(p.out, "      [%d] %s%d.%s %s: %s\n",
				tr.Index, step.Area, step.DB, tr.Address, tr.Type, tr.Error)
		}
	}
}

// RenderValidation lists the structural problems of a plan, one per line.
func (p *PrettyRenderer) RenderValidation(errs []plan.ValidationError) error {
	for _, e := range errs {
		if _, err := fmt.Fprintf(p.out, "invalid: %s\n", e.Error()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(p.out, "%d validation findings\n", len(errs))
	return err
}

func statusGlyph(status report.Status) string {
	switch status {
	case report.StatusPass:
		return "✓"
	case report.StatusFail:
		return "✗"
	case report.StatusError:
		return "!"
	case report.StatusSkipped:
		return "-"
	default:
		return "?"
	}
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Truncate(time.Millisecond).String()
}
