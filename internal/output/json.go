package output

import (
	"encoding/json"
	"io"

	"github.com/jmaas/s7plan/internal/plan"
	"github.com/jmaas/s7plan/internal/report"
)

// JSONRenderer emits structured execution data.
type JSONRenderer struct {
	out io.Writer
}

// NewJSON creates a JSON renderer writing to out.
func NewJSON(out io.Writer) *JSONRenderer {
	return &JSONRenderer{out: out}
}

// Report captures the JSON output schema. Run is present after an
// execution, Modules after a list, Findings after validation.
type Report struct {
	Plan     string                 `json:"plan"`
	Run      *report.Run            `json:"run,omitempty"`
	Modules  []ModuleListing        `json:"modules,omitempty"`
	Findings []plan.ValidationError `json:"findings,omitempty"`
}

// ModuleListing is the list-mode view of one module.
type ModuleListing struct {
	Name  string        `json:"name"`
	Tests []TestListing `json:"tests"`
}

// TestListing is the list-mode view of one test.
type TestListing struct {
	Name  string        `json:"name"`
	Steps []StepListing `json:"steps"`
}

// StepListing is the list-mode view of one step.
type StepListing struct {
	Description string `json:"description,omitempty"`
	DB          int    `json:"db_number"`
	Area        string `json:"area"`
	Triples     int    `json:"triples"`
	DelayMS     int    `json:"delay_ms,omitempty"`
}

// Listing converts a plan into its list-mode view.
func Listing(pl *plan.Plan) []ModuleListing {
	modules := make([]ModuleListing, 0, len(pl.Modules))
	for _, mod := range pl.Modules {
		ml := ModuleListing{Name: mod.Name}
		for _, tst := range mod.Tests {
			tl := TestListing{Name: tst.Name}
			for _, step := range tst.Steps {
				tl.Steps = append(tl.Steps, StepListing{
					Description: step.Description,
					DB:          step.DB,
					Area:        step.Area.String(),
					Triples:     len(step.Triples),
					DelayMS:     step.DelayMS,
				})
			}
			ml.Tests = append(ml.Tests, tl)
		}
		modules = append(modules, ml)
	}
	return modules
}

// Render encodes the report as JSON.
func (j *JSONRenderer) Render(report Report) error {
	enc := json.NewEncoder(j.out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
