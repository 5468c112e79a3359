package filter

import (
	"testing"

	"github.com/jmaas/s7plan/internal/plan"
)

func TestCompileRejectsBadRegex(t *testing.T) {
	if _, err := Compile([]string{"/[/"}); err == nil {
		t.Fatal("expected error for invalid regexp")
	}
}

func TestPatternSubstringIsCaseInsensitive(t *testing.T) {
	patterns, err := Compile([]string{"PUMP"})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !patterns[0].Match("hydraulic pump start") {
		t.Fatal("expected substring match")
	}
	if patterns[0].Match("valve") {
		t.Fatal("unexpected match")
	}
}

func TestPatternRegex(t *testing.T) {
	patterns, err := Compile([]string{"/^test_\\d+$/"})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !patterns[0].Match("test_12") {
		t.Fatal("expected regex match")
	}
	if patterns[0].Match("test_x") {
		t.Fatal("unexpected regex match")
	}
}

func TestPlanFiltersModulesAndTests(t *testing.T) {
	p := samplePlan()

	modules, _ := Compile([]string{"hydraulics"})
	got := Plan(p, modules, nil)
	if len(got.Modules) != 1 || got.Modules[0].Name != "hydraulics" {
		t.Fatalf("module filter: %+v", got.Modules)
	}

	tests, _ := Compile([]string{"lamp"})
	got = Plan(p, nil, tests)
	if len(got.Modules) != 1 || got.Modules[0].Name != "electrics" {
		t.Fatalf("test filter should drop emptied modules: %+v", got.Modules)
	}
	if len(got.Modules[0].Tests) != 1 || got.Modules[0].Tests[0].Name != "lamp check" {
		t.Fatalf("test filter: %+v", got.Modules[0].Tests)
	}
}

func TestPlanNoPatternsReturnsInput(t *testing.T) {
	p := samplePlan()
	if got := Plan(p, nil, nil); got != p {
		t.Fatal("expected identical plan when no patterns are set")
	}
}

func TestPlanDoesNotMutateInput(t *testing.T) {
	p := samplePlan()
	modules, _ := Compile([]string{"nothing-matches"})
	got := Plan(p, modules, nil)
	if len(got.Modules) != 0 {
		t.Fatalf("expected empty result, got %+v", got.Modules)
	}
	if len(p.Modules) != 2 {
		t.Fatalf("input plan was mutated: %+v", p.Modules)
	}
}

func samplePlan() *plan.Plan {
	return &plan.Plan{
		Name: "sample",
		Modules: []plan.Module{
			{
				Name: "hydraulics",
				Tests: []plan.Test{
					{Name: "pump start"},
					{Name: "pressure hold"},
				},
			},
			{
				Name: "electrics",
				Tests: []plan.Test{
					{Name: "lamp check"},
				},
			},
		},
	}
}
