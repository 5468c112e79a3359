package plan

import (
	"strings"
	"testing"
)

func TestValidateAcceptsWellFormedPlan(t *testing.T) {
	v, _ := ParseValue("123", TypeInt)
	p := &Plan{
		Name: "ok",
		Modules: []Module{
			{
				Name: "module",
				Tests: []Test{
					{
						Name: "test",
						Steps: []Step{
							{
								DB: 1,
								Triples: []Triple{
									{Address: ByteAddress(0), Type: TypeInt, Write: &v, Expected: &v},
									{Address: BitAddress(2, 7), Type: TypeBool},
								},
							},
						},
					},
				},
			},
		},
	}
	if errs := Validate(p); len(errs) != 0 {
		t.Fatalf("unexpected findings: %v", errs)
	}
}

func TestValidateFindings(t *testing.T) {
	wordVal, _ := ParseValue("1", TypeWord)
	outOfRange := Value{Type: TypeByte, Uint: 300}

	cases := []struct {
		name string
		step Step
		want string
	}{
		{
			name: "negative db",
			step: Step{DB: -2},
			want: "db_number",
		},
		{
			name: "negative delay",
			step: Step{DelayMS: -1},
			want: "delay_ms",
		},
		{
			name: "negative offset",
			step: Step{Triples: []Triple{{Address: ByteAddress(-4), Type: TypeInt}}},
			want: "start offset must not be negative",
		},
		{
			name: "bool without bit",
			step: Step{Triples: []Triple{{Address: ByteAddress(0), Type: TypeBool}}},
			want: "bit index between 0 and 7",
		},
		{
			name: "bool bit out of range",
			step: Step{Triples: []Triple{{Address: BitAddress(0, 9), Type: TypeBool}}},
			want: "bit index between 0 and 7",
		},
		{
			name: "bit on non-bool",
			step: Step{Triples: []Triple{{Address: BitAddress(0, 1), Type: TypeInt}}},
			want: "only valid for BOOL",
		},
		{
			name: "unknown type",
			step: Step{Triples: []Triple{{Address: ByteAddress(0), Type: DataType(42)}}},
			want: "unknown data type",
		},
		{
			name: "write type mismatch",
			step: Step{Triples: []Triple{{Address: ByteAddress(0), Type: TypeInt, Write: &wordVal}}},
			want: "does not match",
		},
		{
			name: "expected out of range",
			step: Step{Triples: []Triple{{Address: ByteAddress(0), Type: TypeByte, Expected: &outOfRange}}},
			want: "out of range",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &Plan{Modules: []Module{{Name: "m", Tests: []Test{{Name: "t", Steps: []Step{tc.step}}}}}}
			errs := Validate(p)
			if len(errs) == 0 {
				t.Fatalf("expected a finding containing %q", tc.want)
			}
			found := false
			for _, e := range errs {
				if strings.Contains(e.Error(), tc.want) {
					found = true
				}
			}
			if !found {
				t.Fatalf("no finding contains %q: %v", tc.want, errs)
			}
		})
	}
}
