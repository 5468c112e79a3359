package plan

import (
	"fmt"
	"strconv"
	"strings"
)

// Plan is the root of the test hierarchy loaded from a plan file. A plan
// may be executed any number of times; each run produces a fresh result
// tree and never mutates the plan.
type Plan struct {
	Name    string
	Modules []Module
	Layouts map[int]Layout
}

// Module groups related tests.
type Module struct {
	Name  string
	Tests []Test
}

// Test is an ordered sequence of steps. A failing step aborts the rest of
// the test by default; later tests still run.
type Test struct {
	Name  string
	Steps []Step
}

// Step drives one interaction with the PLC: an optional settling delay,
// then an ordered list of triples executed against one memory area.
type Step struct {
	Description string
	DB          int
	Area        Area
	DelayMS     int
	Triples     []Triple
}

// Triple pairs one address with what to write there and what to read back.
// Write and Expected are optional independently: a triple may write-only,
// read-only, do both, or do nothing at all.
type Triple struct {
	Address  Address
	Type     DataType
	Write    *Value
	Expected *Value
}

// Address locates a value inside a memory area. Bit is -1 except for BOOL
// addresses, which name a single bit of the byte at Byte.
type Address struct {
	Byte int
	Bit  int
}

// ByteAddress locates a whole-width value at byte offset b.
func ByteAddress(b int) Address { return Address{Byte: b, Bit: -1} }

// BitAddress locates bit (0-7) within the byte at offset b.
func BitAddress(b, bit int) Address { return Address{Byte: b, Bit: bit} }

func (a Address) String() string {
	if a.Bit >= 0 {
		return fmt.Sprintf("%d.%d", a.Byte, a.Bit)
	}
	return strconv.Itoa(a.Byte)
}

// ParseAddress reads byte or byte.bit notation, e.g. "12" or "4.2".
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	bytePart, bitPart, hasBit := strings.Cut(s, ".")
	b, err := strconv.Atoi(bytePart)
	if err != nil {
		return Address{}, fmt.Errorf("invalid byte offset %q", s)
	}
	if !hasBit {
		return Address{Byte: b, Bit: -1}, nil
	}
	bit, err := strconv.Atoi(bitPart)
	if err != nil {
		return Address{}, fmt.Errorf("invalid bit index %q", s)
	}
	return Address{Byte: b, Bit: bit}, nil
}

// Layout names the variables of one data block so steps can address them
// symbolically.
type Layout struct {
	Name      string
	Variables []Variable
}

// Variable is one named slot of a data block layout.
type Variable struct {
	Name   string
	Offset Address
	Type   DataType
}

// Lookup resolves a variable by name.
func (l Layout) Lookup(name string) (Variable, bool) {
	for _, v := range l.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

// ValidationError describes one structural problem found in a plan. Plans
// with validation errors are reported, never silently coerced, and never
// executed.
type ValidationError struct {
	Module  string `json:"module,omitempty"`
	Test    string `json:"test,omitempty"`
	Step    int    `json:"step,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	var b strings.Builder
	if e.Module != "" {
		fmt.Fprintf(&b, "module %s", e.Module)
	}
	if e.Test != "" {
		if b.Len() > 0 {
			b.WriteString(" / ")
		}
		fmt.Fprintf(&b, "test %s", e.Test)
	}
	if e.Step > 0 {
		if b.Len() > 0 {
			b.WriteString(" / ")
		}
		fmt.Fprintf(&b, "step %d", e.Step)
	}
	if b.Len() > 0 {
		b.WriteString(": ")
	}
	if e.Field != "" {
		fmt.Fprintf(&b, "%s: ", e.Field)
	}
	b.WriteString(e.Message)
	return b.String()
}

// Validate checks the structural invariants of a plan and returns every
// problem found. An empty result means the plan is executable. Plans built
// by the loader arrive mostly validated; this covers plans assembled in
// code as well.
func Validate(p *Plan) []ValidationError {
	var errs []ValidationError
	for _, mod := range p.Modules {
		for _, tst := range mod.Tests {
			for i, step := range tst.Steps {
				errs = append(errs, validateStep(mod.Name, tst.Name, i+1, step)...)
			}
		}
	}
	return errs
}

func validateStep(module, test string, pos int, step Step) []ValidationError {
	var errs []ValidationError
	addErr := func(field, format string, args ...interface{}) {
		errs = append(errs, ValidationError{
			Module:  module,
			Test:    test,
			Step:    pos,
			Field:   field,
			Message: fmt.Sprintf(format, args...),
		})
	}

	if step.DB < 0 {
		addErr("db_number", "must not be negative, got %d", step.DB)
	}
	if step.DelayMS < 0 {
		addErr("delay_ms", "must not be negative, got %d", step.DelayMS)
	}
	for i, tr := range step.Triples {
		field := fmt.Sprintf("triple %d", i)
		if tr.Type.Width() == 0 {
			addErr(field, "unknown data type %s", tr.Type)
			continue
		}
		if tr.Address.Byte < 0 {
			addErr(field, "start offset must not be negative, got %d", tr.Address.Byte)
		}
		if tr.Type == TypeBool {
			if tr.Address.Bit < 0 || tr.Address.Bit > 7 {
				addErr(field, "BOOL address %s needs a bit index between 0 and 7", tr.Address)
			}
		} else if tr.Address.Bit >= 0 {
			addErr(field, "bit addressing is only valid for BOOL, got %s", tr.Type)
		}
		if tr.Write != nil {
			if tr.Write.Type != tr.Type {
				addErr(field, "write value type %s does not match %s", tr.Write.Type, tr.Type)
			} else if !tr.Write.InRange() {
				addErr(field, "write value %s out of range for %s", tr.Write, tr.Type)
			}
		}
		if tr.Expected != nil {
			if tr.Expected.Type != tr.Type {
				addErr(field, "expected value type %s does not match %s", tr.Expected.Type, tr.Type)
			} else if !tr.Expected.InRange() {
				addErr(field, "expected value %s out of range for %s", tr.Expected, tr.Type)
			}
		}
	}
	return errs
}
