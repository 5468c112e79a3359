package plan

import (
	"strings"
	"testing"
)

func TestDecodeScalarStep(t *testing.T) {
	doc := `{
		"modules": [{
			"name": "Conveyor",
			"tests": [{
				"name": "Start",
				"steps": [{
					"description": "preset counter",
					"db_number": 5,
					"start": 10,
					"data_type": "INT",
					"write": 123,
					"expected": 123,
					"delay_ms": 50
				}]
			}]
		}]
	}`

	p, errs, err := Decode(strings.NewReader(doc), "plan.json")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected problems: %+v", errs)
	}
	if p.Name != "plan" {
		t.Fatalf("expected plan name from file, got %q", p.Name)
	}

	step := p.Modules[0].Tests[0].Steps[0]
	if step.DB != 5 || step.DelayMS != 50 || step.Area != AreaDB {
		t.Fatalf("unexpected step: %+v", step)
	}
	if len(step.Triples) != 1 {
		t.Fatalf("expected 1 triple, got %d", len(step.Triples))
	}
	tr := step.Triples[0]
	if tr.Address != ByteAddress(10) || tr.Type != TypeInt {
		t.Fatalf("unexpected triple: %+v", tr)
	}
	if tr.Write == nil || tr.Write.Int != 123 {
		t.Fatalf("expected write 123, got %+v", tr.Write)
	}
	if tr.Expected == nil || tr.Expected.Int != 123 {
		t.Fatalf("expected expected 123, got %+v", tr.Expected)
	}
}

func TestDecodeCommaListsAndBroadcast(t *testing.T) {
	doc := `{
		"modules": [{
			"tests": [{
				"steps": [{
					"db_number": 1,
					"start": "0, 2, 4",
					"data_type": "WORD",
					"write": "1,2,3"
				}]
			}]
		}]
	}`

	p, errs, err := Decode(strings.NewReader(doc), "plan.json")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected problems: %+v", errs)
	}

	step := p.Modules[0].Tests[0].Steps[0]
	if len(step.Triples) != 3 {
		t.Fatalf("expected 3 triples from broadcast, got %d", len(step.Triples))
	}
	for i, tr := range step.Triples {
		if tr.Type != TypeWord {
			t.Fatalf("triple %d: type %s, want WORD", i, tr.Type)
		}
		if tr.Address.Byte != i*2 {
			t.Fatalf("triple %d: byte %d, want %d", i, tr.Address.Byte, i*2)
		}
		if tr.Write == nil || tr.Write.Uint != uint32(i+1) {
			t.Fatalf("triple %d: write %+v", i, tr.Write)
		}
		if tr.Expected != nil {
			t.Fatalf("triple %d: unexpected expected value", i)
		}
	}
	if p.Modules[0].Name != "module 1" || p.Modules[0].Tests[0].Name != "test 1" {
		t.Fatalf("expected fallback names, got %q / %q", p.Modules[0].Name, p.Modules[0].Tests[0].Name)
	}
}

func TestDecodeArrayFieldsAndEmptyElements(t *testing.T) {
	doc := `{
		"modules": [{
			"tests": [{
				"steps": [{
					"db_number": 2,
					"start": [0, 4],
					"data_type": ["DINT", "REAL"],
					"write": "-5,",
					"expected": [-5, 2.5]
				}]
			}]
		}]
	}`

	p, errs, err := Decode(strings.NewReader(doc), "plan.json")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected problems: %+v", errs)
	}

	triples := p.Modules[0].Tests[0].Steps[0].Triples
	if triples[0].Write == nil || triples[0].Write.Int != -5 {
		t.Fatalf("triple 0: write %+v", triples[0].Write)
	}
	if triples[1].Write != nil {
		t.Fatalf("triple 1: empty write element must stay absent, got %+v", triples[1].Write)
	}
	if triples[1].Expected == nil || triples[1].Expected.Real != 2.5 {
		t.Fatalf("triple 1: expected %+v", triples[1].Expected)
	}
}

func TestDecodeBoolBitAddress(t *testing.T) {
	doc := `{
		"modules": [{
			"tests": [{
				"steps": [{
					"db_number": 1,
					"start": "4.2",
					"data_type": "BOOL",
					"write": true,
					"expected": true
				}]
			}]
		}]
	}`

	p, errs, err := Decode(strings.NewReader(doc), "plan.json")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected problems: %+v", errs)
	}

	tr := p.Modules[0].Tests[0].Steps[0].Triples[0]
	if tr.Address != BitAddress(4, 2) {
		t.Fatalf("expected address 4.2, got %s", tr.Address)
	}
	if tr.Write == nil || !tr.Write.Bool {
		t.Fatalf("expected write true, got %+v", tr.Write)
	}
}

func TestDecodeMerkerArea(t *testing.T) {
	doc := `{
		"modules": [{
			"tests": [{
				"steps": [{
					"area": "m",
					"start": "10.0",
					"data_type": "BOOL",
					"expected": false
				}]
			}]
		}]
	}`

	p, errs, err := Decode(strings.NewReader(doc), "plan.json")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected problems: %+v", errs)
	}
	if got := p.Modules[0].Tests[0].Steps[0].Area; got != AreaMerker {
		t.Fatalf("expected merker area, got %s", got)
	}
}

func TestDecodeLayoutSymbols(t *testing.T) {
	doc := `{
		"layouts": {
			"1": {
				"name": "DB1",
				"variables": [
					{"name": "A", "offset": 0, "type": "INT"},
					{"name": "Flag", "offset": 1, "bit": 0, "type": "BOOL"}
				]
			}
		},
		"modules": [{
			"tests": [{
				"steps": [{
					"db_number": 1,
					"start": "A,Flag",
					"data_type": "INT,BOOL",
					"write": "7,true"
				}]
			}]
		}]
	}`

	p, errs, err := Decode(strings.NewReader(doc), "plan.json")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected problems: %+v", errs)
	}

	triples := p.Modules[0].Tests[0].Steps[0].Triples
	if triples[0].Address != ByteAddress(0) {
		t.Fatalf("symbol A resolved to %s", triples[0].Address)
	}
	if triples[1].Address != BitAddress(1, 0) {
		t.Fatalf("symbol Flag resolved to %s", triples[1].Address)
	}
}

func TestDecodeLayoutTypeMismatch(t *testing.T) {
	doc := `{
		"layouts": {
			"1": {"variables": [{"name": "A", "offset": 0, "type": "INT"}]}
		},
		"modules": [{
			"tests": [{
				"steps": [{
					"db_number": 1,
					"start": "A",
					"data_type": "WORD",
					"write": 1
				}]
			}]
		}]
	}`

	_, errs, err := Decode(strings.NewReader(doc), "plan.json")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(errs) != 1 || !strings.Contains(errs[0].Message, "declared INT") {
		t.Fatalf("expected layout type mismatch, got %+v", errs)
	}
}

func TestDecodeCardinalityMismatch(t *testing.T) {
	doc := `{
		"modules": [{
			"name": "M",
			"tests": [{
				"name": "T",
				"steps": [{
					"db_number": 1,
					"start": "0,2",
					"data_type": "INT,INT,INT"
				}]
			}]
		}]
	}`

	p, errs, err := Decode(strings.NewReader(doc), "plan.json")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(errs) != 1 {
		t.Fatalf("expected 1 problem, got %+v", errs)
	}
	if errs[0].Module != "M" || errs[0].Test != "T" || errs[0].Step != 1 {
		t.Fatalf("problem not located: %+v", errs[0])
	}
	if !strings.Contains(errs[0].Message, "3 data types for 2 start addresses") {
		t.Fatalf("unexpected message: %s", errs[0].Message)
	}
	if len(p.Modules[0].Tests[0].Steps[0].Triples) != 0 {
		t.Fatalf("mismatched step must produce no triples")
	}
}

func TestDecodeProblemsAreCollected(t *testing.T) {
	doc := `{
		"modules": [{
			"tests": [{
				"steps": [
					{"db_number": 1, "start": 0, "data_type": "FLOAT"},
					{"db_number": 1, "start": 4, "data_type": "BOOL"},
					{"db_number": 1, "start": "4.9", "data_type": "BOOL"},
					{"db_number": 1, "start": "2.1", "data_type": "WORD"},
					{"db_number": -1, "start": 0, "data_type": "INT", "delay_ms": -5}
				]
			}]
		}]
	}`

	_, errs, err := Decode(strings.NewReader(doc), "plan.json")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(errs) != 6 {
		t.Fatalf("expected 6 problems, got %d: %+v", len(errs), errs)
	}
	wantFragments := []string{
		"unknown data type",
		"needs byte.bit notation",
		"bit index must be between 0 and 7",
		"bit addressing is only valid for BOOL",
		"db_number",
		"delay_ms",
	}
	for _, fragment := range wantFragments {
		found := false
		for _, e := range errs {
			if strings.Contains(e.Error(), fragment) {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("no problem mentions %q in %+v", fragment, errs)
		}
	}
}

func TestDecodeMalformedJSON(t *testing.T) {
	if _, _, err := Decode(strings.NewReader("{not json"), "plan.json"); err == nil {
		t.Fatalf("expected structural error")
	}
}

func TestDecodeDelayOnlyStep(t *testing.T) {
	doc := `{
		"modules": [{
			"tests": [{
				"steps": [{"description": "settle", "delay_ms": 100}]
			}]
		}]
	}`

	p, errs, err := Decode(strings.NewReader(doc), "plan.json")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected problems: %+v", errs)
	}
	step := p.Modules[0].Tests[0].Steps[0]
	if step.DelayMS != 100 || len(step.Triples) != 0 {
		t.Fatalf("unexpected step: %+v", step)
	}
}
