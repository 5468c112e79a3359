package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Load reads a plan file from disk. Structural JSON failures are returned
// as the error; everything else wrong with the plan is collected into the
// validation error list so one bad step never hides the rest of the file.
func Load(path string) (*Plan, []ValidationError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open plan %q: %w", path, err)
	}
	defer f.Close()
	return Decode(f, filepath.Base(path))
}

// Decode parses a JSON plan from r. The display name labels the plan when
// the document does not name itself.
func Decode(r io.Reader, displayName string) (*Plan, []ValidationError, error) {
	var doc planDocument
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("parse plan %q: %w", displayName, err)
	}

	p := &Plan{Name: doc.Name}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(displayName, filepath.Ext(displayName))
	}

	var errs []ValidationError

	for db, layoutDoc := range doc.Layouts {
		dbNum, err := strconv.Atoi(db)
		if err != nil || dbNum < 0 {
			errs = append(errs, ValidationError{
				Field:   "layouts",
				Message: fmt.Sprintf("layout key %q is not a data block number", db),
			})
			continue
		}
		layout, layoutErrs := buildLayout(db, layoutDoc)
		errs = append(errs, layoutErrs...)
		if p.Layouts == nil {
			p.Layouts = make(map[int]Layout)
		}
		p.Layouts[dbNum] = layout
	}

	for mi, modDoc := range doc.Modules {
		mod := Module{Name: modDoc.Name}
		if mod.Name == "" {
			mod.Name = fmt.Sprintf("module %d", mi+1)
		}
		for ti, testDoc := range modDoc.Tests {
			tst := Test{Name: testDoc.Name}
			if tst.Name == "" {
				tst.Name = fmt.Sprintf("test %d", ti+1)
			}
			for si, stepDoc := range testDoc.Steps {
				step, stepErrs := buildStep(mod.Name, tst.Name, si+1, stepDoc, p.Layouts)
				errs = append(errs, stepErrs...)
				tst.Steps = append(tst.Steps, step)
			}
			mod.Tests = append(mod.Tests, tst)
		}
		p.Modules = append(p.Modules, mod)
	}

	return p, errs, nil
}

func buildLayout(db string, doc layoutDocument) (Layout, []ValidationError) {
	layout := Layout{Name: doc.Name}
	if layout.Name == "" {
		layout.Name = "DB" + db
	}
	var errs []ValidationError
	for _, varDoc := range doc.Variables {
		if varDoc.Name == "" {
			errs = append(errs, ValidationError{
				Field:   "layouts",
				Message: fmt.Sprintf("layout %s has an unnamed variable", layout.Name),
			})
			continue
		}
		dt, err := ParseDataType(varDoc.Type)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   "layouts",
				Message: fmt.Sprintf("layout %s variable %s: %v", layout.Name, varDoc.Name, err),
			})
			continue
		}
		addr := Address{Byte: varDoc.Offset, Bit: -1}
		if varDoc.Bit != nil {
			addr.Bit = *varDoc.Bit
		}
		layout.Variables = append(layout.Variables, Variable{Name: varDoc.Name, Offset: addr, Type: dt})
	}
	return layout, errs
}

// buildStep joins the per-index start, type, write and expected collections
// into triples. A single data type broadcasts across all starts. Triples
// that fail to parse are dropped after recording the problem.
func buildStep(module, test string, pos int, doc stepDocument, layouts map[int]Layout) (Step, []ValidationError) {
	step := Step{
		Description: doc.Description,
		DB:          doc.DB,
		DelayMS:     doc.DelayMS,
	}

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

	area, err := ParseArea(doc.Area)
	if err != nil {
		addErr("area", "%v", err)
	}
	step.Area = area

	if doc.DB < 0 {
		addErr("db_number", "must not be negative, got %d", doc.DB)
	}
	if doc.DelayMS < 0 {
		addErr("delay_ms", "must not be negative, got %d", doc.DelayMS)
	}

	starts := doc.Start
	types := doc.DataType
	if len(types) == 1 && len(starts) > 1 {
		broadcast := make(fieldList, len(starts))
		for i := range broadcast {
			broadcast[i] = types[0]
		}
		types = broadcast
	}

	if len(types) != len(starts) {
		addErr("data_type", "%d data types for %d start addresses", len(types), len(starts))
		return step, errs
	}
	if len(doc.Write) > 0 && len(doc.Write) != len(starts) {
		addErr("write", "%d write values for %d start addresses", len(doc.Write), len(starts))
		return step, errs
	}
	if len(doc.Expected) > 0 && len(doc.Expected) != len(starts) {
		addErr("expected", "%d expected values for %d start addresses", len(doc.Expected), len(starts))
		return step, errs
	}

	for i, rawStart := range starts {
		field := fmt.Sprintf("triple %d", i)

		dt, err := ParseDataType(types[i])
		if err != nil {
			addErr(field, "%v", err)
			continue
		}

		addr, declared, err := resolveStart(rawStart, doc.DB, layouts)
		if err != nil {
			addErr(field, "%v", err)
			continue
		}
		if declared != nil && *declared != dt {
			addErr(field, "start %q is declared %s in the DB%d layout, not %s", rawStart, *declared, doc.DB, dt)
			continue
		}
		if addr.Byte < 0 {
			addErr(field, "start offset must not be negative, got %d", addr.Byte)
			continue
		}
		if dt == TypeBool {
			if addr.Bit < 0 {
				addErr(field, "BOOL start %q needs byte.bit notation", rawStart)
				continue
			}
			if addr.Bit > 7 {
				addErr(field, "bit index must be between 0 and 7, got %d", addr.Bit)
				continue
			}
		} else if addr.Bit >= 0 {
			addErr(field, "bit addressing is only valid for BOOL, got %s", dt)
			continue
		}

		triple := Triple{Address: addr, Type: dt}

		if w := elementAt(doc.Write, i); w != "" {
			value, err := ParseValue(w, dt)
			if err != nil {
				addErr(field, "write: %v", err)
				continue
			}
			triple.Write = &value
		}
		if e := elementAt(doc.Expected, i); e != "" {
			value, err := ParseValue(e, dt)
			if err != nil {
				addErr(field, "expected: %v", err)
				continue
			}
			triple.Expected = &value
		}

		step.Triples = append(step.Triples, triple)
	}

	return step, errs
}

// resolveStart parses a start element, which is either byte/byte.bit
// notation or the name of a variable from the data block's layout. For
// layout variables the declared type is returned for cross-checking.
func resolveStart(raw string, db int, layouts map[int]Layout) (Address, *DataType, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Address{}, nil, fmt.Errorf("empty start address")
	}
	if c := raw[0]; c >= '0' && c <= '9' || c == '-' {
		addr, err := ParseAddress(raw)
		return addr, nil, err
	}
	layout, ok := layouts[db]
	if !ok {
		return Address{}, nil, fmt.Errorf("start %q is not numeric and DB%d has no layout", raw, db)
	}
	variable, ok := layout.Lookup(raw)
	if !ok {
		return Address{}, nil, fmt.Errorf("start %q not found in the DB%d layout", raw, db)
	}
	dt := variable.Type
	return variable.Offset, &dt, nil
}

// elementAt returns the list element at i, or "" when the list is empty.
// Empty elements mark indexes that carry no value.
func elementAt(list fieldList, i int) string {
	if i >= len(list) {
		return ""
	}
	return list[i]
}

type planDocument struct {
	Name    string                    `json:"name"`
	Modules []moduleDocument          `json:"modules"`
	Layouts map[string]layoutDocument `json:"layouts"`
}

type moduleDocument struct {
	Name  string         `json:"name"`
	Tests []testDocument `json:"tests"`
}

type testDocument struct {
	Name  string         `json:"name"`
	Steps []stepDocument `json:"steps"`
}

type stepDocument struct {
	Description string    `json:"description"`
	DB          int       `json:"db_number"`
	Area        string    `json:"area"`
	Start       fieldList `json:"start"`
	DataType    fieldList `json:"data_type"`
	Write       fieldList `json:"write"`
	Expected    fieldList `json:"expected"`
	DelayMS     int       `json:"delay_ms"`
}

type layoutDocument struct {
	Name      string             `json:"name"`
	Variables []variableDocument `json:"variables"`
}

type variableDocument struct {
	Name   string `json:"name"`
	Offset int    `json:"offset"`
	Bit    *int   `json:"bit"`
	Type   string `json:"type"`
}

// fieldList accepts a JSON scalar, a comma-delimited string or an array and
// normalizes all of them to a list of element strings. Plan files written
// by hand tend to use the comma form; generated ones use arrays.
type fieldList []string

func (f *fieldList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = nil
		return nil
	}

	if data[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		out := make(fieldList, 0, len(raw))
		for _, el := range raw {
			s, err := scalarString(el)
			if err != nil {
				return err
			}
			out = append(out, s)
		}
		*f = out
		return nil
	}

	s, err := scalarString(data)
	if err != nil {
		return err
	}
	parts := strings.Split(s, ",")
	out := make(fieldList, 0, len(parts))
	for _, part := range parts {
		out = append(out, strings.TrimSpace(part))
	}
	*f = out
	return nil
}

func scalarString(data []byte) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(t), nil
	case json.Number:
		return t.String(), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		return "", fmt.Errorf("value %s is not a scalar", string(data))
	}
}
