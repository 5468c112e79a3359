package plan

import (
	"fmt"
	"math"
	"strconv"
)

// RealEpsilon bounds the acceptable difference when comparing REAL values.
// Round-tripping through the 32-bit wire encoding perturbs the low bits, so
// exact equality would flag spurious mismatches.
const RealEpsilon = 1e-6

// Value is a typed PLC value. Exactly one of the payload fields is
// meaningful, selected by Type: Bool for BOOL, Uint for the unsigned types,
// Int for the signed types and Real for REAL.
type Value struct {
	Type DataType
	Bool bool
	Uint uint32
	Int  int32
	Real float32
}

// ParseValue reads a plan-file value literal as type t. Integer literals
// accept the usual base prefixes (0x, 0o, 0b), BOOL accepts true/false and
// 1/0.
func ParseValue(s string, t DataType) (Value, error) {
	v := Value{Type: t}
	switch t {
	case TypeBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return Value{}, fmt.Errorf("parse BOOL value %q", s)
		}
		v.Bool = b
	case TypeByte, TypeWord, TypeDWord:
		bits := t.Width() * 8
		u, err := strconv.ParseUint(s, 0, bits)
		if err != nil {
			return Value{}, fmt.Errorf("parse %s value %q: out of range or not an unsigned integer", t, s)
		}
		v.Uint = uint32(u)
	case TypeInt, TypeDInt:
		bits := t.Width() * 8
		i, err := strconv.ParseInt(s, 0, bits)
		if err != nil {
			return Value{}, fmt.Errorf("parse %s value %q: out of range or not an integer", t, s)
		}
		v.Int = int32(i)
	case TypeReal:
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return Value{}, fmt.Errorf("parse REAL value %q", s)
		}
		v.Real = float32(f)
	default:
		return Value{}, fmt.Errorf("unknown data type %q", t)
	}
	return v, nil
}

// Equal compares two values of the same type. REAL values compare within
// RealEpsilon; everything else compares exactly.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case TypeBool:
		return v.Bool == o.Bool
	case TypeInt, TypeDInt:
		return v.Int == o.Int
	case TypeReal:
		return math.Abs(float64(v.Real)-float64(o.Real)) < RealEpsilon
	default:
		return v.Uint == o.Uint
	}
}

func (v Value) String() string {
	switch v.Type {
	case TypeBool:
		return strconv.FormatBool(v.Bool)
	case TypeInt, TypeDInt:
		return strconv.FormatInt(int64(v.Int), 10)
	case TypeReal:
		return strconv.FormatFloat(float64(v.Real), 'g', -1, 32)
	default:
		return strconv.FormatUint(uint64(v.Uint), 10)
	}
}

// InRange reports whether the value's payload fits the wire width of its
// type. Parsed values always fit; plans built in code may not.
func (v Value) InRange() bool {
	switch v.Type {
	case TypeByte:
		return v.Uint <= math.MaxUint8
	case TypeWord:
		return v.Uint <= math.MaxUint16
	case TypeInt:
		return v.Int >= math.MinInt16 && v.Int <= math.MaxInt16
	default:
		return true
	}
}
