package plan

import "testing"

func TestParseValue(t *testing.T) {
	cases := []struct {
		raw  string
		dt   DataType
		want string
	}{
		{"true", TypeBool, "true"},
		{"0", TypeBool, "false"},
		{"1", TypeBool, "true"},
		{"200", TypeByte, "200"},
		{"0xFF", TypeByte, "255"},
		{"40000", TypeWord, "40000"},
		{"4000000000", TypeDWord, "4000000000"},
		{"-123", TypeInt, "-123"},
		{"-2000000", TypeDInt, "-2000000"},
		{"2.5", TypeReal, "2.5"},
	}
	for _, tc := range cases {
		v, err := ParseValue(tc.raw, tc.dt)
		if err != nil {
			t.Fatalf("parse %q as %s: %v", tc.raw, tc.dt, err)
		}
		if v.Type != tc.dt {
			t.Fatalf("parse %q: type %s, want %s", tc.raw, v.Type, tc.dt)
		}
		if got := v.String(); got != tc.want {
			t.Fatalf("parse %q as %s: got %s, want %s", tc.raw, tc.dt, got, tc.want)
		}
	}
}

func TestParseValueRejectsOutOfRange(t *testing.T) {
	cases := []struct {
		raw string
		dt  DataType
	}{
		{"256", TypeByte},
		{"-1", TypeByte},
		{"65536", TypeWord},
		{"40000", TypeInt},
		{"-40000", TypeInt},
		{"2147483648", TypeDInt},
		{"maybe", TypeBool},
		{"1.5", TypeInt},
	}
	for _, tc := range cases {
		if _, err := ParseValue(tc.raw, tc.dt); err == nil {
			t.Fatalf("expected error parsing %q as %s", tc.raw, tc.dt)
		}
	}
}

func TestValueEqualExact(t *testing.T) {
	a, _ := ParseValue("123", TypeInt)
	b, _ := ParseValue("123", TypeInt)
	c, _ := ParseValue("124", TypeInt)

	if !a.Equal(b) {
		t.Fatalf("expected %s == %s", a, b)
	}
	if a.Equal(c) {
		t.Fatalf("expected %s != %s", a, c)
	}
}

func TestValueEqualRealEpsilon(t *testing.T) {
	base := Value{Type: TypeReal, Real: 2.5}
	near := Value{Type: TypeReal, Real: 2.5 + 1e-7}
	far := Value{Type: TypeReal, Real: 2.51}

	if !base.Equal(near) {
		t.Fatalf("expected %v within epsilon of %v", near.Real, base.Real)
	}
	if base.Equal(far) {
		t.Fatalf("expected %v outside epsilon of %v", far.Real, base.Real)
	}
}

func TestValueEqualTypeMismatch(t *testing.T) {
	word := Value{Type: TypeWord, Uint: 1}
	dword := Value{Type: TypeDWord, Uint: 1}
	if word.Equal(dword) {
		t.Fatalf("values of different types must not compare equal")
	}
}

func TestValueInRange(t *testing.T) {
	if (Value{Type: TypeByte, Uint: 300}).InRange() {
		t.Fatalf("300 must not fit a BYTE")
	}
	if (Value{Type: TypeInt, Int: 40000}).InRange() {
		t.Fatalf("40000 must not fit an INT")
	}
	if !(Value{Type: TypeDWord, Uint: 4000000000}).InRange() {
		t.Fatalf("4000000000 fits a DWORD")
	}
}
